package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nutrigrade/backend/config"
	"github.com/nutrigrade/backend/internal/domain"
	"github.com/nutrigrade/backend/internal/infrastructure/reference"
	"github.com/nutrigrade/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const testTableJSON = `[
  {"ins_number": "200", "name": "Sorbic acid", "status": "restricted", "max_ppm": 1000, "allowed_in": ["cheese"], "notes": "Preservative class II"},
  {"ins_number": "211", "name": "Sodium benzoate", "status": "permitted", "max_ppm": 500, "allowed_in": ["jams"]},
  {"ins_number": "250", "name": "Sodium nitrite", "status": "banned", "allowed_in": []},
  {"ins_number": "621", "name": "Monosodium glutamate", "status": "permitted", "allowed_in": []}
]`

// mockResolver is a mock implementation of domain.ProductResolver
type mockResolver struct {
	product *domain.Product
	err     error
	calls   int
}

func (m *mockResolver) GetProduct(ctx context.Context, barcode string) (*domain.Product, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.product, nil
}

// mockCacheRepository is a mock implementation of domain.CacheRepository
type mockCacheRepository struct {
	data map[string]interface{}
}

func newMockCacheRepository() *mockCacheRepository {
	return &mockCacheRepository{data: make(map[string]interface{})}
}

func (m *mockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *mockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"chrome-extension://*", "http://localhost:3000"},
		},
		Cache: config.CacheConfig{Type: "memory"},
	}
}

// setupTestRouter creates a router backed by the test table and the given resolver
func setupTestRouter(t *testing.T, resolver domain.ProductResolver) *gin.Engine {
	t.Helper()

	table, err := reference.Parse([]byte(testTableJSON), reference.FormatJSON)
	if err != nil {
		t.Fatalf("reference.Parse() error = %v", err)
	}

	service := usecase.NewAnalysisService(table, resolver, newMockCacheRepository(), usecase.AnalysisServiceConfig{})
	return SetupRouter(testConfig(), NewHandler(service))
}

func postJSON(router *gin.Engine, path, payload string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) domain.AnalysisResult {
	t.Helper()
	var result domain.AnalysisResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal response: %v (body %s)", err, w.Body.String())
	}
	return result
}

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status with table size", func(t *testing.T) {
		router := setupTestRouter(t, nil)

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "nutrigrade-backend" {
			t.Errorf("service = %v, want nutrigrade-backend", response["service"])
		}
		if response["additives_loaded"] != float64(4) {
			t.Errorf("additives_loaded = %v, want 4", response["additives_loaded"])
		}
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter(t, nil)

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			req, _ := http.NewRequest(method, "/health", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})

	t.Run("works without a service", func(t *testing.T) {
		router := SetupRouter(testConfig(), NewHandler(nil))

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}
	})
}

// TestAnalyzeEndpoint tests direct ingredients text analysis
func TestAnalyzeEndpoint(t *testing.T) {
	tests := []struct {
		name        string
		payload     string
		wantVerdict domain.Verdict
		wantStatus  []domain.FindingStatus
	}{
		{
			name:        "permitted additive is compliant",
			payload:     `{"ingredients_text":"Water, Sugar, INS 211 (Sodium benzoate)"}`,
			wantVerdict: domain.VerdictCompliant,
			wantStatus:  []domain.FindingStatus{domain.FindingPermitted},
		},
		{
			name:        "banned additive dominates",
			payload:     `{"ingredients_text":"INS 250, INS 621"}`,
			wantVerdict: domain.VerdictNonCompliant,
			wantStatus:  []domain.FindingStatus{domain.FindingBanned, domain.FindingPermitted},
		},
		{
			name:        "unknown code",
			payload:     `{"ingredients_text":"INS 339"}`,
			wantVerdict: domain.VerdictUnknown,
			wantStatus:  []domain.FindingStatus{domain.FindingUnknown},
		},
		{
			name:        "restricted additive",
			payload:     `{"ingredients_text":"INS 200, INS 211"}`,
			wantVerdict: domain.VerdictPartiallyCompliant,
			wantStatus:  []domain.FindingStatus{domain.FindingRestricted, domain.FindingPermitted},
		},
		{
			name:        "no additives",
			payload:     `{"ingredients_text":"Water, Sugar, Salt"}`,
			wantVerdict: domain.VerdictCompliant,
			wantStatus:  []domain.FindingStatus{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter(t, nil)

			w := postJSON(router, "/api/v1/analyze", tt.payload)
			if w.Code != http.StatusOK {
				t.Fatalf("Status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
			}

			result := decodeResult(t, w)
			if result.ProductCompliance != tt.wantVerdict {
				t.Errorf("product_compliance = %s, want %s", result.ProductCompliance, tt.wantVerdict)
			}
			if result.Source != domain.SourceDirect {
				t.Errorf("source = %s, want direct", result.Source)
			}
			if result.AnalysisID == "" {
				t.Errorf("analysis_id is empty")
			}
			if len(result.Ingredients) != len(tt.wantStatus) {
				t.Fatalf("ingredients = %d, want %d", len(result.Ingredients), len(tt.wantStatus))
			}
			for i, status := range tt.wantStatus {
				if result.Ingredients[i].Status != status {
					t.Errorf("ingredients[%d].status = %s, want %s", i, result.Ingredients[i].Status, status)
				}
			}
		})
	}

	t.Run("restricted finding carries constraints", func(t *testing.T) {
		router := setupTestRouter(t, nil)

		w := postJSON(router, "/api/v1/analyze", `{"ingredients_text":"Cheese, INS 200"}`)

		var body map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		ingredients := body["ingredients"].([]interface{})
		first := ingredients[0].(map[string]interface{})

		if first["normalized_ins"] != "200" {
			t.Errorf("normalized_ins = %v, want 200", first["normalized_ins"])
		}
		if first["max_ppm"] != float64(1000) {
			t.Errorf("max_ppm = %v, want 1000", first["max_ppm"])
		}
		if first["notes"] != "Preservative class II" {
			t.Errorf("notes = %v, want Preservative class II", first["notes"])
		}
	})
}

// TestAnalyzeEndpoint_Errors tests request validation and error mapping
func TestAnalyzeEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name       string
		resolver   *mockResolver
		payload    string
		wantStatus int
	}{
		{name: "invalid JSON", payload: `{invalid`, wantStatus: http.StatusBadRequest},
		{name: "empty body object", payload: `{}`, wantStatus: http.StatusBadRequest},
		{name: "malformed barcode", payload: `{"barcode":"abc"}`, wantStatus: http.StatusBadRequest},
		{
			name:       "product not found",
			resolver:   &mockResolver{err: domain.ErrProductNotFound},
			payload:    `{"barcode":"8901063012349"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "product without ingredients",
			resolver:   &mockResolver{product: &domain.Product{Barcode: "8901063012349", Name: "Mystery"}},
			payload:    `{"barcode":"8901063012349"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "upstream failure",
			resolver:   &mockResolver{err: domain.ErrProductAPIFailure},
			payload:    `{"barcode":"8901063012349"}`,
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resolver domain.ProductResolver
			if tt.resolver != nil {
				resolver = tt.resolver
			}
			router := setupTestRouter(t, resolver)

			w := postJSON(router, "/api/v1/analyze", tt.payload)
			if w.Code != tt.wantStatus {
				t.Fatalf("Status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}

			var response map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("Failed to unmarshal response: %v", err)
			}
			if response["error"] == "" || response["error"] == nil {
				t.Errorf("error message missing from response")
			}
			if response["request_id"] != w.Header().Get("X-Request-ID") {
				t.Errorf("request_id = %v, want %s", response["request_id"], w.Header().Get("X-Request-ID"))
			}
		})
	}
}

// TestAnalyzeEndpoint_Barcode tests barcode resolution through the product resolver
func TestAnalyzeEndpoint_Barcode(t *testing.T) {
	resolver := &mockResolver{product: &domain.Product{
		Barcode:         "8901063012349",
		Name:            "Masala Noodles",
		IngredientsText: "Wheat flour, Salt, Flavour enhancer (621), INS 250",
	}}
	router := setupTestRouter(t, resolver)

	w := postJSON(router, "/api/v1/analyze", `{"barcode":"8901063012349"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
	}

	result := decodeResult(t, w)
	if result.Source != domain.SourceOpenFoodFacts {
		t.Errorf("source = %s, want openfoodfacts", result.Source)
	}
	if result.ProductName != "Masala Noodles" {
		t.Errorf("product_name = %s, want Masala Noodles", result.ProductName)
	}
	if result.Barcode != "8901063012349" {
		t.Errorf("barcode = %s, want 8901063012349", result.Barcode)
	}
	if result.ProductCompliance != domain.VerdictNonCompliant {
		t.Errorf("product_compliance = %s, want non_compliant", result.ProductCompliance)
	}
	if len(result.Ingredients) != 2 {
		t.Fatalf("ingredients = %d, want 2", len(result.Ingredients))
	}
	if result.Ingredients[0].NormalizedINS != "621" || result.Ingredients[1].NormalizedINS != "250" {
		t.Errorf("codes = %s, %s, want 621, 250", result.Ingredients[0].NormalizedINS, result.Ingredients[1].NormalizedINS)
	}
}

// TestAdditivesEndpoints tests reference table lookups
func TestAdditivesEndpoints(t *testing.T) {
	router := setupTestRouter(t, nil)

	get := func(path string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("lists all additives", func(t *testing.T) {
		w := get("/api/v1/additives")
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response struct {
			Count     int                     `json:"count"`
			Additives []domain.AdditiveRecord `json:"additives"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if response.Count != 4 || len(response.Additives) != 4 {
			t.Fatalf("count = %d, want 4", response.Count)
		}
		if response.Additives[0].InsNumber != "200" {
			t.Errorf("first additive = %s, want 200", response.Additives[0].InsNumber)
		}
	})

	t.Run("looks up by name", func(t *testing.T) {
		w := get("/api/v1/additives?name=sodium%20BENZOATE")
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if !strings.Contains(w.Body.String(), `"ins_number":"211"`) {
			t.Errorf("body = %s, want ins_number 211", w.Body.String())
		}
	})

	t.Run("unknown name is 404", func(t *testing.T) {
		if w := get("/api/v1/additives?name=benzoate"); w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("looks up by normalized code", func(t *testing.T) {
		w := get("/api/v1/additives/INS%200211")
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		var record domain.AdditiveRecord
		if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if record.Name != "Sodium benzoate" || record.Status != domain.StatusPermitted {
			t.Errorf("record = %+v, want permitted Sodium benzoate", record)
		}
	})

	t.Run("invalid and missing codes", func(t *testing.T) {
		if w := get("/api/v1/additives/not-a-code"); w.Code != http.StatusBadRequest {
			t.Errorf("invalid code status = %d, want %d", w.Code, http.StatusBadRequest)
		}
		if w := get("/api/v1/additives/339"); w.Code != http.StatusNotFound {
			t.Errorf("missing code status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

// TestCORSIntegration tests CORS headers on real routes
func TestCORSIntegration(t *testing.T) {
	router := setupTestRouter(t, nil)

	req, _ := http.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "chrome-extension://abcdefg12345")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "chrome-extension://abcdefg12345" {
		t.Errorf("Access-Control-Allow-Origin = %q", w.Header().Get("Access-Control-Allow-Origin"))
	}

	req, _ = http.NewRequest("OPTIONS", "/api/v1/analyze", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

// TestRecoveryMiddleware tests panic recovery
func TestRecoveryMiddleware(t *testing.T) {
	router := setupTestRouter(t, nil)
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	req, _ := http.NewRequest("GET", "/panic", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
