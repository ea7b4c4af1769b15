package usecase

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/nutrigrade/backend/internal/domain"
	"github.com/nutrigrade/backend/internal/infrastructure/reference"
)

// barcodePattern accepts EAN-8, UPC-A, EAN-13 and GTIN-14 style barcodes
var barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

// AnalysisServiceConfig holds configuration for the analysis service
type AnalysisServiceConfig struct {
	CacheTTL           time.Duration
	Deduplicate        bool
	EnableDebugLogging bool
}

// AnalysisService resolves products and analyzes their ingredients against the reference table
type AnalysisService struct {
	table              *reference.Table
	resolver           domain.ProductResolver
	cache              domain.CacheRepository
	cacheTTL           time.Duration
	deduplicate        bool
	enableDebugLogging bool
}

// NewAnalysisService creates a new analysis service with dependencies
func NewAnalysisService(
	table *reference.Table,
	resolver domain.ProductResolver,
	cache domain.CacheRepository,
	config AnalysisServiceConfig,
) *AnalysisService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &AnalysisService{
		table:              table,
		resolver:           resolver,
		cache:              cache,
		cacheTTL:           cacheTTL,
		deduplicate:        config.Deduplicate,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Table returns the reference table the service analyzes against
func (s *AnalysisService) Table() *reference.Table {
	return s.table
}

// Analyze handles one analysis request.
// Flow: barcode? -> cache -> Open Food Facts -> analyze product text; otherwise analyze the submitted text.
// Resolution failures are returned as errors and never turned into an "unknown" verdict.
func (s *AnalysisService) Analyze(ctx context.Context, request *domain.AnalyzeRequest) (*domain.AnalysisResult, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}

	barcode := strings.TrimSpace(request.Barcode)
	text := request.IngredientsText

	if barcode == "" {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: at least one of barcode or ingredients_text must be provided", domain.ErrInvalidRequest)
		}
		result := s.AnalyzeText(text)
		return &result, nil
	}

	if err := ValidateBarcode(barcode); err != nil {
		return nil, err
	}

	product, err := s.resolveProduct(ctx, barcode)
	if err != nil {
		return nil, err
	}

	source := domain.SourceOpenFoodFacts
	if strings.TrimSpace(product.IngredientsText) != "" {
		text = product.IngredientsText
	} else if strings.TrimSpace(text) != "" {
		source = domain.SourceDirect
	} else {
		return nil, fmt.Errorf("%w: barcode %s", domain.ErrNoIngredientsText, barcode)
	}

	result := analyzeText(text, s.table, s.deduplicate)
	result.Source = source
	result.Barcode = barcode
	result.ProductName = product.Name

	if s.enableDebugLogging {
		log.Printf("[ANALYZE] barcode=%s source=%s findings=%d verdict=%s",
			barcode, source, len(result.Ingredients), result.ProductCompliance)
	}

	return &result, nil
}

// AnalyzeText analyzes ingredients text submitted directly
func (s *AnalysisService) AnalyzeText(text string) domain.AnalysisResult {
	result := analyzeText(text, s.table, s.deduplicate)

	if s.enableDebugLogging {
		log.Printf("[ANALYZE] direct text (%d bytes) findings=%d verdict=%s",
			len(text), len(result.Ingredients), result.ProductCompliance)
	}

	return result
}

// ValidateBarcode checks that a barcode is a plain 8-14 digit GTIN
func ValidateBarcode(barcode string) error {
	if barcode == "" {
		return fmt.Errorf("%w: barcode is required", domain.ErrInvalidRequest)
	}
	if !barcodePattern.MatchString(barcode) {
		return fmt.Errorf("%w: barcode must be 8 to 14 digits, got %q", domain.ErrInvalidRequest, barcode)
	}
	return nil
}

// resolveProduct looks the barcode up in the cache before asking the resolver
func (s *AnalysisService) resolveProduct(ctx context.Context, barcode string) (*domain.Product, error) {
	cacheKey := generateCacheKey(barcode)

	if cached, err := s.getFromCache(ctx, cacheKey); err == nil && cached != nil {
		if s.enableDebugLogging {
			log.Printf("[CACHE] hit for %s", cacheKey)
		}
		return cached, nil
	}

	if s.resolver == nil {
		return nil, fmt.Errorf("%w: no product resolver configured", domain.ErrProductAPIFailure)
	}

	product, err := s.resolver.GetProduct(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	if err := s.setInCache(ctx, cacheKey, product); err != nil {
		log.Printf("[CACHE] failed to store %s: %v", cacheKey, err)
	}

	return product, nil
}

// generateCacheKey creates the cache key for a resolved product.
// Format: "product:{barcode}"
func generateCacheKey(barcode string) string {
	return "product:" + barcode
}

// getFromCache retrieves a product from cache
func (s *AnalysisService) getFromCache(ctx context.Context, key string) (*domain.Product, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case *domain.Product:
		return v, nil
	case map[string]interface{}:
		// memory cache stores JSON-normalized values
		return mapToProduct(v), nil
	default:
		return nil, domain.ErrCacheMiss
	}
}

// setInCache stores a product in cache
func (s *AnalysisService) setInCache(ctx context.Context, key string, product *domain.Product) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, key, product, s.cacheTTL)
}

// mapToProduct converts a map (from JSON cache) to Product
func mapToProduct(data map[string]interface{}) *domain.Product {
	result := &domain.Product{}

	if v, ok := data["barcode"].(string); ok {
		result.Barcode = v
	}
	if v, ok := data["name"].(string); ok {
		result.Name = v
	}
	if v, ok := data["ingredientsText"].(string); ok {
		result.IngredientsText = v
	}

	return result
}
