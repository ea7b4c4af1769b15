package domain

import "time"

// FindingStatus is the per-ingredient classification of an extracted additive code
type FindingStatus string

const (
	FindingPermitted  FindingStatus = "permitted"
	FindingRestricted FindingStatus = "restricted"
	FindingBanned     FindingStatus = "banned"
	FindingUnknown    FindingStatus = "unknown"
)

// Verdict is the overall compliance classification of one analysis
type Verdict string

const (
	VerdictCompliant          Verdict = "compliant"
	VerdictPartiallyCompliant Verdict = "partially_compliant"
	VerdictNonCompliant       Verdict = "non_compliant"
	VerdictUnknown            Verdict = "unknown"
)

// Source tells where the analyzed ingredients text came from
type Source string

const (
	SourceOpenFoodFacts Source = "openfoodfacts"
	SourceDirect        Source = "direct"
)

// ExtractedCode is one additive code occurrence found in ingredients text
type ExtractedCode struct {
	Raw   string // substring as it appears in the text
	Code  string // normalized code, e.g. "211" or "150a"
	Label string // parenthesized descriptor following the code, if any
	Start int    // byte offset of Raw in the text
}

// IngredientFinding is the evaluation of a single extracted additive code
type IngredientFinding struct {
	Raw           string          `json:"raw"`
	NormalizedINS string          `json:"normalized_ins"`
	Label         string          `json:"label,omitempty"`
	Name          string          `json:"name,omitempty"`
	Status        FindingStatus   `json:"status"`
	MaxPPM        *float64        `json:"max_ppm,omitempty"`
	AllowedIn     []string        `json:"allowed_in,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	Record        *AdditiveRecord `json:"-"`
}

// AnalysisResult is the outcome of analyzing one product or ingredients text
type AnalysisResult struct {
	AnalysisID        string              `json:"analysis_id"`
	ProductName       string              `json:"product_name,omitempty"`
	Barcode           string              `json:"barcode,omitempty"`
	Source            Source              `json:"source"`
	IngredientsText   string              `json:"ingredients_text"`
	Ingredients       []IngredientFinding `json:"ingredients"`
	ProductCompliance Verdict             `json:"product_compliance"`
	Deduplicated      bool                `json:"deduplicated"`
	AnalyzedAt        time.Time           `json:"analyzed_at"`
}

// AnalyzeRequest represents an analysis request; at least one field must be set
type AnalyzeRequest struct {
	Barcode         string `json:"barcode,omitempty"`
	IngredientsText string `json:"ingredients_text,omitempty"`
}
