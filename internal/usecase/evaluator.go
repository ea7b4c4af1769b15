package usecase

import (
	"time"

	"github.com/nutrigrade/backend/internal/domain"
	"github.com/nutrigrade/backend/internal/infrastructure/reference"
)

// Evaluate resolves each extracted code against the reference table, preserving order.
// Codes missing from the table become "unknown" findings; that is an outcome, not an error.
func Evaluate(codes []domain.ExtractedCode, table domain.AdditiveLookup) []domain.IngredientFinding {
	findings := make([]domain.IngredientFinding, 0, len(codes))
	for _, c := range codes {
		findings = append(findings, evaluateCode(c, table))
	}
	return findings
}

func evaluateCode(c domain.ExtractedCode, table domain.AdditiveLookup) domain.IngredientFinding {
	finding := domain.IngredientFinding{
		Raw:           c.Raw,
		NormalizedINS: c.Code,
		Label:         c.Label,
		Status:        domain.FindingUnknown,
	}

	record, ok := lookup(table, c.Code)
	if !ok {
		return finding
	}

	finding.NormalizedINS = record.Code
	finding.Name = record.Name
	finding.Record = record
	finding.MaxPPM = record.MaxPPM
	finding.AllowedIn = record.AllowedIn
	finding.Notes = record.Notes

	switch record.Status {
	case domain.StatusPermitted:
		finding.Status = domain.FindingPermitted
	case domain.StatusRestricted:
		finding.Status = domain.FindingRestricted
	case domain.StatusBanned:
		finding.Status = domain.FindingBanned
	}

	return finding
}

// lookup tries the exact code first, then its numeric core ("150x" -> "150")
func lookup(table domain.AdditiveLookup, code string) (*domain.AdditiveRecord, bool) {
	if table == nil {
		return nil, false
	}
	if r, ok := table.Lookup(code); ok {
		return r, true
	}
	if core := domain.CodeCore(code); core != code {
		return table.Lookup(core)
	}
	return nil, false
}

// DetermineVerdict aggregates finding statuses, strongest first:
// banned > restricted > unknown > permitted. No findings at all is compliant.
func DetermineVerdict(findings []domain.IngredientFinding) domain.Verdict {
	var hasRestricted, hasUnknown bool

	for _, f := range findings {
		switch f.Status {
		case domain.FindingBanned:
			return domain.VerdictNonCompliant
		case domain.FindingRestricted:
			hasRestricted = true
		case domain.FindingUnknown:
			hasUnknown = true
		}
	}

	switch {
	case hasRestricted:
		return domain.VerdictPartiallyCompliant
	case hasUnknown:
		return domain.VerdictUnknown
	default:
		return domain.VerdictCompliant
	}
}

// AnalyzeIngredientsText runs extraction and evaluation on already-resolved text.
// The result is tagged as a direct submission; callers resolving barcodes override Source.
func AnalyzeIngredientsText(text string, table *reference.Table) domain.AnalysisResult {
	return analyzeText(text, table, false)
}

func analyzeText(text string, table *reference.Table, dedupe bool) domain.AnalysisResult {
	codes := NewExtractor(table).Extract(text)
	if dedupe {
		codes = Deduplicate(codes)
	}
	findings := Evaluate(codes, table)

	return domain.AnalysisResult{
		AnalysisID:        newAnalysisID(),
		Source:            domain.SourceDirect,
		IngredientsText:   text,
		Ingredients:       findings,
		ProductCompliance: DetermineVerdict(findings),
		Deduplicated:      dedupe,
		AnalyzedAt:        time.Now().UTC(),
	}
}
