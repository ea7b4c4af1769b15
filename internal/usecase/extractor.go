package usecase

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nutrigrade/backend/internal/domain"
)

// Package-level compiled regex patterns for additive code extraction
var (
	// Marker-prefixed codes: "INS 211", "ins-211", "E211", "E150a", "INS 471 (i)", "INS No. 330",
	// optionally followed by a parenthesized descriptor such as "(Sodium benzoate)"
	markerCodePattern = regexp.MustCompile(
		`(?i)\b(?:INS|E)(?:[\s\p{Pd}\p{Zs}.:]{0,3}(?:no\.?|number))?[\s\p{Pd}\p{Zs}.:#]{0,3}` +
			`0*(\d{3,4})(?:\.?([a-z])\b|\s*\(\s*([a-z]|[ivx]{1,4})\s*\)|\b)` +
			`(?:\s*\(([^()\d]+)\))?`,
	)

	// Additive class names that introduce a list of bare numeric codes: "Preservative (211)",
	// "Acidity regulators: 330, 331", "Emulsifiers [322 & 471]"
	additiveClassPattern = regexp.MustCompile(
		`(?i)\b(?:preservatives?|emulsif(?:ier|ying agent)s?|stabili[sz](?:er|ing agent)s?|colou?r(?:ing)?s?|` +
			`acidity regulators?|antioxidants?|thicken(?:er|ing agent)s?|flavou?r enhancers?|raising agents?|` +
			`sweeteners?|humectants?|anti-?caking agents?|gelling agents?|firming agents?|glazing agents?|` +
			`bleaching agents?|flour treatment agents?|acids?)[\s\p{Zs}]*[:(\[]`,
	)

	// One code inside a class list; group 1 spans the code itself, without leading separators
	listCodePattern = regexp.MustCompile(
		`(?i)^[\s\p{Zs},;/&]*(?:and[\s\p{Zs}]+)?` +
			`((?:(?:INS|E)[\s\p{Pd}\p{Zs}.:]{0,3})?0*(\d{3,4})(?:\.?([a-z])\b|\s*\(\s*([a-z]|[ivx]{1,4})\s*\)|\b))`,
	)

	// Quantities right after a number mean it is an amount, not a code ("100 mg", "150g", "330 ml").
	// The unit must end the token, so "330 l-malic" or "1101 L-cysteine" still count as codes.
	quantityUnitPattern = regexp.MustCompile(
		`(?i)^[\s\p{Zs}]*(?:%|(?:mg|mcg|µg|g|kg|ml|l|iu|ppm|kcal|kj)(?:[\s\p{Zs},;.:)\]/]|$))`,
	)
)

// VariantIndex tells the extractor whether suffixed codes ("150a") are distinct entries for a numeric core
type VariantIndex interface {
	HasVariants(core string) bool
}

// Extractor finds additive codes in free-form ingredients text
type Extractor struct {
	variants VariantIndex
}

// NewExtractor creates an extractor; variants may be nil, in which case suffixes are always dropped
func NewExtractor(variants VariantIndex) *Extractor {
	return &Extractor{variants: variants}
}

// Extract returns the additive codes in text in order of appearance.
// It never fails: unrecognizable or malformed tokens are skipped and empty text yields an empty slice.
func (e *Extractor) Extract(text string) []domain.ExtractedCode {
	if strings.TrimSpace(text) == "" {
		return []domain.ExtractedCode{}
	}

	candidates := e.markerCodes(text)
	candidates = append(candidates, e.listCodes(text)...)

	return dropOverlaps(candidates)
}

// span is a candidate code with its byte range in the source text
type span struct {
	code domain.ExtractedCode
	end  int
}

// markerCodes scans for INS/E prefixed codes anywhere in the text
func (e *Extractor) markerCodes(text string) []span {
	var out []span
	for _, m := range markerCodePattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		// a trailing descriptor rules out a unit; otherwise "E 400 IU" is a vitamin amount
		if m[8] < 0 && isQuantity(text, end) {
			continue
		}
		// "Vitamin E 300" is a vitamin amount
		if (text[start] == 'E' || text[start] == 'e') && followsVitamin(text, start) {
			continue
		}

		code, ok := e.normalize(group(text, m, 1), firstNonEmpty(group(text, m, 2), group(text, m, 3)))
		if !ok {
			continue
		}

		out = append(out, span{
			code: domain.ExtractedCode{
				Raw:   text[start:end],
				Code:  code,
				Label: strings.TrimSpace(group(text, m, 4)),
				Start: start,
			},
			end: end,
		})
	}
	return out
}

// listCodes scans the runs of bare codes that follow an additive class name
func (e *Extractor) listCodes(text string) []span {
	var out []span
	for _, ctx := range additiveClassPattern.FindAllStringIndex(text, -1) {
		pos := ctx[1]
		for pos < len(text) {
			m := listCodePattern.FindStringSubmatchIndex(text[pos:])
			if m == nil {
				break
			}
			start, end := pos+m[2], pos+m[3]
			if isQuantity(text, end) {
				break
			}

			rest := text[pos:]
			code, ok := e.normalize(group(rest, m, 2), firstNonEmpty(group(rest, m, 3), group(rest, m, 4)))
			if ok {
				out = append(out, span{
					code: domain.ExtractedCode{Raw: text[start:end], Code: code, Start: start},
					end:  end,
				})
			}
			pos += m[1]
		}
	}
	return out
}

// normalize strips leading zeros and keeps the suffix only when the table distinguishes variants
func (e *Extractor) normalize(digits, suffix string) (string, bool) {
	core, ok := domain.CanonicalCode(digits, "")
	if !ok {
		return "", false
	}
	if suffix != "" && e.variants != nil && e.variants.HasVariants(core) {
		return domain.CanonicalCode(digits, suffix)
	}
	return core, true
}

// dropOverlaps orders candidates by position and discards any that overlap an earlier, longer match
func dropOverlaps(candidates []span) []domain.ExtractedCode {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].code.Start != candidates[j].code.Start {
			return candidates[i].code.Start < candidates[j].code.Start
		}
		return candidates[i].end > candidates[j].end
	})

	out := make([]domain.ExtractedCode, 0, len(candidates))
	lastEnd := -1
	for _, c := range candidates {
		if c.code.Start < lastEnd {
			continue
		}
		out = append(out, c.code)
		lastEnd = c.end
	}
	return out
}

// Deduplicate keeps only the first occurrence of each normalized code
func Deduplicate(codes []domain.ExtractedCode) []domain.ExtractedCode {
	seen := make(map[string]bool, len(codes))
	out := make([]domain.ExtractedCode, 0, len(codes))
	for _, c := range codes {
		if seen[c.Code] {
			continue
		}
		seen[c.Code] = true
		out = append(out, c)
	}
	return out
}

func isQuantity(text string, end int) bool {
	return end <= len(text) && quantityUnitPattern.MatchString(text[end:])
}

// followsVitamin reports whether the word right before start is "vitamin"
func followsVitamin(text string, start int) bool {
	const word = "vitamin"
	before := strings.TrimRightFunc(text[:start], unicode.IsSpace)
	if len(before) < len(word) || !strings.EqualFold(before[len(before)-len(word):], word) {
		return false
	}
	rest := before[:len(before)-len(word)]
	if rest == "" {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(rest)
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func group(s string, m []int, n int) string {
	if 2*n+1 >= len(m) || m[2*n] < 0 {
		return ""
	}
	return s[m[2*n]:m[2*n+1]]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
