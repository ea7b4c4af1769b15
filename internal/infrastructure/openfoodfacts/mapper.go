package openfoodfacts

import (
	"strings"

	"github.com/nutrigrade/backend/internal/domain"
)

// MapToProduct converts an Open Food Facts product to our domain Product.
// English fields win over the default-language ones when both are present.
func MapToProduct(barcode string, p *domain.OFFProduct) *domain.Product {
	if p == nil {
		return &domain.Product{Barcode: barcode}
	}

	if barcode == "" {
		barcode = p.Code
	}

	return &domain.Product{
		Barcode:         barcode,
		Name:            ProductName(p),
		IngredientsText: IngredientsText(p),
	}
}

// IngredientsText picks the best available ingredients list
func IngredientsText(p *domain.OFFProduct) string {
	return firstNonBlank(p.IngredientsTextEN, p.IngredientsText, p.IngredientsTextWithAllergensEN)
}

// ProductName picks the best available product name
func ProductName(p *domain.OFFProduct) string {
	return firstNonBlank(p.ProductNameEN, p.ProductName)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
