package domain

// Product is the subset of an Open Food Facts product needed for analysis
type Product struct {
	Barcode         string `json:"barcode"`
	Name            string `json:"name,omitempty"`
	IngredientsText string `json:"ingredientsText,omitempty"`
}

// OFFProduct mirrors the product fields requested from the Open Food Facts v2 API
type OFFProduct struct {
	Code                           string `json:"code"`
	ProductName                    string `json:"product_name"`
	ProductNameEN                  string `json:"product_name_en"`
	IngredientsText                string `json:"ingredients_text"`
	IngredientsTextEN              string `json:"ingredients_text_en"`
	IngredientsTextWithAllergensEN string `json:"ingredients_text_with_allergens_en"`
}

// OFFProductResponse represents the response from the Open Food Facts product API
type OFFProductResponse struct {
	Code          string      `json:"code"`
	Status        int         `json:"status"`
	StatusVerbose string      `json:"status_verbose"`
	Product       *OFFProduct `json:"product"`
}
