package domain

// Product is the enriched record returned to clients and stored by barcode
type Product struct {
	Name            string   `json:"name"`
	Ingredients     string   `json:"ingredients"`
	GoodIngredients []string `json:"good_ingredients"`
	BadIngredients  []string `json:"bad_ingredients"`
	ImageURL        *string  `json:"image_url"`
}

// UpstreamResponse is the product payload returned by the Open Food Facts v0 API.
// Pointer fields distinguish "absent" from "empty".
type UpstreamResponse struct {
	Status  *int             `json:"status"`
	Product *UpstreamProduct `json:"product"`
}

// UpstreamProduct holds the subset of Open Food Facts product fields we use
type UpstreamProduct struct {
	ProductName     *string `json:"product_name"`
	IngredientsText *string `json:"ingredients_text"`
	ImageURL        *string `json:"image_url"`
}

// ProductFound is the upstream status value for a known barcode
const ProductFound = 1

// ProductClassifiedEvent is published after a product is fetched and classified
type ProductClassifiedEvent struct {
	Barcode         string   `json:"barcode"`
	Name            string   `json:"name"`
	GoodIngredients []string `json:"good_ingredients"`
	BadIngredients  []string `json:"bad_ingredients"`
	ClassifiedAt    string   `json:"classified_at"`
}
