package openfoodfacts

import "github.com/labelscan/backend/internal/domain"

// DefaultProductName is used when the upstream product has no name
const DefaultProductName = "Product Name Not Found"

// ClassifyFunc splits an ingredient list into good and bad entries
type ClassifyFunc func(ingredientsText string) (good []string, bad []string)

// MapToProduct converts an upstream payload into a Product, applying defaults
// for absent fields and running classify over the ingredient text
func MapToProduct(resp *domain.UpstreamResponse, classify ClassifyFunc) *domain.Product {
	var upstream domain.UpstreamProduct
	if resp != nil && resp.Product != nil {
		upstream = *resp.Product
	}

	name := DefaultProductName
	if upstream.ProductName != nil {
		name = *upstream.ProductName
	}

	ingredients := ""
	if upstream.IngredientsText != nil {
		ingredients = *upstream.IngredientsText
	}

	var imageURL *string
	if upstream.ImageURL != nil {
		u := *upstream.ImageURL
		imageURL = &u
	}

	good, bad := []string{}, []string{}
	if classify != nil {
		good, bad = classify(ingredients)
	}

	return &domain.Product{
		Name:            name,
		Ingredients:     ingredients,
		GoodIngredients: good,
		BadIngredients:  bad,
		ImageURL:        imageURL,
	}
}
