package usecase

import "strings"

// concerningKeywords flag an ingredient as something to avoid
var concerningKeywords = []string{
	"artificial",
	"high fructose",
	"hydrogenated",
	"msg",
	"sodium benzoate",
	"yellow",
	"added sugar",
	"artificial color",
	"artificial flavor",
}

// beneficialKeywords flag an ingredient as a positive
var beneficialKeywords = []string{
	"whole",
	"vitamin",
	"mineral",
	"fiber",
	"organic",
	"natural",
}

// ClassifyIngredients splits a comma-separated ingredient list and sorts each
// entry into good or bad by keyword. Concerning keywords win over beneficial
// ones; entries matching neither are dropped. Both results keep input order
// and are never nil.
func ClassifyIngredients(ingredientsText string) (good []string, bad []string) {
	good = []string{}
	bad = []string{}

	if ingredientsText == "" {
		return good, bad
	}

	for _, segment := range strings.Split(ingredientsText, ",") {
		ingredient := strings.TrimSpace(segment)
		if ingredient == "" {
			continue
		}

		lower := strings.ToLower(ingredient)
		switch {
		case containsAny(lower, concerningKeywords):
			bad = append(bad, ingredient)
		case containsAny(lower, beneficialKeywords):
			good = append(good, ingredient)
		}
	}

	return good, bad
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
