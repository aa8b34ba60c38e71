package recipe

import (
	"math"
	"sort"
)

// ApplyStapleAvailability raises IsAvailableInPantry for staple
// ingredients. The flag is monotonic: a true from the model is never
// lowered.
func ApplyStapleAvailability(r *Recipe) {
	for i := range r.Ingredients {
		if !r.Ingredients[i].IsAvailableInPantry && IsBasicStaple(r.Ingredients[i].Name) {
			r.Ingredients[i].IsAvailableInPantry = true
		}
	}
}

// ComputeMatchScore returns the percentage of ingredients available in the
// pantry, rounded to the nearest integer. Zero when the recipe has no
// ingredients.
func ComputeMatchScore(r *Recipe) int {
	if len(r.Ingredients) == 0 {
		return 0
	}
	available := 0
	for _, ing := range r.Ingredients {
		if ing.IsAvailableInPantry {
			available++
		}
	}
	return int(math.Round(100 * float64(available) / float64(len(r.Ingredients))))
}

// SortRecipes orders recipes in place. With prioritizeExpiring set,
// recipes using expiring ingredients come first; match score descending is
// always the secondary key. The sort is stable so upstream order breaks
// ties.
func SortRecipes(recipes []Recipe, prioritizeExpiring bool) {
	sort.SliceStable(recipes, func(i, j int) bool {
		if prioritizeExpiring && recipes[i].UsesExpiringIngredients != recipes[j].UsesExpiringIngredients {
			return recipes[i].UsesExpiringIngredients
		}
		return recipes[i].MatchScore > recipes[j].MatchScore
	})
}

// PostProcess runs the full enrichment pass over a generated batch: staple
// availability, match score, and final ordering.
func PostProcess(recipes []Recipe, prioritizeExpiring bool) {
	for i := range recipes {
		ApplyStapleAvailability(&recipes[i])
		recipes[i].MatchScore = ComputeMatchScore(&recipes[i])
	}
	SortRecipes(recipes, prioritizeExpiring)
}
