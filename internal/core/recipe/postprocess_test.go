package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBasicStaple(t *testing.T) {
	t.Run("staples", func(t *testing.T) {
		for _, name := range []string{
			"water", "Water", "  WATER  ", "cold water", "tap water",
			"ice", "salt", "Sea Salt", "black pepper", "olive oil",
			"a pinch of salt and pepper",
		} {
			assert.True(t, IsBasicStaple(name), "expected %q to be a staple", name)
		}
	})

	t.Run("non staples", func(t *testing.T) {
		for _, name := range []string{
			"", "watermelon", "watercress", "water chestnuts", "chicken",
			"coconut milk", "saltine crackers", "peppercorn sauce",
		} {
			assert.False(t, IsBasicStaple(name), "expected %q not to be a staple", name)
		}
	})
}

func TestApplyStapleAvailability(t *testing.T) {
	r := Recipe{Ingredients: []Ingredient{
		{Name: "Chicken", IsAvailableInPantry: true},
		{Name: "Salt", IsAvailableInPantry: false},
		{Name: "Watermelon", IsAvailableInPantry: false},
		{Name: "Olive Oil", IsAvailableInPantry: true},
	}}

	ApplyStapleAvailability(&r)

	assert.True(t, r.Ingredients[0].IsAvailableInPantry, "true stays true")
	assert.True(t, r.Ingredients[1].IsAvailableInPantry, "staple raised to true")
	assert.False(t, r.Ingredients[2].IsAvailableInPantry, "water exclusion untouched")
	assert.True(t, r.Ingredients[3].IsAvailableInPantry)
}

func TestComputeMatchScore(t *testing.T) {
	t.Run("zero without ingredients", func(t *testing.T) {
		assert.Equal(t, 0, ComputeMatchScore(&Recipe{}))
	})

	t.Run("rounded percentage", func(t *testing.T) {
		r := Recipe{Ingredients: []Ingredient{
			{IsAvailableInPantry: true},
			{IsAvailableInPantry: true},
			{IsAvailableInPantry: false},
		}}
		assert.Equal(t, 67, ComputeMatchScore(&r))
	})

	t.Run("bounds", func(t *testing.T) {
		all := Recipe{Ingredients: []Ingredient{{IsAvailableInPantry: true}}}
		none := Recipe{Ingredients: []Ingredient{{IsAvailableInPantry: false}}}
		assert.Equal(t, 100, ComputeMatchScore(&all))
		assert.Equal(t, 0, ComputeMatchScore(&none))
	})
}

func TestSortRecipes(t *testing.T) {
	t.Run("expiring first when prioritized", func(t *testing.T) {
		recipes := []Recipe{
			{Title: "A", MatchScore: 90, UsesExpiringIngredients: false},
			{Title: "B", MatchScore: 40, UsesExpiringIngredients: true},
		}
		SortRecipes(recipes, true)
		assert.Equal(t, "B", recipes[0].Title)
	})

	t.Run("score descending when not prioritized", func(t *testing.T) {
		recipes := []Recipe{
			{Title: "A", MatchScore: 40, UsesExpiringIngredients: true},
			{Title: "B", MatchScore: 90, UsesExpiringIngredients: false},
		}
		SortRecipes(recipes, false)
		assert.Equal(t, "B", recipes[0].Title)
	})

	t.Run("stable on ties", func(t *testing.T) {
		recipes := []Recipe{
			{Title: "first", MatchScore: 50},
			{Title: "second", MatchScore: 50},
			{Title: "third", MatchScore: 50},
		}
		SortRecipes(recipes, false)
		assert.Equal(t, []string{"first", "second", "third"},
			[]string{recipes[0].Title, recipes[1].Title, recipes[2].Title})
	})
}

func TestPostProcess(t *testing.T) {
	// Recipe A has 3 of 4 available after staple enrichment, recipe B has
	// 2 of 2; B should sort first on score alone.
	recipes := []Recipe{
		{
			Title: "A",
			Ingredients: []Ingredient{
				{Name: "Chicken", IsAvailableInPantry: true},
				{Name: "Rice", IsAvailableInPantry: true},
				{Name: "Salt", IsAvailableInPantry: false},
				{Name: "Saffron", IsAvailableInPantry: false},
			},
		},
		{
			Title: "B",
			Ingredients: []Ingredient{
				{Name: "Chicken", IsAvailableInPantry: true},
				{Name: "Water", IsAvailableInPantry: false},
			},
		},
	}

	PostProcess(recipes, false)

	assert.Equal(t, "B", recipes[0].Title)
	assert.Equal(t, 100, recipes[0].MatchScore)
	assert.Equal(t, "A", recipes[1].Title)
	assert.Equal(t, 75, recipes[1].MatchScore)
}
