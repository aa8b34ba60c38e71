package recipe

// Unit is the closed set of pantry measurement units. Amounts that
// reference a pantry item must reuse its unit verbatim; cross-unit
// conversion is forbidden.
type Unit string

const (
	UnitPcs  Unit = "pcs"
	UnitG    Unit = "g"
	UnitKg   Unit = "kg"
	UnitMl   Unit = "ml"
	UnitL    Unit = "L"
	UnitOz   Unit = "oz"
	UnitLb   Unit = "lb"
	UnitCups Unit = "cups"
	UnitTbsp Unit = "tbsp"
	UnitTsp  Unit = "tsp"
)

// Units lists every valid unit, in the order presented to the model schema.
var Units = []Unit{UnitPcs, UnitG, UnitKg, UnitMl, UnitL, UnitOz, UnitLb, UnitCups, UnitTbsp, UnitTsp}

// IsValidUnit reports whether u is a member of the closed unit set.
func IsValidUnit(u Unit) bool {
	for _, v := range Units {
		if u == v {
			return true
		}
	}
	return false
}

// Category is the closed set of pantry categories.
type Category string

const (
	CategoryProduce   Category = "Produce"
	CategoryDairy     Category = "Dairy"
	CategoryMeat      Category = "Meat"
	CategoryGrains    Category = "Grains"
	CategoryBakery    Category = "Bakery"
	CategorySpices    Category = "Spices"
	CategoryBeverages Category = "Beverages"
	CategoryFrozen    Category = "Frozen"
	CategorySnacks    Category = "Snacks"
	CategoryGeneral   Category = "General"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryProduce, CategoryDairy, CategoryMeat, CategoryGrains, CategoryBakery,
	CategorySpices, CategoryBeverages, CategoryFrozen, CategorySnacks, CategoryGeneral,
}

// IsValidCategory reports whether c is a member of the closed category set.
func IsValidCategory(c Category) bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Difficulty is the closed set of recipe difficulties.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties lists every valid difficulty.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// PantryItem is a single pantry entry. Quantity accepts both numbers and
// strings from older clients.
type PantryItem struct {
	Name       string      `json:"name"`
	Quantity   interface{} `json:"quantity"`
	Unit       Unit        `json:"unit"`
	Category   Category    `json:"category,omitempty"`
	ExpiryDate string      `json:"expiryDate,omitempty"`
}

// UserPreferences is the user-owned preference set, persisted outside this
// pipeline and merged in per request.
type UserPreferences struct {
	Diet                string   `json:"diet,omitempty"`
	Allergies           []string `json:"allergies,omitempty"`
	Appliances          []string `json:"appliances,omitempty"`
	FavoriteCuisines    []string `json:"favoriteCuisines,omitempty"`
	CookingSkill        string   `json:"cookingSkill,omitempty"`
	NutritionalGoal     string   `json:"nutritionalGoal,omitempty"`
	MaxCaloriesPerMeal  int      `json:"maxCaloriesPerMeal,omitempty"`
	HouseholdSize       int      `json:"householdSize,omitempty"`
	DislikedIngredients []string `json:"dislikedIngredients,omitempty"`
	MeasurementUnit     string   `json:"measurementUnit,omitempty"`
	IsPro               bool     `json:"isPro,omitempty"`
}

// GenerationContext is the transient per-request generation context.
type GenerationContext struct {
	MealType           string `json:"mealType"`
	TimeAvailable      string `json:"timeAvailable,omitempty"`
	Cuisine            string `json:"cuisine,omitempty"`
	HeroIngredient     string `json:"heroIngredient,omitempty"`
	PrioritizeExpiring bool   `json:"prioritizeExpiring,omitempty"`
	Servings           int    `json:"servings,omitempty"`
	HomeStyle          bool   `json:"homeStyle,omitempty"`
}

// Ingredient is one line of a recipe ingredient list. IsAvailableInPantry
// is a lower bound from the model; post-processing may raise it to true
// but never lowers it.
type Ingredient struct {
	Name                string `json:"name"`
	Amount              string `json:"amount"`
	IsAvailableInPantry bool   `json:"isAvailableInPantry"`
}

// Macro is a single named macro value, e.g. {"Protein", "32g"}.
type Macro struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Nutrition is the secondary nutrition block.
type Nutrition struct {
	Fiber         string `json:"fiber"`
	Sugar         string `json:"sugar"`
	Sodium        string `json:"sodium"`
	ServingWeight string `json:"servingWeight"`
}

// Recipe is one generated recipe. ID is always assigned client-side and
// MatchScore is always recomputed client-side.
type Recipe struct {
	ID                      string       `json:"id"`
	Title                   string       `json:"title"`
	Description             string       `json:"description"`
	ImagePrompt             string       `json:"imagePrompt,omitempty"`
	TotalTimeMinutes        int          `json:"totalTimeMinutes"`
	Difficulty              Difficulty   `json:"difficulty"`
	CaloriesApprox          int          `json:"caloriesApprox"`
	UsesExpiringIngredients bool         `json:"usesExpiringIngredients"`
	Ingredients             []Ingredient `json:"ingredients"`
	Instructions            []string     `json:"instructions"`
	Tags                    []string     `json:"tags"`
	Macros                  []Macro      `json:"macros"`
	Nutrition               Nutrition    `json:"nutrition"`
	MatchScore              int          `json:"matchScore"`
	GeneratedImage          string       `json:"generatedImage,omitempty"`
}
