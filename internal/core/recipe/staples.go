package recipe

import "strings"

// Staple classification compensates for models under-reporting trivially
// available items (water, salt, oil). Matching is case-insensitive.

// exactStaples match the whole ingredient name.
var exactStaples = []string{
	"water",
	"ice",
	"ice cubes",
	"salt",
	"sea salt",
	"kosher salt",
	"table salt",
	"pepper",
	"black pepper",
	"white pepper",
	"ground pepper",
	"oil",
	"cooking oil",
	"vegetable oil",
	"canola oil",
	"sunflower oil",
	"olive oil",
}

// substringStaples match anywhere inside the ingredient name.
var substringStaples = []string{
	"salt and pepper",
	"salt & pepper",
}

// waterExclusions are compound names that contain "water" but are not water.
var waterExclusions = []string{
	"watermelon",
	"watercress",
	"water chestnut",
}

// IsBasicStaple reports whether name is a universally available staple that
// should count as present without an explicit pantry entry.
func IsBasicStaple(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return false
	}

	for _, excl := range waterExclusions {
		if strings.Contains(n, excl) {
			return false
		}
	}

	for _, s := range exactStaples {
		if n == s {
			return true
		}
	}

	// "cold water", "warm water", "hot water", "tap water" and the like.
	if strings.HasSuffix(n, " water") || strings.HasPrefix(n, "water ") {
		return true
	}

	for _, s := range substringStaples {
		if strings.Contains(n, s) {
			return true
		}
	}

	return false
}
