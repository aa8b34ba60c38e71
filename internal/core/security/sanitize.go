package security

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxStringLeafLength caps every string leaf inside SanitizeObject.
	MaxStringLeafLength = 2000
	// MaxObjectKeys caps the number of keys copied per object level.
	MaxObjectKeys = 100
	// DefaultMaxDepth bounds SanitizeObject recursion.
	DefaultMaxDepth = 5

	// maxStripPasses bounds the strip loop in SanitizeInput. Each pass
	// that changes anything strictly shrinks the input, so this is a
	// safety bound, not the usual exit.
	maxStripPasses = 10
)

var (
	htmlTagPattern     = regexp.MustCompile(`<[^>]*>`)
	controlCharPattern = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")

	// Prompt-injection phrasings removed wholesale from user input.
	injectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)ignore\s+(all\s+)?previous\s+instructions?`),
		regexp.MustCompile(`(?i)ignore\s+(all\s+)?prior\s+instructions?`),
		regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|above)\s+instructions?`),
		regexp.MustCompile(`(?i)forget\s+(all\s+)?(previous|prior|your)\s+instructions?`),
		regexp.MustCompile(`(?i)you\s+are\s+now\s+a?\s*\w*`),
		regexp.MustCompile(`(?i)act\s+as\s+(a|an|if)\b`),
		regexp.MustCompile(`(?i)pretend\s+(to\s+be|you\s+are)\b`),
		regexp.MustCompile(`(?i)system\s*(prompt|message|instruction)s?`),
		regexp.MustCompile(`(?i)\[?\s*system\s*\]?\s*:`),
		regexp.MustCompile(`(?i)reveal\s+your\s+(system\s+)?(prompt|instructions?)`),
		regexp.MustCompile(`(?i)\bDAN\s+mode\b`),
		regexp.MustCompile(`(?i)\bjailbreak\w*\b`),
		regexp.MustCompile(`(?i)\broleplay\w*\b`),
		regexp.MustCompile(`(?i)\bbypass\w*\b`),
		regexp.MustCompile(`(?i)\boverride\w*\b`),
	}

	cookingKeywords = []string{
		"cook", "recipe", "food", "ingredient", "meal", "dish", "kitchen",
		"bake", "roast", "grill", "fry", "boil", "simmer", "steam", "saute",
		"chop", "slice", "dice", "mince", "whisk", "stir", "mix", "knead",
		"season", "marinate", "spice", "herb", "sauce", "oven", "stove",
		"pan", "pot", "knife", "eat", "dinner", "lunch", "breakfast",
		"snack", "dessert", "vegetable", "fruit", "meat", "chicken", "beef",
		"pork", "fish", "pasta", "rice", "bread", "cheese", "egg", "milk",
		"butter", "oil", "salt", "pepper", "sugar", "flour", "temperature",
		"minutes", "serve", "portion", "taste", "flavor",
	}
)

// SanitizeInput cleans a free-text field before it can reach a model
// prompt: truncates to maxLength, strips HTML/XML-like tags, strips
// control characters except newline and tab, removes known
// prompt-injection phrasings and trims whitespace. Applying it twice
// yields the same result as once.
func SanitizeInput(text string, maxLength int) string {
	if maxLength > 0 && len(text) > maxLength {
		text = truncateRunes(text, maxLength)
	}

	// Removing a match can splice the surrounding text into a fresh
	// match ("ignore previous ignore previous instructions instructions"
	// collapses into a live override phrase), so strip to a fixpoint.
	for i := 0; i < maxStripPasses; i++ {
		before := text
		text = htmlTagPattern.ReplaceAllString(text, "")
		text = controlCharPattern.ReplaceAllString(text, "")
		for _, p := range injectionPatterns {
			text = p.ReplaceAllString(text, "")
		}
		if text == before {
			break
		}
	}

	return strings.TrimSpace(text)
}

// truncateRunes cuts text to at most max bytes without splitting a
// multi-byte rune.
func truncateRunes(text string, max int) string {
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// SanitizeObject walks an arbitrary decoded-JSON value and sanitizes every
// string leaf, capping each at MaxStringLeafLength. Arrays are mapped,
// objects copy at most MaxObjectKeys keys, and recursion beyond maxDepth
// yields nil. Guards against deeply nested or oversized payloads.
func SanitizeObject(value interface{}, maxDepth int) interface{} {
	if maxDepth < 0 {
		return nil
	}

	switch v := value.(type) {
	case string:
		return SanitizeInput(v, MaxStringLeafLength)
	case []interface{}:
		out := make([]interface{}, 0, len(v))
		for _, item := range v {
			out = append(out, SanitizeObject(item, maxDepth-1))
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		count := 0
		for key, item := range v {
			if count >= MaxObjectKeys {
				break
			}
			out[SanitizeInput(key, MaxStringLeafLength)] = SanitizeObject(item, maxDepth-1)
			count++
		}
		return out
	default:
		return v
	}
}

// IsCookingRelated is a keyword-membership heuristic over a fixed cooking
// vocabulary. It is an auxiliary topical gate, not a hard filter.
func IsCookingRelated(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range cookingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML escapes the five XML special characters so user content
// interpolated into a tag-delimited prompt cannot close its data boundary.
func EscapeXML(text string) string {
	return xmlEscaper.Replace(text)
}

// ValidateLength checks an inclusive length bound. An empty string is only
// valid when min is zero.
func ValidateLength(text string, min, max int) bool {
	return len(text) >= min && len(text) <= max
}
