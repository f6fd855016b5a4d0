package eventpublisher

import "strings"

const typePrefix = "app.mise.activity."

// normalizeKind accepts the stored kind names, their route spellings and fully
// qualified CloudEvents types.
func normalizeKind(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.TrimPrefix(v, typePrefix)
	switch v {
	case "view_recipe", "recipe-view", "recipe_view", "view-recipe":
		return "view_recipe"
	case "cook_start", "cook-start":
		return "cook_start"
	case "cook_complete", "cook-complete":
		return "cook_complete"
	case "search":
		return "search"
	default:
		return v
	}
}

func isKnownKind(kind string) bool {
	switch kind {
	case "view_recipe", "cook_start", "cook_complete", "search":
		return true
	default:
		return false
	}
}

// EventType returns the CloudEvents type for an activity kind.
func EventType(kind string) string {
	return typePrefix + normalizeKind(kind)
}
