package gateway

import "strings"

// extractJSON pulls the JSON payload out of a model response that may be
// wrapped in markdown fences or surrounded by prose. Models ignore the
// "no fences" instruction often enough that this stays worth doing.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}

	// Trim prose around the outermost object or array.
	objStart := strings.IndexAny(content, "{[")
	if objStart < 0 {
		return content
	}
	var objEnd int
	if content[objStart] == '{' {
		objEnd = strings.LastIndex(content, "}")
	} else {
		objEnd = strings.LastIndex(content, "]")
	}
	if objEnd <= objStart {
		return content
	}
	return content[objStart : objEnd+1]
}
