package util

import (
	"strings"
)

// ComputeBaseHref calculates the relative path back to the site root from
// a page's directory URL, so CSS/JS links work at any depth. "./" gets "",
// "guide/" gets "../" and "guide/setup/" gets "../../".
func ComputeBaseHref(pageURL string) string {
	trimmed := strings.Trim(pageURL, "/")
	if trimmed == "" || trimmed == "." {
		return ""
	}
	depth := strings.Count(trimmed, "/") + 1
	return strings.Repeat("../", depth)
}
