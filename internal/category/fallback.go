package category

import "strings"

// Default is the bucket for identifiers no rule matches.
const Default = Other

type rule struct {
	needles  []string
	category Category
}

// Ordered; first match wins.
var rules = []rule{
	{needles: []string{"xcode"}, category: Development},
	{needles: []string{"visual", "android"}, category: Development},
	{needles: []string{"terminal", "iterm"}, category: Development},
	{needles: []string{"slack", "teams", "zoom"}, category: Communication},
	{needles: []string{"spotify", "music", "netflix"}, category: Media},
	{needles: []string{"notes.app", "microsoft.word", "microsoft.excel", "microsoft.powerpoint"}, category: Productivity},
}

// Fallback classifies an application from its bundle identifier alone.
// It is deterministic and performs no I/O.
func Fallback(id string) Category {
	lower := strings.ToLower(id)
	for _, r := range rules {
		for _, n := range r.needles {
			if strings.Contains(lower, n) {
				return r.category
			}
		}
	}
	return Default
}
