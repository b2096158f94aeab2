package models

import (
	"strings"
	"time"
)

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

var categoryIcons = []struct {
	keyword string
	icon    string
}{
	{"phone", "smartphone"},
	{"laptop", "laptop"},
	{"computer", "laptop"},
	{"electronic", "cpu"},
	{"fashion", "shirt"},
	{"cloth", "shirt"},
	{"shoe", "footprints"},
	{"book", "book-open"},
	{"food", "utensils"},
	{"grocer", "shopping-basket"},
	{"beauty", "sparkles"},
	{"home", "home"},
	{"furniture", "sofa"},
	{"sport", "dumbbell"},
	{"toy", "gamepad"},
}

// IconFor picks an icon key from the category name, falling back to "tag".
func IconFor(name string) string {
	lower := strings.ToLower(name)
	for _, ci := range categoryIcons {
		if strings.Contains(lower, ci.keyword) {
			return ci.icon
		}
	}
	return "tag"
}
