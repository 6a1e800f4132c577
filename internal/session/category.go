package session

import (
	"strings"

	"github.com/gosimple/slug"
)

// Category is the kind of branded application being mocked up.
type Category string

const (
	CategoryStorefront   Category = "Storefront"
	CategoryVehicleWrap  Category = "Vehicle Wrap"
	CategorySignage      Category = "Signage"
	CategoryUniform      Category = "Uniform"
	CategoryInteriorWall Category = "Interior Wall"
	CategoryPackaging    Category = "Packaging"
)

// Categories lists every category in display order. The first entry is the
// default.
var Categories = []Category{
	CategoryStorefront,
	CategoryVehicleWrap,
	CategorySignage,
	CategoryUniform,
	CategoryInteriorWall,
	CategoryPackaging,
}

// DefaultCategory is used for new sessions and unrecognized input.
const DefaultCategory = CategoryStorefront

// Label returns the human-readable name.
func (c Category) Label() string {
	return string(c)
}

// Slug returns the URL-safe form, e.g. "vehicle-wrap".
func (c Category) Slug() string {
	return slug.Make(string(c))
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Index returns the position of c in Categories, or 0 for unknown values.
func (c Category) Index() int {
	for i, known := range Categories {
		if c == known {
			return i
		}
	}
	return 0
}

// ParseCategory matches s case-insensitively against labels and slugs.
// Unknown or empty input yields DefaultCategory.
func ParseCategory(s string) Category {
	c, ok := LookupCategory(s)
	if !ok {
		return DefaultCategory
	}
	return c
}

// LookupCategory is ParseCategory with an explicit found flag.
func LookupCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultCategory, false
	}
	want := slug.Make(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) || want == c.Slug() {
			return c, true
		}
	}
	return DefaultCategory, false
}
