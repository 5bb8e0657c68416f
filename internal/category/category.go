// Package category defines the closed set of application categories and the
// offline rule table used when no remote classification is available.
package category

import "fmt"

// Category is one label from the fixed set used to group applications.
// Declaration order is the cycling order.
type Category int

const (
	Productivity Category = iota
	Development
	Communication
	Media
	Creativity
	Utilities
	Education
	Finance
	Gaming
	Lifestyle
	Other
)

// Count is the number of categories.
const Count = int(Other) + 1

var labels = [Count]string{
	Productivity:  "Productivity",
	Development:   "Development",
	Communication: "Communication",
	Media:         "Media",
	Creativity:    "Creativity",
	Utilities:     "Utilities",
	Education:     "Education",
	Finance:       "Finance",
	Gaming:        "Gaming",
	Lifestyle:     "Lifestyle",
	Other:         "Other",
}

var displayNames = [Count]string{
	Productivity:  "Productivity",
	Development:   "Development",
	Communication: "Communication",
	Media:         "Media & Entertainment",
	Creativity:    "Creativity & Design",
	Utilities:     "Utilities",
	Education:     "Education & Learning",
	Finance:       "Finance & Business",
	Gaming:        "Gaming",
	Lifestyle:     "Lifestyle & Health",
	Other:         "Other",
}

var byLabel = func() map[string]Category {
	m := make(map[string]Category, Count)
	for i, l := range labels {
		m[l] = Category(i)
	}
	return m
}()

// All returns every category in cycling order.
func All() []Category {
	out := make([]Category, Count)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// Labels returns the canonical labels in cycling order.
func Labels() []string {
	out := make([]string, Count)
	copy(out, labels[:])
	return out
}

// Valid reports whether c is a declared category.
func (c Category) Valid() bool {
	return c >= 0 && int(c) < Count
}

// String returns the canonical label.
func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return labels[c]
}

// DisplayName returns the longer human-facing name.
func (c Category) DisplayName() string {
	if !c.Valid() {
		return c.String()
	}
	return displayNames[c]
}

// Parse matches s exactly against the canonical labels.
func Parse(s string) (Category, bool) {
	c, ok := byLabel[s]
	return c, ok
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("category: invalid value %d", int(c))
	}
	return []byte(labels[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(b []byte) error {
	v, ok := Parse(string(b))
	if !ok {
		return fmt.Errorf("category: unknown label %q", string(b))
	}
	*c = v
	return nil
}
