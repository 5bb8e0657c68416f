// Package index groups a classified snapshot of running applications by
// category.
package index

import "github.com/jask/catswitch/internal/category"

// Record is one running application with its category.
type Record struct {
	ID       string
	Name     string
	Icon     string
	Category category.Category
}

// Position addresses one application in an Index.
type Position struct {
	Category category.Category
	Index    int
}

// Index is an immutable grouping of a snapshot. Categories without
// applications are absent.
type Index struct {
	categories []category.Category
	apps       map[category.Category][]Record
	total      int
}

// Build groups records by category. Within a category the snapshot order
// is kept; categories are ordered by the enum order.
func Build(records []Record) *Index {
	byCat := make(map[category.Category][]Record)
	for _, r := range records {
		if !r.Category.Valid() {
			r.Category = category.Default
		}
		byCat[r.Category] = append(byCat[r.Category], r)
	}

	idx := &Index{apps: byCat, total: len(records)}
	for _, c := range category.All() {
		if len(byCat[c]) > 0 {
			idx.categories = append(idx.categories, c)
		}
	}
	return idx
}

// Empty is an index with no applications.
func Empty() *Index {
	return Build(nil)
}

// Categories returns the non-empty categories in cycling order.
func (x *Index) Categories() []category.Category {
	return append([]category.Category(nil), x.categories...)
}

// Apps returns the applications of c in snapshot order.
func (x *Index) Apps(c category.Category) []Record {
	return append([]Record(nil), x.apps[c]...)
}

// Count is the number of applications in c.
func (x *Index) Count(c category.Category) int {
	return len(x.apps[c])
}

// Len is the total number of applications.
func (x *Index) Len() int {
	return x.total
}

// Contains reports whether c has at least one application.
func (x *Index) Contains(c category.Category) bool {
	return len(x.apps[c]) > 0
}

// At returns the application at p.
func (x *Index) At(p Position) (Record, bool) {
	apps := x.apps[p.Category]
	if p.Index < 0 || p.Index >= len(apps) {
		return Record{}, false
	}
	return apps[p.Index], true
}

// Valid reports whether p addresses an application.
func (x *Index) Valid(p Position) bool {
	_, ok := x.At(p)
	return ok
}

// Locate returns the position of the application with the given ID.
func (x *Index) Locate(id string) (Position, bool) {
	for _, c := range x.categories {
		for i, r := range x.apps[c] {
			if r.ID == id {
				return Position{Category: c, Index: i}, true
			}
		}
	}
	return Position{}, false
}
