package query

import (
	"sort"
	"strings"

	"github.com/carson-networks/expense-server/internal/validation"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

const (
	DefaultSortBy  = FieldDate
	DefaultSortDir = Desc
)

var sortable = map[Field]struct{}{
	FieldID:       {},
	FieldDate:     {},
	FieldAmount:   {},
	FieldCategory: {},
	FieldMerchant: {},
}

// SortableFields returns the accepted sort keys in alphabetical order.
func SortableFields() []string {
	keys := make([]string, 0, len(sortable))
	for f := range sortable {
		keys = append(keys, string(f))
	}
	sort.Strings(keys)
	return keys
}

// Term is one ORDER BY entry.
type Term struct {
	Field     Field
	Direction Direction
}

// Order is a validated ordering: the requested column, tie-broken by id in
// the same direction.
type Order struct {
	Field     Field
	Direction Direction
}

// ResolveOrder validates sortBy and sortDir. Empty strings select the
// defaults (date, desc).
func ResolveOrder(sortBy, sortDir string) (Order, error) {
	order := Order{Field: DefaultSortBy, Direction: DefaultSortDir}
	verr := &validation.Error{}

	if sortBy != "" {
		f := Field(sortBy)
		if _, ok := sortable[f]; !ok {
			verr.Add("sort_by", "invalid sort_by, allowed: %s", strings.Join(SortableFields(), ", "))
		}
		order.Field = f
	}

	if sortDir != "" {
		d := Direction(sortDir)
		if d != Asc && d != Desc {
			verr.Add("sort_dir", "invalid sort_dir, use 'asc' or 'desc'")
		}
		order.Direction = d
	}

	if err := verr.OrNil(); err != nil {
		return Order{}, err
	}
	return order, nil
}

// Terms returns the primary term followed by the id tie-break. Ordering by
// id needs no tie-break.
func (o Order) Terms() []Term {
	primary := Term{Field: o.Field, Direction: o.Direction}
	if o.Field == FieldID {
		return []Term{primary}
	}
	return []Term{primary, {Field: FieldID, Direction: o.Direction}}
}
