package query

import (
	"github.com/carson-networks/expense-server/internal/validation"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Page is the offset/limit window applied after filtering and ordering.
type Page struct {
	Limit  int
	Offset int
}

// NewPage validates the optional limit and offset, applying the defaults
// (limit 50, offset 0).
func NewPage(limit, offset *int) (Page, error) {
	page := Page{Limit: DefaultLimit}
	verr := &validation.Error{}

	if limit != nil {
		if *limit < 1 || *limit > MaxLimit {
			verr.Add("limit", "must be between 1 and %d", MaxLimit)
		}
		page.Limit = *limit
	}
	if offset != nil {
		if *offset < 0 {
			verr.Add("offset", "must be greater than or equal to 0")
		}
		page.Offset = *offset
	}

	if err := verr.OrNil(); err != nil {
		return Page{}, err
	}
	return page, nil
}

// Query is a complete, validated listing request.
type Query struct {
	Predicates []Predicate
	Order      Order
	Page       Page
}

// Request is the raw listing request as received by the boundary.
type Request struct {
	Params  Params
	SortBy  string
	SortDir string
	Limit   *int
	Offset  *int
}

// Build validates every part of r and composes a Query. All validation
// failures are reported together.
func Build(r Request) (*Query, error) {
	verr := &validation.Error{}

	preds, err := BuildPredicates(r.Params)
	collect(verr, err)

	order, err := ResolveOrder(r.SortBy, r.SortDir)
	collect(verr, err)

	page, err := NewPage(r.Limit, r.Offset)
	collect(verr, err)

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return &Query{Predicates: preds, Order: order, Page: page}, nil
}

func collect(verr *validation.Error, err error) {
	if err == nil {
		return
	}
	if fe, ok := err.(*validation.Error); ok {
		verr.Merge(fe)
		return
	}
	verr.Add("query", "%s", err.Error())
}
