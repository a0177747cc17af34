package sale

import "time"

// FilterCriteria is the fixed predicate set for ledger queries. Every field
// is optional; an absent field imposes no constraint on that axis. Both
// timestamp bounds are inclusive.
type FilterCriteria struct {
	Start      *time.Time
	End        *time.Time
	CustomerID *int64
	ProductID  *int64
}

// IsZero reports whether no predicate is set.
func (c FilterCriteria) IsZero() bool {
	return c.Start == nil && c.End == nil && c.CustomerID == nil && c.ProductID == nil
}

// Matches reports whether s satisfies every supplied predicate.
//
// A walk-in sale (nil CustomerID) never matches a customer filter. A product
// filter matches when any line item references the product.
func (c FilterCriteria) Matches(s Sale) bool {
	if c.Start != nil && s.CreatedAt.Before(*c.Start) {
		return false
	}
	if c.End != nil && s.CreatedAt.After(*c.End) {
		return false
	}
	if c.CustomerID != nil {
		if s.CustomerID == nil || *s.CustomerID != *c.CustomerID {
			return false
		}
	}
	if c.ProductID != nil {
		found := false
		for _, item := range s.Items {
			if item.ProductID == *c.ProductID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
