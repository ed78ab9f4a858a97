package invoice

import (
	"math"

	"garage-invoice-backend/lib/scrapers/garage"
	"garage-invoice-backend/lib/textutil"
)

// Field length budgets. They bound downstream rendering cost, a PDF page has
// no business carrying a megabyte title.
const (
	IdMaxLength          = 100
	TitleMaxLength       = 200
	DescriptionMaxLength = 5000
	MakeModelMaxLength   = 200
)

// ValidShape reports whether a listing carries the minimum required fields:
// non-empty id and title, and a finite numeric price. Range checks (negative
// prices and the like) are a data quality concern, not a shape concern.
func ValidShape(l garage.Listing) bool {
	if l.Id == "" || l.Title == "" {
		return false
	}
	if math.IsNaN(l.Price) || math.IsInf(l.Price, 0) {
		return false
	}
	return true
}

// Sanitize strips ASCII control characters out of every free-text field and
// clamps each to its length budget. It never rejects input, only clamps it,
// truncation silently drops trailing content.
func Sanitize(l garage.Listing) garage.Listing {
	l.Id = textutil.Clean(l.Id, IdMaxLength)
	l.Title = textutil.Clean(l.Title, TitleMaxLength)
	l.Description = textutil.Clean(l.Description, DescriptionMaxLength)
	l.Make = textutil.Clean(l.Make, MakeModelMaxLength)
	l.Model = textutil.Clean(l.Model, MakeModelMaxLength)
	l.Specs = textutil.Clean(l.Specs, DescriptionMaxLength)
	return l
}
