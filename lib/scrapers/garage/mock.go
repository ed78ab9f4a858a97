package garage

// MockListing synthesizes the static placeholder record returned when every
// resolution strategy fails. The id is the caller's, everything else is a
// representative example so invoices can still be generated (and the feature
// demoed) while the upstream is unreachable.
func MockListing(id string) Listing {
	l := Listing{
		Id:    id,
		Title: "2018 Pierce Enforcer Pumper",
		Description: "Excellent condition fire truck with 1500 GPM pump, 750-gallon water tank, " +
			"and foam system. Well-maintained with complete service records. Features include " +
			"LED lighting, hydraulic rescue tools, and advanced communications system.",
		Price:   425000,
		Year:    2018,
		Make:    "Pierce",
		Model:   "Enforcer",
		Mileage: 15000,
	}
	return l
}
