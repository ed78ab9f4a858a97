package garage

// Listing is the canonical resolved record handed to the invoice layer.
// Id and Title are always non-empty, Price is always finite and >= 0.
// Everything else is best-effort.
type Listing struct {
	Id          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Year        int     `json:"year,omitempty"`
	Make        string  `json:"make,omitempty"`
	Model       string  `json:"model,omitempty"`
	Mileage     int     `json:"mileage,omitempty"`
	// Specs is a deduplicated, ordered, human-readable join of every
	// recognized attribute.
	Specs    string `json:"specs,omitempty"`
	ImageUrl string `json:"imageUrl,omitempty"`
}

// rawAttribute is a single opaque attribute entry as the upstream exposes it.
// The categoryAttributeId is a UUID whose labels are loaded client side after
// hydration, so only a couple of ids can be recognized with confidence.
type rawAttribute struct {
	CategoryAttributeId string `json:"categoryAttributeId"`
	Value               string `json:"value"`
}

type rawPhoto struct {
	Url string `json:"url"`
}

// rawListing is the upstream wire shape shared by the JSON endpoints and the
// listingPreview object embedded in page state. Price is a pointer so an
// absent price can be told apart from a zero one, guessed endpoints love to
// answer 200 with an unrelated JSON body.
type rawListing struct {
	Id          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Price       *float64       `json:"price"`
	Year        int            `json:"year"`
	Make        string         `json:"make"`
	Model       string         `json:"model"`
	Mileage     int            `json:"mileage"`
	ImageUrl    string         `json:"imageUrl"`
	Photos      []rawPhoto     `json:"itemPhotos"`
	Attributes  []rawAttribute `json:"attributes"`
}
