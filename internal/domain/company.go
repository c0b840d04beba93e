package domain

// Company is a seller discovered on the marketplace
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Link string `json:"link"` // discovery-time URL
}

// LinkPage is one listing page of company links for a category.
type LinkPage struct {
	CategoryID string
	Page       int
	Outcome    Outcome
	Links      []string
}
