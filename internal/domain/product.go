package domain

// Product is a normalized product listing ready for the feed sinks
type Product struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Link             string `json:"link"`
	ImageLink        string `json:"image_link"`
	Availability     string `json:"availability"`
	Price            string `json:"price"`
	SalePrice        string `json:"sale_price"`
	ProductType      string `json:"product_type"`
	Brand            string `json:"brand"`
	IdentifierExists string `json:"identifier_exists"`
	Condition        string `json:"condition"`
	Adult            string `json:"adult"`
	HasPrice         bool   `json:"has_price"`

	CategoryID string `json:"category_id"` // raw id product_type is resolved from
	CompanyID  string `json:"company_id"`
}

// Field returns the value of the feed field with the given name, or ""
// for names the product does not carry.
func (p *Product) Field(name string) string {
	switch name {
	case "id":
		return p.ID
	case "title":
		return p.Title
	case "link":
		return p.Link
	case "image_link":
		return p.ImageLink
	case "availability":
		return p.Availability
	case "price":
		return p.Price
	case "sale_price":
		return p.SalePrice
	case "product_type":
		return p.ProductType
	case "brand":
		return p.Brand
	case "identifier_exists":
		return p.IdentifierExists
	case "condition":
		return p.Condition
	case "adult":
		return p.Adult
	default:
		return ""
	}
}
