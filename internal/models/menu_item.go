package models

// MenuItem is reference data owned by the catalog collaborator. The order
// core only reads it to price line items; it is never written here.
type MenuItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"` // cents
	Category string `json:"category,omitempty"`
}
