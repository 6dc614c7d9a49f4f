package policy

import "time"

// Category groups policy documents by the concern they cover.
type Category string

const (
	CategoryWarranty   Category = "warranty"
	CategoryClaims     Category = "claims"
	CategoryDelivery   Category = "delivery"
	CategoryCompliance Category = "compliance"
	CategoryGeneral    Category = "general"
)

// Chunk is one logical piece of a policy document (a procedure,
// a section, a deadline table).
type Chunk struct {
	ID        int64     `json:"id"`
	Category  Category  `json:"category"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Source    string    `json:"source"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
