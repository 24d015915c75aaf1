package models

import (
	"fmt"
	"strings"
)

// Product is a catalogue record owned by the backend.
type Product struct {
	ID          string  `json:"_id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
}

func (p Product) String() string {
	return fmt.Sprintf("%s  %-30s %8s$  %s", p.ID, p.Name, FormatPrice(p.Price), Excerpt(p.Description, 60))
}

// Draft is the working copy behind the product editor. It starts either as
// EmptyDraft (create) or as DraftFrom(existing) (edit).
type Draft struct {
	ID          string
	Name        string
	Description string
	Price       float64
	// Image is a newly picked file. nil means "keep what the record has".
	Image *ImageFile
	// ImageURL is the server-assigned URL of the record being edited.
	ImageURL string
}

func EmptyDraft() Draft {
	return Draft{}
}

func DraftFrom(p Product) Draft {
	return Draft{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
	}
}

// IsEmpty reports whether d equals the empty template.
func (d Draft) IsEmpty() bool {
	return d.ID == "" && d.Name == "" && d.Description == "" && d.Price == 0 && d.Image == nil && d.ImageURL == ""
}

// FormatPrice renders a price without trailing zeros ("12", "12.5").
func FormatPrice(p float64) string {
	s := fmt.Sprintf("%.2f", p)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// Excerpt cuts s to at most n runes.
func Excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
