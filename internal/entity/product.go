package entity

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Badge is the merchandising label shown on a product card.
type Badge string

const (
	BadgeNew       Badge = "NEW"
	BadgePopular   Badge = "POPULAR"
	BadgeOnlyXLeft Badge = "ONLY X LEFT"
)

// Valid reports whether b is empty or one of the known badges.
func (b Badge) Valid() bool {
	switch b {
	case "", BadgeNew, BadgePopular, BadgeOnlyXLeft:
		return true
	}
	return false
}

// Product represents a product in the store. Products are seeded once and
// treated as read-only by the cart and order code.
type Product struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Brand       string              `json:"brand"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	SalePrice   decimal.NullDecimal `json:"sale_price"`
	ImageURL    string              `json:"image_url"`
	Images      []string            `json:"images,omitempty"`
	Category    string              `json:"category"`
	Type        string              `json:"type"`
	Sport       string              `json:"sport,omitempty"`
	Rating      float64             `json:"rating"`
	ReviewCount int                 `json:"review_count"`
	Badge       Badge               `json:"badge,omitempty"`
	Stock       *int                `json:"stock,omitempty"`
	Sizes       []string            `json:"sizes,omitempty"`
	Colors      []string            `json:"colors,omitempty"`
	Featured    bool                `json:"featured"`
	BestSeller  bool                `json:"best_seller"`
	CreatedAt   time.Time           `json:"created_at"`
}

// OnSale reports whether the product carries a sale price.
func (p Product) OnSale() bool {
	return p.SalePrice.Valid
}

// EffectivePrice is the unit price a buyer pays: the sale price when present,
// the base price otherwise.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.Valid {
		return p.SalePrice.Decimal
	}
	return p.Price
}

// Matches reports whether the lower-cased query is a substring of any of the
// searchable text fields.
func (p Product) Matches(query string) bool {
	q := strings.ToLower(query)
	for _, field := range []string{p.Name, p.Brand, p.Description, p.Category, p.Type, p.Sport} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// acceptsVariant checks a size/color selection against the lists the product
// declares. An empty selection, or a product without a list, always passes.
func (p Product) acceptsVariant(size, color string) error {
	fields := map[string]string{}
	if size != "" && len(p.Sizes) > 0 && !slices.Contains(p.Sizes, size) {
		fields["size"] = "not offered for this product"
	}
	if color != "" && len(p.Colors) > 0 && !slices.Contains(p.Colors, color) {
		fields["color"] = "not offered for this product"
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "invalid variant selection", Fields: fields}
	}
	return nil
}
