package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order. Orders start pending; any
// later change is an administrative action.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ShippingTier selects the flat shipping rate.
type ShippingTier string

const (
	ShippingStandard ShippingTier = "standard"
	ShippingExpress  ShippingTier = "express"
)

var shippingRates = map[ShippingTier]decimal.Decimal{
	ShippingStandard: decimal.RequireFromString("15.00"),
	ShippingExpress:  decimal.RequireFromString("30.00"),
}

// TaxRate is the flat sales tax applied to the subtotal.
var TaxRate = decimal.RequireFromString("0.10")

// Cost returns the shipping charge for the tier. Unknown tiers are rejected
// rather than defaulted.
func (t ShippingTier) Cost() (decimal.Decimal, error) {
	rate, ok := shippingRates[t]
	if !ok {
		return decimal.Zero, &ValidationError{
			Message: "unknown shipping tier",
			Fields:  map[string]string{"shipping_tier": "must be standard or express"},
		}
	}
	return rate, nil
}

// ShippingDetails is the delivery address and contact of an order.
type ShippingDetails struct {
	FirstName  string `json:"first_name" validate:"notblank"`
	LastName   string `json:"last_name" validate:"notblank"`
	Email      string `json:"email" validate:"notblank,email"`
	Phone      string `json:"phone" validate:"notblank"`
	Address    string `json:"address" validate:"notblank"`
	City       string `json:"city" validate:"notblank"`
	State      string `json:"state" validate:"notblank"`
	PostalCode string `json:"postal_code" validate:"notblank"`
	Country    string `json:"country" validate:"notblank"`
}

// PaymentDetails is the card data entered at checkout. It is format-checked
// only and never sent to a processor.
type PaymentDetails struct {
	CardNumber string `json:"card_number" validate:"required,len=16,number"`
	NameOnCard string `json:"name_on_card"`
	ExpiryDate string `json:"expiry_date" validate:"required,mmyy"`
	CVV        string `json:"cvv" validate:"required,min=3,max=4,number"`
}

// PaymentSummary is what an order keeps of the payment details.
type PaymentSummary struct {
	CardLast4  string `json:"card_last4"`
	NameOnCard string `json:"name_on_card,omitempty"`
	ExpiryDate string `json:"expiry_date"`
}

func (p PaymentDetails) summary() *PaymentSummary {
	return &PaymentSummary{
		CardLast4:  p.CardNumber[len(p.CardNumber)-4:],
		NameOnCard: p.NameOnCard,
		ExpiryDate: p.ExpiryDate,
	}
}

// OrderItem is a line item captured by value at order time, so later catalog
// changes never reach it.
type OrderItem struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductBrand string          `json:"product_brand"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Size         string          `json:"size,omitempty"`
	Color        string          `json:"color,omitempty"`
}

// Order represents a placed customer order. Apart from Status, nothing on an
// order changes after creation.
type Order struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id,omitempty"`
	Status       OrderStatus     `json:"status"`
	Shipping     ShippingDetails `json:"shipping_details"`
	Payment      *PaymentSummary `json:"payment_details,omitempty"`
	ShippingTier ShippingTier    `json:"shipping_tier"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	Items        []OrderItem     `json:"items"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Clone returns a copy that shares no mutable state with o.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = append([]OrderItem(nil), o.Items...)
	if o.Payment != nil {
		p := *o.Payment
		c.Payment = &p
	}
	return &c
}

// --- Commands ---

// PlaceOrder is a command to turn a cart into an order.
type PlaceOrder struct {
	UserID   string
	Cart     Cart
	Shipping ShippingDetails
	Tier     ShippingTier
	Payment  *PaymentDetails
}

// AssembleOrder validates cmd and prices it into a pending order. All checks
// run before anything is built, so a failure produces no order at all.
func AssembleOrder(cmd PlaceOrder, id string, now time.Time) (*Order, error) {
	if cmd.Cart.IsEmpty() {
		return nil, NewValidationError("cart is empty")
	}
	shippingCost, err := cmd.Tier.Cost()
	if err != nil {
		return nil, err
	}
	if err := validateStruct("invalid shipping details", cmd.Shipping); err != nil {
		return nil, err
	}
	var payment *PaymentSummary
	if cmd.Payment != nil {
		if err := validateStruct("invalid payment details", *cmd.Payment); err != nil {
			return nil, err
		}
		payment = cmd.Payment.summary()
	}

	items := make([]OrderItem, 0, len(cmd.Cart.Items))
	for _, li := range cmd.Cart.Items {
		items = append(items, OrderItem{
			ProductID:    li.Product.ID,
			ProductName:  li.Product.Name,
			ProductBrand: li.Product.Brand,
			Price:        li.Product.EffectivePrice(),
			Quantity:     li.Quantity,
			Size:         li.Size,
			Color:        li.Color,
		})
	}

	subtotal := cmd.Cart.Subtotal()
	tax := subtotal.Mul(TaxRate).Round(2)

	return &Order{
		ID:           id,
		UserID:       cmd.UserID,
		Status:       OrderStatusPending,
		Shipping:     cmd.Shipping,
		Payment:      payment,
		ShippingTier: cmd.Tier,
		Subtotal:     subtotal,
		ShippingCost: shippingCost,
		Tax:          tax,
		Total:        subtotal.Add(shippingCost).Add(tax),
		Items:        items,
		CreatedAt:    now,
	}, nil
}
