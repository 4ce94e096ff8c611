package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The UI and the upstream API both exchange prices and kilograms as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type Role string

const (
	RoleNone   Role = ""
	RoleClient Role = "client"
	RoleOwner  Role = "owner"
)

type Spice struct {
	Recipe1 string `json:"recipe1"`
	Recipe2 string `json:"recipe2"`
}

// Default is the spice a line gets when the caller does not pick one.
func (s Spice) Default() string {
	if s.Recipe1 != "" {
		return s.Recipe1
	}
	return s.Recipe2
}

func (s Spice) Offers(name string) bool {
	return name != "" && (name == s.Recipe1 || name == s.Recipe2)
}

type Product struct {
	ID    int             `json:"id"`
	Meat  string          `json:"meat"`
	Price decimal.Decimal `json:"price"`
	Avail bool            `json:"avail"`
	Spice Spice           `json:"spice"`
}

type CatalogPage struct {
	Items       []Product `json:"assortment"`
	TotalCount  int64     `json:"total_count"`
	TotalPages  int       `json:"total_pages"`
	CurrentPage int       `json:"current_page"`
	PageSize    int       `json:"page_size"`
}

type QuoteLine struct {
	ID            int             `json:"id"`
	Quantity      decimal.Decimal `json:"quantity"`
	SelectedSpice string          `json:"selectedSpice"`
}

type QuotedItem struct {
	ID            int             `json:"id"`
	Meat          string          `json:"meat"`
	Quantity      decimal.Decimal `json:"quantity"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	SelectedSpice string          `json:"selectedSpice,omitempty"`
	Spice         *Spice          `json:"spice,omitempty"`
}

// Quote is the server-computed price; it may include bulk discounts.
type Quote struct {
	Items      []QuotedItem    `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type OrderLine struct {
	ID            int             `json:"id"`
	Quantity      decimal.Decimal `json:"quantity"`
	SelectedSpice string          `json:"selected_spice"`
	Meat          string          `json:"meat"`
}

type OrderRequest struct {
	Items       []OrderLine `json:"items"`
	PhoneNumber string      `json:"phone_number"`
}

type OrderedItem struct {
	ProductID     int             `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	SelectedSpice string          `json:"selected_spice"`
	Meat          string          `json:"meat"`
}

type OrderConfirmation struct {
	OrderID     int             `json:"order_id"`
	CreatedAt   time.Time       `json:"created_at"`
	Items       []OrderedItem   `json:"items"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	PhoneNumber string          `json:"phone_number"`
	Name        string          `json:"name,omitempty"`
}

type Receipt struct {
	SessionID string `json:"-"`
	OrderConfirmation
	RecordedAt time.Time `json:"recorded_at"`
}

type OrderPlacedMessage struct {
	Type          string          `json:"type"`
	OrderID       int             `json:"order_id"`
	SessionID     string          `json:"session_id"`
	PhoneNumber   string          `json:"phone_number"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	LineCount     int             `json:"line_count"`
	Timestamp     time.Time       `json:"timestamp"`
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name"`
}
