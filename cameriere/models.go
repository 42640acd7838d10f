package cameriere

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// IsTerminal reports whether the kitchen is done with the order.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Category struct {
	ID    int64      `json:"id"`
	Name  string     `json:"name"`
	Items []MenuItem `json:"items,omitempty"`
}

type MenuItem struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	Image              *string         `json:"image"`
	IsVeg              bool            `json:"is_veg"`
	IsNonVeg           bool            `json:"is_non_veg"`
	IsJain             bool            `json:"is_jain"`
	IsChefsSpecial     bool            `json:"is_chefs_special"`
	CookingTimeMinutes int             `json:"cooking_time_minutes"`
	Category           *Category       `json:"category,omitempty"`
}

type OrderLine struct {
	ID        int64               `json:"id"`
	MenuItem  MenuItem            `json:"menu_item"`
	Quantity  int                 `json:"quantity"`
	ItemPrice decimal.NullDecimal `json:"item_price"`
}

// UnitPrice is the price charged when the order was placed, falling back to
// the current menu price for lines the backend did not price.
func (l OrderLine) UnitPrice() decimal.Decimal {
	if l.ItemPrice.Valid {
		return l.ItemPrice.Decimal
	}
	return l.MenuItem.Price
}

func (l OrderLine) Total() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID                int64       `json:"id"`
	Restaurant        int64       `json:"restaurant"`
	TableNumber       int         `json:"table_number"`
	Status            OrderStatus `json:"status"`
	EstimatedWaitTime int         `json:"estimated_wait_time"`
	CreatedAt         time.Time   `json:"created_at"`
	Items             []OrderLine `json:"items"`
}

func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Items {
		total = total.Add(line.Total())
	}
	return total
}

type OrderItemRequest struct {
	MenuItem int64 `json:"menu_item" validate:"required,min=1"`
	Quantity int   `json:"quantity" validate:"required,min=1"`
}

type PlaceOrderRequest struct {
	TableNumber int                `json:"table_number" validate:"required,min=1"`
	Items       []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type Table struct {
	ID     int64  `json:"id"`
	Number int    `json:"number"`
	QRCode string `json:"qr_code"`
}

// QRCodeURL resolves the backend's media path against the API base URL.
func (t Table) QRCodeURL(baseURL string) string {
	if t.QRCode == "" {
		return ""
	}
	if strings.HasPrefix(t.QRCode, "http") {
		return t.QRCode
	}
	return strings.TrimRight(baseURL, "/") + t.QRCode
}

type Settings struct {
	PrimaryColor    string `json:"primary_color"`
	SecondaryColor  string `json:"secondary_color"`
	BackgroundColor string `json:"background_color"`
	FontChoice      string `json:"font_choice"`
}

// SettingsUpdate is a partial update; empty fields are left as they are.
type SettingsUpdate struct {
	PrimaryColor    string `json:"primary_color,omitempty" validate:"omitempty,hexcolor,len=7"`
	SecondaryColor  string `json:"secondary_color,omitempty" validate:"omitempty,hexcolor,len=7"`
	BackgroundColor string `json:"background_color,omitempty" validate:"omitempty,hexcolor,len=7"`
	FontChoice      string `json:"font_choice,omitempty" validate:"omitempty,max=50"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type statusUpdateRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=pending preparing completed cancelled"`
}

type addTableRequest struct {
	Number int `json:"number" validate:"required,min=1"`
}

type messageResponse struct {
	Message string `json:"message"`
}
