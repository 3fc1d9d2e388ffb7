package cart

import (
	"database/sql/driver"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Item struct {
	BookID   int64           `json:"book_id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Items is stored as a JSONB array on the carts row.
type Items []Item

func (it Items) Value() (driver.Value, error) {
	if it == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(it)
}

func (it *Items) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*it = Items{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cart items: unsupported type %T", src)
	}

	var out Items
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("cart items: %w", err)
	}
	if out == nil {
		out = Items{}
	}
	*it = out
	return nil
}

// Total is Σ quantity × price over every line.
func (it Items) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range it {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func (it Items) indexOf(bookID int64) int {
	for i, item := range it {
		if item.BookID == bookID {
			return i
		}
	}
	return -1
}

type Cart struct {
	ID         int64           `db:"id" json:"id,omitempty"`
	UserID     int64           `db:"user_id" json:"user_id"`
	Items      Items           `db:"items" json:"items"`
	TotalPrice decimal.Decimal `db:"total_price" json:"total_price"`
	Version    int             `db:"version" json:"-"`
	UpdatedAt  *time.Time      `db:"updated_at" json:"updated_at,omitempty"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

func emptyCart(userID int64) *Cart {
	return &Cart{UserID: userID, Items: Items{}, TotalPrice: decimal.Zero}
}

type AddItemInput struct {
	BookID   int64 `json:"book_id" validate:"required,gt=0"`
	Quantity *int  `json:"quantity" validate:"omitempty,gte=1"`
}

type SetQuantityInput struct {
	BookID   int64 `json:"book_id" validate:"required,gt=0"`
	Quantity *int  `json:"quantity" validate:"required,gte=0"`
}
