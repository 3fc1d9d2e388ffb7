package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Line is one entry of an order's immutable book snapshot.
type Line struct {
	BookID   int64 `db:"book_id" json:"book_id" validate:"required,gt=0"`
	Quantity int   `db:"quantity" json:"quantity" validate:"required,gte=1"`
}

type Order struct {
	ID         int64           `db:"id" json:"id"`
	UserID     int64           `db:"user_id" json:"user_id" validate:"required,gt=0"`
	Books      []Line          `db:"-" json:"books" validate:"required,min=1,dive"`
	TotalPrice decimal.Decimal `db:"total_price" json:"total_price" validate:"gte=0"`
	Status     Status          `db:"status" json:"status" validate:"required,oneof=pending shipped delivered cancelled"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

func (o *Order) BookIDs() []int64 {
	ids := make([]int64, len(o.Books))
	for i, l := range o.Books {
		ids[i] = l.BookID
	}
	return ids
}

// DetailedLine is a snapshot line joined with the book's current data.
type DetailedLine struct {
	BookID   int64           `json:"book_id"`
	Quantity int             `json:"quantity"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
}

type DetailedOrder struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	Books      []DetailedLine  `json:"books"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type DirectOrderInput struct {
	Books []Line `json:"books" validate:"required,min=1,unique=BookID,dive"`
}

type StatusInput struct {
	Status *Status `json:"status" validate:"required,oneof=pending shipped delivered cancelled"`
}
