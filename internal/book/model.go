package book

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryFiction    Category = "Fiction"
	CategoryNonFiction Category = "Non-fiction"
	CategoryScience    Category = "Science"
	CategoryHistory    Category = "History"
	CategoryFantasy    Category = "Fantasy"
	CategoryBiography  Category = "Biography"
	CategoryOther      Category = "Other"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryFiction, CategoryNonFiction, CategoryScience, CategoryHistory,
		CategoryFantasy, CategoryBiography, CategoryOther:
		return true
	}
	return false
}

type Book struct {
	ID          int64           `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Author      string          `db:"author" json:"author"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Stock       int             `db:"stock" json:"stock"`
	Category    Category        `db:"category" json:"category"`
	Image       string          `db:"image" json:"image,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

type CreateBookInput struct {
	Title       string           `json:"title" validate:"required,max=255"`
	Author      string           `json:"author" validate:"required,min=3,max=255"`
	Description string           `json:"description" validate:"max=5000"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0"`
	Stock       *int             `json:"stock" validate:"required,gte=0"`
	Category    Category         `json:"category" validate:"required,oneof=Fiction Non-fiction Science History Fantasy Biography Other"`
	Image       string           `json:"image" validate:"omitempty,bookimage"`
}

// UpdateBookInput is a partial update; nil fields are left untouched. The id
// is not part of the payload and cannot change.
type UpdateBookInput struct {
	Title       *string          `json:"title" validate:"required,max=255"`
	Author      *string          `json:"author" validate:"required,min=3,max=255"`
	Description *string          `json:"description" validate:"max=5000"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0"`
	Stock       *int             `json:"stock" validate:"required,gte=0"`
	Category    *Category        `json:"category" validate:"required,oneof=Fiction Non-fiction Science History Fantasy Biography Other"`
	Image       *string          `json:"image" validate:"omitempty,bookimage"`
}

func (in UpdateBookInput) IsEmpty() bool {
	return in.Title == nil && in.Author == nil && in.Description == nil &&
		in.Price == nil && in.Stock == nil && in.Category == nil && in.Image == nil
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type ListFilter struct {
	Category Category
	Search   string
	Sort     string
	Page     int
	Limit    int
}

type ListResult struct {
	Books []Book `json:"books"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}
