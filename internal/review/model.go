package review

import "time"

type Review struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	BookID    int64     `db:"book_id" json:"book_id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type CreateInput struct {
	BookID  int64  `json:"book_id" validate:"required,gt=0"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=500"`
}

// UpdateInput only touches rating and comment.
type UpdateInput struct {
	Rating  *int    `json:"rating" validate:"required,min=1,max=5"`
	Comment *string `json:"comment" validate:"max=500"`
}

func (in UpdateInput) IsEmpty() bool {
	return in.Rating == nil && in.Comment == nil
}

type ListFilter struct {
	BookID int64
	UserID int64
}
