package payment

import (
	"time"
)

type Type string

const (
	TypeCredit Type = "credit"
	TypeDebit  Type = "debit"
	TypePaypal Type = "paypal"
)

func (t Type) IsCard() bool {
	return t == TypeCredit || t == TypeDebit
}

// Payment is a stored payment method. Only the last four card digits are
// kept and the CVV is never persisted.
type Payment struct {
	ID         int64      `db:"id" json:"id"`
	UserID     int64      `db:"user_id" json:"user_id"`
	Type       Type       `db:"type" json:"type"`
	Provider   string     `db:"provider" json:"provider,omitempty"`
	CardLast4  string     `db:"card_last4" json:"-"`
	CardNumber string     `db:"-" json:"card_number,omitempty"`
	ExpiresAt  *time.Time `db:"expires_at" json:"expiration_date,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// Mask fills the display card number from the stored digits.
func (p *Payment) Mask() {
	if p.CardLast4 == "" {
		p.CardNumber = ""
		return
	}
	p.CardNumber = "**** **** **** " + p.CardLast4
}

type CreateInput struct {
	Type Type `json:"type" validate:"required,oneof=credit debit paypal"`
	CardDetails
}

// CardDetails is required for credit and debit payments.
type CardDetails struct {
	Provider       string    `json:"provider" validate:"required,max=50"`
	CardNumber     string    `json:"card_number" validate:"required,number,len=16"`
	CVV            string    `json:"cvv" validate:"required,number,len=3"`
	ExpirationDate time.Time `json:"expiration_date" validate:"required,futuredate"`
}

type typeInput struct {
	Type Type `json:"type" validate:"required,oneof=credit debit paypal"`
}
