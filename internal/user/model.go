package user

import (
	"database/sql/driver"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Address is stored as JSONB on the users row.
type Address struct {
	Street     string `json:"street" validate:"required,min=3,max=120"`
	City       string `json:"city" validate:"required,max=80"`
	State      string `json:"state" validate:"required,max=80"`
	Country    string `json:"country" validate:"required,lettersonly,max=80"`
	PostalCode string `json:"postal_code" validate:"required,number,min=4,max=6"`
}

func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Address) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("user address: unsupported type %T", src)
	}
	return json.Unmarshal(raw, a)
}

type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password" json:"-"`
	Role      string    `db:"role" json:"role"`
	Address   *Address  `db:"address" json:"address,omitempty"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type SignupInput struct {
	Name            string   `json:"name" validate:"required,min=3,max=50,personname"`
	Email           string   `json:"email" validate:"required,email,max=254"`
	Password        string   `json:"password" validate:"required,strongpassword"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Address         *Address `json:"address"`
	Phone           string   `json:"phone" validate:"omitempty,phone"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateInput is a partial profile update. Changing the password needs the
// current one plus a matching confirmation.
type UpdateInput struct {
	Name            *string  `json:"name" validate:"required,min=3,max=50,personname"`
	Email           *string  `json:"email" validate:"required,email,max=254"`
	Phone           *string  `json:"phone" validate:"required,phone"`
	Address         *Address `json:"address"`
	Password        *string  `json:"password" validate:"required,strongpassword"`
	PasswordConfirm *string  `json:"password_confirm" validate:"required"`
	OldPassword     *string  `json:"old_password" validate:"required"`
}

func (in UpdateInput) IsEmpty() bool {
	return in.Name == nil && in.Email == nil && in.Phone == nil &&
		in.Address == nil && in.Password == nil
}

// Changes are the columns an update writes; nil means unchanged.
type Changes struct {
	Name         *string
	Email        *string
	Phone        *string
	Address      *Address
	PasswordHash *string
}

type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
