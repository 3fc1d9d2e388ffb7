package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"litverse-be/internal/db"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"
)

var userColumns = []interface{}{
	"id", "name", "email", "password", "role", "address", "phone", "created_at", "updated_at",
}

const selectUser = `
	SELECT id, name, email, password, role, address, phone, created_at, updated_at
	FROM users`

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	ListByRole(ctx context.Context, role string) ([]User, error)
	Update(ctx context.Context, id int64, c Changes) (*User, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	err := sqlx.GetContext(ctx, r.db, u, `
		INSERT INTO users (name, email, password, role, address, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, email, password, role, address, phone, created_at, updated_at
	`, u.Name, u.Email, u.Password, u.Role, u.Address, u.Phone)
	if db.IsUniqueViolation(err) {
		return ErrEmailExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.get(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.get(ctx, selectUser+` WHERE email = $1`, email)
}

func (r *repository) get(ctx context.Context, query string, arg interface{}) (*User, error) {
	var u User
	err := sqlx.GetContext(ctx, r.db, &u, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	users := []User{}
	if err := sqlx.SelectContext(ctx, r.db, &users, selectUser+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *repository) ListByRole(ctx context.Context, role string) ([]User, error) {
	users := []User{}
	if err := sqlx.SelectContext(ctx, r.db, &users, selectUser+` WHERE role = $1 ORDER BY id`, role); err != nil {
		return nil, fmt.Errorf("list users with role %s: %w", role, err)
	}
	return users, nil
}

func (r *repository) Update(ctx context.Context, id int64, c Changes) (*User, error) {
	rec := goqu.Record{"updated_at": goqu.L("NOW()")}
	if c.Name != nil {
		rec["name"] = *c.Name
	}
	if c.Email != nil {
		rec["email"] = *c.Email
	}
	if c.Phone != nil {
		rec["phone"] = *c.Phone
	}
	if c.Address != nil {
		rec["address"] = *c.Address
	}
	if c.PasswordHash != nil {
		rec["password"] = *c.PasswordHash
	}

	query, args, err := goqu.Dialect("postgres").
		Update("users").
		Prepared(true).
		Set(rec).
		Where(goqu.C("id").Eq(id)).
		Returning(userColumns...).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build update query: %w", err)
	}

	var u User
	err = sqlx.GetContext(ctx, r.db, &u, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if db.IsUniqueViolation(err) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	return &u, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
