package order

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

const dialectPostgres = "postgres"

const selectOrder = `
	SELECT id, user_id, total_price, status, created_at, updated_at
	FROM orders`

type Repository interface {
	// Create stores the order with its lines and fills in id and timestamps.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	// UpdateStatus only applies while the stored status still equals from.
	UpdateStatus(ctx context.Context, id int64, from, to Status) (*Order, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	WithTx(tx db.DBTX) Repository
}

type repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx db.DBTX) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	// 1. Insert order
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO orders (user_id, total_price, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, o.UserID, o.TotalPrice, o.Status).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	// 2. Insert lines
	rows := make([]interface{}, len(o.Books))
	for i, l := range o.Books {
		rows[i] = goqu.Record{
			"order_id": o.ID,
			"position": i,
			"book_id":  l.BookID,
			"quantity": l.Quantity,
		}
	}

	query, args, err := goqu.Dialect(dialectPostgres).
		Insert("order_items").
		Prepared(true).
		Rows(rows...).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build order items insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Order, error) {
	var o Order
	err := sqlx.GetContext(ctx, r.db, &o, selectOrder+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}

	orders := []Order{o}
	if err := r.loadLines(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *repository) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, selectOrder+` ORDER BY id`)
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	return r.list(ctx, selectOrder+` WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *repository) list(ctx context.Context, query string, args ...interface{}) ([]Order, error) {
	orders := []Order{}
	if err := sqlx.SelectContext(ctx, r.db, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if err := r.loadLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

type lineRow struct {
	OrderID  int64 `db:"order_id"`
	BookID   int64 `db:"book_id"`
	Quantity int   `db:"quantity"`
}

// loadLines fills Books for every order with a single query.
func (r *repository) loadLines(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Books = []Line{}
	}

	query, args, err := goqu.Dialect(dialectPostgres).
		From("order_items").
		Prepared(true).
		Select("order_id", "book_id", "quantity").
		Where(goqu.C("order_id").In(ids)).
		Order(goqu.I("order_id").Asc(), goqu.I("position").Asc()).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build order items query: %w", err)
	}

	var rows []lineRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return fmt.Errorf("load order items: %w", err)
	}

	for _, row := range rows {
		i, ok := index[row.OrderID]
		if !ok {
			continue
		}
		orders[i].Books = append(orders[i].Books, Line{BookID: row.BookID, Quantity: row.Quantity})
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to Status) (*Order, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return nil, fmt.Errorf("update status of order %d: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, ErrStatusChanged
	}

	return r.GetByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `TRUNCATE TABLE order_items, orders RESTART IDENTITY`); err != nil {
		return fmt.Errorf("delete all orders: %w", err)
	}
	return nil
}
