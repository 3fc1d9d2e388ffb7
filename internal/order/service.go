package order

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"litverse-be/internal/auth"
	"litverse-be/internal/book"
	"litverse-be/internal/cart"
	"litverse-be/internal/db"
	"litverse-be/internal/logger"
	"litverse-be/internal/notify"
	"litverse-be/internal/user"
	"litverse-be/internal/validation"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UserDirectory resolves who to notify about an order.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	ListByRole(ctx context.Context, role string) ([]user.User, error)
}

// BookCache drops cached books whose stock changed.
type BookCache interface {
	InvalidateCache(ctx context.Context, ids ...int64)
}

type Service interface {
	// PlaceOrder turns the user's cart into a pending order, decrementing
	// stock atomically. The ordered lines leave the cart after commit.
	PlaceOrder(ctx context.Context, userID int64) (*Order, error)
	// PlaceDirectOrder orders an explicit list of books at their current
	// price without touching the cart.
	PlaceDirectOrder(ctx context.Context, userID int64, in DirectOrderInput) (*Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	ListByUser(ctx context.Context, userID int64) ([]DetailedOrder, error)
	Get(ctx context.Context, id int64) (*Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

type Deps struct {
	DB          *sqlx.DB
	Orders      Repository
	Books       book.Repository
	Carts       cart.Repository
	Users       UserDirectory
	BookCache   BookCache
	Notifier    notify.Notifier
	Validator   *validation.Validator
	Transitions Transitions
}

type service struct {
	db          *sqlx.DB
	repo        Repository
	books       book.Repository
	carts       cart.Repository
	users       UserDirectory
	bookCache   BookCache
	notifier    notify.Notifier
	validate    *validation.Validator
	transitions Transitions
}

func NewService(d Deps) Service {
	return &service{
		db:          d.DB,
		repo:        d.Orders,
		books:       d.Books,
		carts:       d.Carts,
		users:       d.Users,
		bookCache:   d.BookCache,
		notifier:    d.Notifier,
		validate:    d.Validator,
		transitions: d.Transitions,
	}
}

func (s *service) PlaceOrder(ctx context.Context, userID int64) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
	)

	// 1. Resolve cart
	c, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		log.Error("failed to load cart", zap.Error(err))
		return nil, err
	}
	if c == nil {
		return nil, cart.ErrCartNotFound
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	lines := make([]Line, len(c.Items))
	for i, item := range c.Items {
		lines[i] = Line{BookID: item.BookID, Quantity: item.Quantity}
	}

	// 2-8. Stock check, decrement and insert in one transaction
	o, err := s.place(ctx, userID, lines, func(map[int64]*book.Book) decimal.Decimal {
		return c.TotalPrice
	})
	if err != nil {
		log.Warn("order placement rolled back", zap.Error(err))
		return nil, err
	}

	log.Info("order placed", zap.Int64("order_id", o.ID))

	// 9. Best-effort follow-ups; the order is committed, so a client
	// disconnect must not cut them short
	after := context.WithoutCancel(ctx)
	s.notifyPlaced(after, o)
	if err := cart.ReleaseOrdered(after, s.carts, userID, c.Items); err != nil {
		log.Warn("failed to release ordered lines from cart", zap.Error(err))
	}
	s.invalidateBooks(after, o)

	return o, nil
}

func (s *service) PlaceDirectOrder(ctx context.Context, userID int64, in DirectOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceDirectOrder"),
	)

	if err := s.validate.ValidateFull(in); err != nil {
		return nil, err
	}

	lines := append([]Line(nil), in.Books...)
	o, err := s.place(ctx, userID, lines, func(locked map[int64]*book.Book) decimal.Decimal {
		total := decimal.Zero
		for _, l := range lines {
			total = total.Add(locked[l.BookID].Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		return total
	})
	if err != nil {
		log.Warn("direct order rolled back", zap.Error(err))
		return nil, err
	}

	log.Info("direct order placed", zap.Int64("order_id", o.ID))

	after := context.WithoutCancel(ctx)
	s.notifyPlaced(after, o)
	s.invalidateBooks(after, o)

	return o, nil
}

// place runs the transactional part shared by both placement flows. Any error
// rolls the transaction back and is returned unchanged.
func (s *service) place(
	ctx context.Context,
	userID int64,
	lines []Line,
	total func(locked map[int64]*book.Book) decimal.Decimal,
) (*Order, error) {
	var placed *Order

	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		books := s.books.WithTx(tx)
		orders := s.repo.WithTx(tx)

		// lock rows in id order so concurrent orders cannot deadlock
		byID := append([]Line(nil), lines...)
		sort.Slice(byID, func(i, j int) bool { return byID[i].BookID < byID[j].BookID })

		// 3. Fetch and check every line
		locked := make(map[int64]*book.Book, len(byID))
		for _, l := range byID {
			b, err := books.GetForUpdate(ctx, l.BookID)
			if err != nil {
				return err
			}
			if b.Stock < l.Quantity {
				return fmt.Errorf("%w: %q has %d in stock, %d requested",
					book.ErrInsufficientStock, b.Title, b.Stock, l.Quantity)
			}
			locked[l.BookID] = b
		}

		// 4. Decrement stock
		for _, l := range byID {
			if err := books.DecrementStock(ctx, l.BookID, l.Quantity); err != nil {
				return err
			}
		}

		// 5. Build snapshot
		o := &Order{
			UserID:     userID,
			Books:      lines,
			TotalPrice: total(locked),
			Status:     StatusPending,
		}

		// 6. Validate snapshot
		if err := s.validate.ValidateFull(o); err != nil {
			return err
		}

		// 7. Persist
		if err := orders.Create(ctx, o); err != nil {
			return err
		}

		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

func (s *service) notifyPlaced(ctx context.Context, o *Order) {
	log := logger.FromCtx(ctx).With(zap.Int64("order_id", o.ID))

	u, err := s.users.GetByID(ctx, o.UserID)
	if err != nil {
		log.Warn("cannot load customer for order e-mail", zap.Error(err))
		return
	}

	msg := notify.OrderConfirmation(u.Name, o.ID, o.TotalPrice)
	if err := s.notifier.Send(ctx, u.Email, msg.Subject, msg.Body); err != nil {
		log.Warn("failed to send order confirmation", zap.Error(err))
	}

	admins, err := s.users.ListByRole(ctx, auth.RoleAdmin)
	if err != nil {
		log.Warn("cannot load admins for new order notice", zap.Error(err))
		return
	}

	notice := notify.AdminNewOrder(u.Name, u.Email, o.ID, o.TotalPrice, o.CreatedAt)
	for _, admin := range admins {
		if err := s.notifier.Send(ctx, admin.Email, notice.Subject, notice.Body); err != nil {
			log.Warn("failed to notify admin", zap.Int64("admin_id", admin.ID), zap.Error(err))
		}
	}
}

func (s *service) invalidateBooks(ctx context.Context, o *Order) {
	if s.bookCache != nil {
		s.bookCache.InvalidateCache(ctx, o.BookIDs()...)
	}
}

func (s *service) ListAll(ctx context.Context) ([]Order, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) ListByUser(ctx context.Context, userID int64) ([]DetailedOrder, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := map[int64]struct{}{}
	var ids []int64
	for _, o := range orders {
		for _, l := range o.Books {
			if _, ok := seen[l.BookID]; !ok {
				seen[l.BookID] = struct{}{}
				ids = append(ids, l.BookID)
			}
		}
	}

	books, err := s.books.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]DetailedOrder, 0, len(orders))
	for _, o := range orders {
		d := DetailedOrder{
			ID:         o.ID,
			UserID:     o.UserID,
			Books:      make([]DetailedLine, 0, len(o.Books)),
			TotalPrice: o.TotalPrice,
			Status:     o.Status,
			CreatedAt:  o.CreatedAt,
			UpdatedAt:  o.UpdatedAt,
		}
		for _, l := range o.Books {
			b, ok := books[l.BookID]
			if !ok {
				continue
			}
			d.Books = append(d.Books, DetailedLine{
				BookID:   l.BookID,
				Quantity: l.Quantity,
				Title:    b.Title,
				Price:    b.Price,
				Image:    b.Image,
			})
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.Int64("order_id", id),
	)

	if err := s.validate.ValidatePartial(StatusInput{Status: &status}); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.transitions.Allows(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, current.Status, status)
	if err != nil {
		if !errors.Is(err, ErrStatusChanged) {
			log.Error("failed to update order status", zap.Error(err))
		}
		return nil, err
	}

	log.Info("order status updated",
		zap.String("from", string(current.Status)),
		zap.String("to", string(status)),
	)

	after := context.WithoutCancel(ctx)
	u, err := s.users.GetByID(after, updated.UserID)
	if err != nil {
		log.Warn("cannot load customer for status e-mail", zap.Error(err))
		return updated, nil
	}
	msg := notify.OrderStatusUpdated(u.Name, updated.ID, string(updated.Status))
	if err := s.notifier.Send(after, u.Email, msg.Subject, msg.Body); err != nil {
		log.Warn("failed to send status e-mail", zap.Error(err))
	}

	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) DeleteAll(ctx context.Context) error {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("all orders deleted")
	return nil
}
