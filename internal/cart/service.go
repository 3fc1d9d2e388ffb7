package cart

import (
	"context"
	"fmt"

	"litverse-be/internal/book"
	"litverse-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BookReader is the slice of the book repository the cart needs.
type BookReader interface {
	GetByID(ctx context.Context, id int64) (*book.Book, error)
}

// Service defines the business logic for carts. Every mutation persists the
// cart and leaves book stock untouched.
type Service interface {
	// Get returns the user's cart, or an empty one without creating a row.
	Get(ctx context.Context, userID int64) (*Cart, error)
	AddItem(ctx context.Context, userID, bookID int64, quantity int) (*Cart, error)
	// SetQuantity replaces a line's quantity; 0 removes the line.
	SetQuantity(ctx context.Context, userID, bookID int64, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, userID, bookID int64) (*Cart, error)
	Clear(ctx context.Context, userID int64) error
}

type Option func(*service)

// WithRetryAttempts bounds how often a conflicting write is retried.
func WithRetryAttempts(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.retry.maxAttempts = n
		}
	}
}

type service struct {
	repo  Repository
	books BookReader
	retry retryConfig
}

func NewService(repo Repository, books BookReader, opts ...Option) Service {
	s := &service{
		repo:  repo,
		books: books,
		retry: retryConfig{
			maxAttempts:  defaultMaxAttempts,
			baseDelay:    defaultBaseDelay,
			jitterFactor: defaultJitterFactor,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Get(ctx context.Context, userID int64) (*Cart, error) {
	c, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return emptyCart(userID), nil
	}
	return c, nil
}

func (s *service) AddItem(ctx context.Context, userID, bookID int64, quantity int) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddItem"),
		zap.Int64("book_id", bookID),
	)

	if bookID <= 0 {
		return nil, ErrInvalidBookID
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	// 1️⃣ Get book
	b, err := s.books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	var saved *Cart
	err = retryOnConflict(ctx, s.retry, func(ctx context.Context) error {
		// 2️⃣ Get existing cart (if any)
		c, err := s.Get(ctx, userID)
		if err != nil {
			return err
		}

		// 3️⃣ Calculate final quantity
		idx := c.Items.indexOf(bookID)
		requested := quantity
		if idx >= 0 {
			requested += c.Items[idx].Quantity
		}

		// 4️⃣ Validate stock
		if b.Stock < requested {
			return insufficientStock(b, requested)
		}

		// 5️⃣ Increment existing line or append a new one
		if idx >= 0 {
			c.Items[idx].Quantity = requested
		} else {
			c.Items = append(c.Items, Item{BookID: bookID, Quantity: quantity, Price: b.Price})
		}
		c.TotalPrice = c.Items.Total()

		if err := s.repo.Save(ctx, c); err != nil {
			return err
		}
		saved = c
		return nil
	})
	if err != nil {
		log.Warn("add to cart failed", zap.Error(err))
		return nil, err
	}

	log.Info("item added to cart", zap.Int("quantity", quantity))
	return saved, nil
}

func (s *service) SetQuantity(ctx context.Context, userID, bookID int64, quantity int) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SetQuantity"),
		zap.Int64("book_id", bookID),
	)

	if bookID <= 0 {
		return nil, ErrInvalidBookID
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	var b *book.Book
	if quantity > 0 {
		var err error
		if b, err = s.books.GetByID(ctx, bookID); err != nil {
			return nil, err
		}
		if quantity > b.Stock {
			return nil, insufficientStock(b, quantity)
		}
	}

	var saved *Cart
	err := retryOnConflict(ctx, s.retry, func(ctx context.Context) error {
		c, err := s.repo.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if c == nil {
			return ErrCartNotFound
		}

		idx := c.Items.indexOf(bookID)
		if idx < 0 {
			return ErrCartItemNotFound
		}

		if quantity == 0 {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			c.TotalPrice = c.Items.Total()
		} else {
			line := &c.Items[idx]
			delta := line.Price.Mul(decimal.NewFromInt(int64(quantity - line.Quantity)))
			line.Quantity = quantity
			c.TotalPrice = decimal.Max(c.TotalPrice.Add(delta), decimal.Zero)
		}

		if err := s.repo.Save(ctx, c); err != nil {
			return err
		}
		saved = c
		return nil
	})
	if err != nil {
		log.Warn("set cart quantity failed", zap.Error(err))
		return nil, err
	}

	log.Info("cart quantity updated", zap.Int("quantity", quantity))
	return saved, nil
}

func (s *service) RemoveItem(ctx context.Context, userID, bookID int64) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "RemoveItem"),
		zap.Int64("book_id", bookID),
	)

	var saved *Cart
	err := retryOnConflict(ctx, s.retry, func(ctx context.Context) error {
		c, err := s.repo.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if c == nil {
			return ErrCartNotFound
		}

		idx := c.Items.indexOf(bookID)
		if idx < 0 {
			return ErrCartItemNotFound
		}

		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
		c.TotalPrice = c.Items.Total()

		if err := s.repo.Save(ctx, c); err != nil {
			return err
		}
		saved = c
		return nil
	})
	if err != nil {
		log.Warn("remove from cart failed", zap.Error(err))
		return nil, err
	}

	log.Info("item removed from cart")
	return saved, nil
}

func (s *service) Clear(ctx context.Context, userID int64) error {
	return s.repo.Clear(ctx, userID)
}

func insufficientStock(b *book.Book, requested int) error {
	return fmt.Errorf("%w: %q has %d in stock, %d requested",
		book.ErrInsufficientStock, b.Title, b.Stock, requested)
}
