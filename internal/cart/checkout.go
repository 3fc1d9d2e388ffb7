package cart

import (
	"context"
)

// Without returns the lines left after taking the ordered quantities out.
// Lines whose quantity drops to zero are removed.
func (it Items) Without(ordered Items) Items {
	taken := make(map[int64]int, len(ordered))
	for _, o := range ordered {
		taken[o.BookID] += o.Quantity
	}

	out := Items{}
	for _, item := range it {
		item.Quantity -= taken[item.BookID]
		if item.Quantity > 0 {
			out = append(out, item)
		}
	}
	return out
}

// ReleaseOrdered removes the lines that went into an order from the user's
// cart. It goes through the versioned save, so lines added after the order
// read the cart survive. A missing cart is not an error.
func ReleaseOrdered(ctx context.Context, repo Repository, userID int64, ordered Items) error {
	cfg := retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	return retryOnConflict(ctx, cfg, func(ctx context.Context) error {
		c, err := repo.GetByUserID(ctx, userID)
		if err != nil || c == nil {
			return err
		}

		c.Items = c.Items.Without(ordered)
		c.TotalPrice = c.Items.Total()
		return repo.Save(ctx, c)
	})
}
