package auth

import "context"

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Caller is the authenticated user behind a request.
type Caller struct {
	ID    int64
	Email string
	Role  string
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// CanAccess reports whether the caller may act on resources owned by userID.
func (c Caller) CanAccess(userID int64) bool {
	return c.ID == userID || c.IsAdmin()
}

type contextKey string

const callerKey contextKey = "caller"

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey).(Caller)
	return c, ok
}
