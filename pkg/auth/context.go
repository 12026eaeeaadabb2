package auth

import (
	"context"
	"errors"
)

// UserContext is the caller identity stored on the request context.
type UserContext struct {
	UserID string
	Email  string
	Roles  []string
}

type contextKey struct{}

var errNoUser = errors.New("user not found in context")

func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(contextKey{}).(*UserContext)
	if !ok || user == nil || user.UserID == "" {
		return nil, errNoUser
	}
	return user, nil
}

func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromClaims converts validated claims into a UserContext.
func UserFromClaims(c *Claims) *UserContext {
	return &UserContext{UserID: c.UserID, Email: c.Email, Roles: c.Roles}
}
