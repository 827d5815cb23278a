package request //import "github.com/Xunop/e-library/internal/http/request"

import (
	"context"
	"net/http"

	"github.com/Xunop/e-library/internal/model"
)

type ContextKey int

const (
	ClientIPContextKey ContextKey = iota
	RequestIDContextKey
	UserContextKey
	SessionIDContextKey
)

func getContextStringValue(r *http.Request, key ContextKey) string {
	if v := r.Context().Value(key); v != nil {
		if value, valid := v.(string); valid {
			return value
		}
	}
	return ""
}

// WithUser stores the authenticated user for the rest of the request.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// GetUser returns the authenticated user, nil for anonymous requests.
func GetUser(r *http.Request) *model.User {
	if user, ok := r.Context().Value(UserContextKey).(*model.User); ok {
		return user
	}
	return nil
}

func IsAuthenticated(r *http.Request) bool {
	return GetUser(r) != nil
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDContextKey, id)
}

func GetRequestID(r *http.Request) string {
	return getContextStringValue(r, RequestIDContextKey)
}

func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionIDContextKey, id)
}

func GetSessionID(r *http.Request) string {
	return getContextStringValue(r, SessionIDContextKey)
}
