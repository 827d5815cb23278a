package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/api/auth"
	"github.com/Xunop/e-library/internal/http/request"
	"github.com/Xunop/e-library/internal/http/response"
	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/store"
)

type AuthInterceptor struct {
	store  *store.Store
	secret []byte
}

func NewAuthInterceptor(store *store.Store, secret []byte) *AuthInterceptor {
	return &AuthInterceptor{store: store, secret: secret}
}

// AuthenticationInterceptor puts the caller into the request context when a
// valid access token is presented. Requests without a token, or with one that
// no longer verifies, go on as anonymous; authorize decides whether that is
// enough.
func (m *AuthInterceptor) AuthenticationInterceptor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accessToken := getAccessToken(r)
		if accessToken == "" {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := request.FindClientIP(r)
		user, err := m.authenticate(r.Context(), accessToken)
		if err != nil {
			log.Debug("Failed to authenticate user",
				zap.String("client_ip", clientIP),
				zap.String("user_agent", r.UserAgent()),
				zap.Error(err),
			)
			next.ServeHTTP(w, r)
			return
		}

		if err := m.store.SetLastLogin(r.Context(), user.ID); err != nil {
			log.Warn("Failed to record last login", zap.Int32("user_id", user.ID), zap.Error(err))
		}
		next.ServeHTTP(w, r.WithContext(request.WithUser(r.Context(), user)))
	})
}

func (m *AuthInterceptor) authenticate(ctx context.Context, accessToken string) (*model.User, error) {
	userID, err := auth.ParseAccessToken(accessToken, m.secret)
	if err != nil {
		return nil, err
	}
	user, err := m.store.GetUser(ctx, &model.FindUser{ID: &userID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user")
	}
	if user == nil {
		return nil, errors.Errorf("user not found with ID: %d", userID)
	}
	if user.RowStatus == model.Archived {
		return nil, errors.Errorf("user is archived with ID: %d", userID)
	}

	accessTokens, err := m.store.GetUserAccessTokens(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user access tokens")
	}
	if !validateAccessToken(accessToken, accessTokens) {
		return nil, errors.New("invalid access token")
	}
	return user, nil
}

// authorize enforces routeAccess for the matched route.
func authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var name string
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}
		user := request.GetUser(r)

		switch routeAccessFor(name) {
		case accessLogin:
			if !request.IsAuthenticated(r) {
				response.Unauthorized(w, r)
				return
			}
		case accessManageLoans:
			if !auth.HasPermission(user, model.PermissionManageLoans) {
				response.Forbidden(w, r)
				return
			}
		case accessHost:
			if user == nil || user.Role != model.RoleHost {
				response.Forbidden(w, r)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func getAccessToken(r *http.Request) string {
	// Check the HTTP Authorization header first
	if authorization := r.Header.Get("Authorization"); authorization != "" {
		if token, ok := strings.CutPrefix(authorization, "Bearer "); ok {
			return token
		}
	}

	// Check the cookie header
	if cookie, err := r.Cookie(auth.AccessTokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func validateAccessToken(accessToken string, userAccessTokens []*model.AccessToken) bool {
	for _, userAccessToken := range userAccessTokens {
		if accessToken == userAccessToken.AccessToken {
			return true
		}
	}
	return false
}
