package v1

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Xunop/e-library/internal/api/auth"
	"github.com/Xunop/e-library/internal/http/request"
	"github.com/Xunop/e-library/internal/http/response"
	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/validator"
)

// signUp creates a member account. The very first account becomes the host.
func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	generalSetting, err := h.store.GetGeneralSetting(r.Context())
	if err != nil {
		log.Error("Failed to get general system setting", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	hostRole := model.RoleHost
	existedHostUser, err := h.store.GetUser(r.Context(), &model.FindUser{Role: &hostRole})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}

	// Check if signup is disabled, the host can always be created.
	if existedHostUser != nil && generalSetting.DisableSignup {
		log.Debug("Signup is disabled")
		response.Forbidden(w, r)
		return
	}

	var signup model.UserSignupRequest
	if err := decodeJSON(r, &signup); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validator.ValidateSignupRequest(r.Context(), h.store, &signup); err != nil {
		handleError(w, r, err)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(signup.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to generate password hash", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	newRole := model.RoleMember
	if existedHostUser == nil {
		newRole = model.RoleHost
	}

	newUser, err := h.store.CreateUser(r.Context(), &model.User{
		Username:     signup.Username,
		Nickname:     signup.Nickname,
		Email:        signup.Email,
		PasswordHash: string(passwordHash),
		Role:         newRole,
	})
	if err != nil {
		log.Error("Failed to signup user", zap.Error(err))
		handleError(w, r, err)
		return
	}
	log.Info("User signed up", zap.String("username", newUser.Username), zap.String("role", newUser.Role.String()))
	response.Created(w, r, response.UserResponse(newUser))
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var signin model.UserSigninRequest
	if err := decodeJSON(r, &signin); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validator.ValidateSigninRequest(&signin); err != nil {
		handleError(w, r, err)
		return
	}

	user, err := h.store.GetUser(r.Context(), &model.FindUser{Username: &signin.Username})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	// Unknown users and wrong passwords look the same to the caller.
	if user == nil || user.RowStatus == model.Archived {
		log.Debug("Sign in for unknown user", zap.String("username", signin.Username))
		response.Unauthorized(w, r)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(signin.Password)); err != nil {
		log.Debug("Sign in with wrong password", zap.String("username", signin.Username))
		response.Unauthorized(w, r)
		return
	}

	expireTime := time.Now().Add(h.tokenTTL)
	if signin.NeverExpire {
		// Set the expire time to 100 years.
		expireTime = time.Now().Add(100 * 365 * 24 * time.Hour)
	}
	accessToken, err := auth.GenerateAccessToken(user.Username, user.ID, expireTime, h.secret)
	if err != nil {
		response.ServerError(w, r, errors.Wrap(err, "failed to generate access token"))
		return
	}

	tokens, err := h.store.GetUserAccessTokens(r.Context(), user.ID)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	tokens = append(tokens, &model.AccessToken{
		AccessToken: accessToken,
		Description: "User sign in",
		CreatedTs:   time.Now().Unix(),
	})
	if err := h.store.UpsertUserAccessTokens(r.Context(), user.ID, tokens); err != nil {
		response.ServerError(w, r, errors.Wrap(err, "failed to store access token"))
		return
	}

	w.Header().Add("Set-Cookie", buildAccessTokenCookie(accessToken, expireTime, r.Header.Get("Origin")))
	log.Info("User signed in", zap.String("username", user.Username))
	response.OK(w, r, response.UserResponse(user))
}

// signOut revokes the presented access token and clears the cookie.
func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	user := request.GetUser(r)
	presented := getAccessToken(r)

	tokens, err := h.store.GetUserAccessTokens(r.Context(), user.ID)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	kept := make([]*model.AccessToken, 0, len(tokens))
	for _, token := range tokens {
		if token.AccessToken != presented {
			kept = append(kept, token)
		}
	}
	if err := h.store.UpsertUserAccessTokens(r.Context(), user.ID, kept); err != nil {
		response.ServerError(w, r, err)
		return
	}

	w.Header().Add("Set-Cookie", buildAccessTokenCookie("", time.Time{}, r.Header.Get("Origin")))
	response.NoContent(w, r)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context(), &model.FindUser{})
	if err != nil {
		log.Error("Failed to list users", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, response.UserListResponse(users))
}

// setUserRole lets the host grant or take away the librarian role.
func (h *Handler) setUserRole(w http.ResponseWriter, r *http.Request) {
	var update model.UserRoleRequest
	if err := decodeJSON(r, &update); err != nil {
		handleError(w, r, err)
		return
	}
	if err := validator.ValidateUserRoleRequest(&update); err != nil {
		handleError(w, r, err)
		return
	}

	id := int32(request.RouteIntParam(r, "id"))
	target, err := h.store.GetUser(r.Context(), &model.FindUser{ID: &id})
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	if target == nil {
		response.NotFound(w, r)
		return
	}
	if target.Role == model.RoleHost {
		response.Conflict(w, r, errors.New("the host role cannot be changed"))
		return
	}

	user, err := h.store.UpdateUser(r.Context(), &model.UpdateUser{ID: id, Role: &update.Role})
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("User role changed", zap.Int32("user_id", user.ID), zap.String("role", user.Role.String()))
	response.OK(w, r, response.UserResponse(user))
}

func buildAccessTokenCookie(accessToken string, expireTime time.Time, origin string) string {
	attrs := []string{
		fmt.Sprintf("%s=%s", auth.AccessTokenCookieName, accessToken),
		"Path=/",
		"HttpOnly",
	}
	if expireTime.IsZero() {
		attrs = append(attrs, "Expires=Thu, 01 Jan 1970 00:00:00 GMT")
	} else {
		attrs = append(attrs, "Expires="+expireTime.UTC().Format(http.TimeFormat))
	}

	if strings.HasPrefix(origin, "https://") {
		attrs = append(attrs, "Secure")
		attrs = append(attrs, "SameSite=None")
	} else {
		attrs = append(attrs, "SameSite=Lax")
	}
	return strings.Join(attrs, "; ")
}
