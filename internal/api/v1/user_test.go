package v1

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xunop/e-library/internal/api/auth"
	"github.com/Xunop/e-library/internal/model"
)

func itoa[T ~int | ~int32](v T) string {
	return strconv.Itoa(int(v))
}

func TestSignupSigninSignout(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/accounts/signup/", map[string]string{"username": "host", "password": "secret1"}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	host := decode[model.User](t, rec)
	assert.Equal(t, model.RoleHost, host.Role)
	assert.Empty(t, host.PasswordHash)

	rec = ts.do(http.MethodPost, "/accounts/signup/", map[string]string{"username": "reader", "password": "secret2"}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	reader := decode[model.User](t, rec)
	assert.Equal(t, model.RoleMember, reader.Role)

	rec = ts.do(http.MethodPost, "/accounts/signup/", map[string]string{"username": "reader", "password": "secret3"}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorBody](t, rec).Fields, "username")

	rec = ts.do(http.MethodPost, "/accounts/signin/", map[string]string{"username": "reader", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = ts.do(http.MethodPost, "/accounts/signin/", map[string]string{"username": "nobody", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(http.MethodPost, "/accounts/signin/", map[string]string{"username": "reader", "password": "secret2"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tokenCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.AccessTokenCookieName {
			tokenCookie = cookie
		}
	}
	require.NotNil(t, tokenCookie)
	require.NotEmpty(t, tokenCookie.Value)

	rec = ts.do(http.MethodGet, "/mybooks/", nil, "", tokenCookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodPost, "/accounts/signout/", nil, "", tokenCookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// The revoked token no longer identifies anyone.
	rec = ts.do(http.MethodGet, "/mybooks/", nil, "", tokenCookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignupDisabled(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser("host", "password", model.RoleHost)
	_, err := ts.store.UpsertGeneralSetting(context.Background(), &model.SystemSettingGeneral{DisableSignup: true})
	require.NoError(t, err)

	rec := ts.do(http.MethodPost, "/accounts/signup/", map[string]string{"username": "late", "password": "secret1"}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStaleTokenTreatedAsAnonymous(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser("reader", "password", model.RoleLibrarian)

	// Signed correctly but never issued through sign in.
	unissued, err := auth.GenerateAccessToken(user.Username, user.ID, time.Now().Add(time.Hour), ts.secret)
	require.NoError(t, err)
	stale := &http.Cookie{Name: auth.AccessTokenCookieName, Value: "revoked-or-rotated"}

	for _, token := range []string{unissued, "garbage"} {
		rec := ts.do(http.MethodGet, "/books/", nil, token)
		assert.Equal(t, http.StatusOK, rec.Code)
		rec = ts.do(http.MethodGet, "/mybooks/", nil, token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		rec = ts.do(http.MethodGet, "/on-loan/", nil, token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	}

	rec := ts.do(http.MethodGet, "/", nil, "", stale)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodPost, "/accounts/signin/", map[string]string{"username": "reader", "password": "password"}, "", stale)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSetUserRole(t *testing.T) {
	ts := newTestServer(t)
	host := ts.createUser("host", "password", model.RoleHost)
	member := ts.createUser("member", "password", model.RoleMember)
	hostToken := ts.login(host)
	path := "/accounts/users/" + itoa(member.ID) + "/role/"

	rec := ts.do(http.MethodPost, path, map[string]string{"role": "LIBRARIAN"}, ts.login(member))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodPost, path, map[string]string{"role": "HOST"}, hostToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(http.MethodPost, path, map[string]string{"role": "LIBRARIAN"}, hostToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.RoleLibrarian, decode[model.User](t, rec).Role)

	// The promoted member can now see staff listings.
	rec = ts.do(http.MethodGet, "/on-loan/", nil, ts.login(member))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodPost, "/accounts/users/"+itoa(host.ID)+"/role/", map[string]string{"role": "MEMBER"}, hostToken)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodGet, "/accounts/users/", nil, hostToken)
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[[]*model.User](t, rec)
	assert.Len(t, users, 2)
	for _, user := range users {
		assert.Empty(t, user.PasswordHash)
	}
}

func TestOverdueScanEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(ts.createUser("librarian", "password", model.RoleLibrarian))
	reader := ts.createUser("reader", "password", model.RoleMember)
	ts.lend(ts.createBook("Late").ID, reader, model.NewDate(2024, time.January, 1))

	rec := ts.do(http.MethodPost, "/jobs/overdue-scan/", nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(http.MethodPost, "/jobs/overdue-scan/", nil, token)
	require.Equal(t, http.StatusAccepted, rec.Code)
	job := decode[model.Job](t, rec)

	require.Eventually(t, func() bool {
		rec := ts.do(http.MethodGet, "/jobs/"+itoa(job.ID), nil, token)
		return rec.Code == http.StatusOK && decode[model.Job](t, rec).Status == model.JobStatusDone
	}, 5*time.Second, 20*time.Millisecond)

	rec = ts.do(http.MethodGet, "/jobs/"+itoa(job.ID), nil, token)
	assert.Equal(t, "1 overdue", decode[model.Job](t, rec).Result)
}
