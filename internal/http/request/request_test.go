package request

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/Xunop/e-library/internal/model"
)

func TestFindClientIPWithXForwardedFor(t *testing.T) {
	scenarios := map[string]string{
		"203.0.113.195, 70.41.3.18, 150.172.238.178": "203.0.113.195",
		"203.0.113.195":                          "203.0.113.195",
		"2001:db8:85a3:8d3:1319:8a2e:370:7348":   "2001:db8:85a3:8d3:1319:8a2e:370:7348",
		"fe80::1%eth0":                           "fe80::1",
	}

	for header, expected := range scenarios {
		r := &http.Request{RemoteAddr: "192.168.0.1:4242", Header: http.Header{"X-Forwarded-For": []string{header}}}
		if ip := FindClientIP(r); ip != expected {
			t.Errorf(`Unexpected result, got: %q instead of %q`, ip, expected)
		}
	}
}

func TestClientIPWithNoHeader(t *testing.T) {
	r := &http.Request{RemoteAddr: "192.168.0.1:4242", Header: http.Header{}}
	if ip := FindClientIP(r); ip != "192.168.0.1" {
		t.Fatalf(`Unexpected result, got: %q`, ip)
	}

	r = &http.Request{RemoteAddr: "", Header: http.Header{}}
	if ip := FindClientIP(r); ip != "127.0.0.1" {
		t.Fatalf(`Unexpected result, got: %q`, ip)
	}
}

func TestQueryIntParam(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/books/?page=3&page_size=-1&bad=x", nil)
	if v := QueryIntParam(r, "page", 1); v != 3 {
		t.Errorf("page = %d", v)
	}
	if v := QueryIntParam(r, "page_size", 10); v != 10 {
		t.Errorf("negative values fall back, got %d", v)
	}
	if v := QueryIntParam(r, "bad", 7); v != 7 {
		t.Errorf("invalid values fall back, got %d", v)
	}
	if v := QueryIntParam(r, "missing", 1); v != 1 {
		t.Errorf("missing values fall back, got %d", v)
	}
}

func TestRouteParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/book/42", nil)
	r = mux.SetURLVars(r, map[string]string{"id": "42", "uuid": "abc"})
	if v := RouteIntParam(r, "id"); v != 42 {
		t.Errorf("id = %d", v)
	}
	if v := RouteStringParam(r, "uuid"); v != "abc" {
		t.Errorf("uuid = %q", v)
	}
}

func TestUserContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if IsAuthenticated(r) {
		t.Fatal("anonymous request reported as authenticated")
	}
	user := &model.User{ID: 7, Username: "reader"}
	r = r.WithContext(WithUser(r.Context(), user))
	if got := GetUser(r); got != user {
		t.Fatalf("unexpected user %v", got)
	}
}
