package formsession

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-formstate/pkg/schema"
)

func TestMountPath_JoinsBasePath(t *testing.T) {
	cases := []struct {
		base string
		fns  []OptionFn
		want string
	}{
		{base: "/api", want: "/api"},
		{base: "api/", want: "/api"},
		{base: "", want: "/"},
		{base: "/admin", fns: []OptionFn{WithRoutePath("forms-api/")}, want: "/admin/forms-api"},
		{base: "/", fns: []OptionFn{WithRoutePath("v1")}, want: "/v1"},
	}
	for _, tc := range cases {
		if got := MountPath(tc.base, tc.fns...); got != tc.want {
			t.Fatalf("MountPath(%q) = %q, want %q", tc.base, got, tc.want)
		}
	}
}

func TestComponentHandler_ServesAtRoutePath(t *testing.T) {
	store, err := schema.Embedded()
	if err != nil {
		t.Fatalf("embedded forms: %v", err)
	}
	component, err := New(store, WithRoutePath("/v1"))
	if err != nil {
		t.Fatalf("new component: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/forms/sample", nil)
	rec := httptest.NewRecorder()
	component.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRegisterRoutes_RequiresRouterAndHandler(t *testing.T) {
	if _, err := RegisterRoutes(nil, "/api", &Handler{}); err == nil {
		t.Fatalf("expected error for nil router")
	}
	if _, err := RegisterRoutes(chi.NewRouter(), "/api", nil); err == nil {
		t.Fatalf("expected error for nil handler")
	}
}

func TestNewHandler_RejectsEmptyStore(t *testing.T) {
	if _, err := NewHandler(schema.NewStore()); err == nil {
		t.Fatalf("expected error for empty store")
	}
}
