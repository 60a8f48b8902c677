package navigation_test

import (
	"testing"

	"github.com/goliatone/go-productform/pkg/navigation"
)

func TestRoutes_TargetByAction(t *testing.T) {
	routes := navigation.DefaultRoutes()

	cases := []struct {
		name   string
		action string
		want   string
	}{
		{name: "save only", action: navigation.ActionSave, want: "/"},
		{name: "save and print", action: navigation.ActionSaveAndPrint, want: "/product/42/print"},
		{name: "unset", action: "", want: "/product/42/print"},
		{name: "unknown", action: "archive", want: "/product/42/print"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := routes.Target(tc.action, 42)
			if err != nil {
				t.Fatalf("target: %v", err)
			}
			if got != tc.want {
				t.Fatalf("target = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewRoutes_CustomTemplates(t *testing.T) {
	routes, err := navigation.NewRoutes("/products", "/products/{{ id }}")
	if err != nil {
		t.Fatalf("new routes: %v", err)
	}
	got, err := routes.Target(navigation.ActionSaveAndPrint, 7)
	if err != nil {
		t.Fatalf("target: %v", err)
	}
	if got != "/products/7" {
		t.Fatalf("target = %q", got)
	}
	if routes.Listing() != "/products" {
		t.Fatalf("listing = %q", routes.Listing())
	}
}

func TestNewRoutes_RejectsBrokenTemplate(t *testing.T) {
	if _, err := navigation.NewRoutes("/", "/product/{{ id "); err == nil {
		t.Fatalf("expected template error")
	}
}
