package instance

import "testing"

func TestGetIDPrefersExplicitInstance(t *testing.T) {
	t.Setenv("STOREFRONT_INSTANCE_ID", "")
	t.Setenv("DYNO", "")
	if got := GetID(); got != "local" {
		t.Fatalf("expected local default, got %q", got)
	}
	t.Setenv("DYNO", "web.1")
	if got := GetID(); got != "web.1" {
		t.Fatalf("expected dyno id, got %q", got)
	}
	t.Setenv("STOREFRONT_INSTANCE_ID", "shop-a")
	if got := GetID(); got != "shop-a" {
		t.Fatalf("expected explicit id, got %q", got)
	}
}
