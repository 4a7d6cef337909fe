package identity

import (
	"strings"
	"testing"
)

func TestSlugifyName(t *testing.T) {
	cases := map[string]string{
		"Acme Invoicing Bot!!":        "acme-invoicing-bot",
		"  leading/trailing--dashes ": "leading-trailing-das",
		"":                            "unnamed",
		"!!!":                         "unnamed",
		"ThisNameIsDefinitelyLongerThanTwentyCodePoints": "thisnameisdefinitely",
	}
	for in, want := range cases {
		if got := SlugifyName(in); got != want {
			t.Errorf("SlugifyName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSlugifyName_AlphanumericOnly(t *testing.T) {
	got := SlugifyName("Hello, World! 2024")
	for _, r := range got {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			t.Errorf("slug %q contains disallowed rune %q", got, r)
		}
	}
	if strings.Contains(got, ",") {
		t.Errorf("slug must never contain a comma: %q", got)
	}
}

func TestProjectSlug_Deterministic(t *testing.T) {
	descriptor := map[string]any{"name": "AcmeBot", "main": "Main.xaml"}
	a, err := ProjectSlug("AcmeBot", descriptor)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ProjectSlug("AcmeBot", map[string]any{"main": "Main.xaml", "name": "AcmeBot"})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("slug must be independent of descriptor key order: %q vs %q", a, b)
	}
}

func TestContentHashAndShortHash(t *testing.T) {
	full := ContentHash([]byte("hello"))
	if len(full) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(full))
	}
	short := ShortHash(full)
	if len(short) != 16 {
		t.Fatalf("expected 16 hex chars, got %d", len(short))
	}
	if !strings.HasPrefix(full, short) {
		t.Errorf("short hash must be a prefix of the full hash")
	}
}

func TestActivityContentHash_OrderIndependent(t *testing.T) {
	a := ActivityContentHash("Sequence", map[string]string{"DisplayName": "Main", "x:Name": "__ref"}, nil)
	b := ActivityContentHash("Sequence", map[string]string{"x:Name": "__ref", "DisplayName": "Main"}, nil)
	if a != b {
		t.Errorf("attribute order must not affect hash: %q vs %q", a, b)
	}
	if len(a) != 8 {
		t.Fatalf("expected 8 hex chars, got %d", len(a))
	}
}

func TestActivityCompositeID(t *testing.T) {
	id := ActivityCompositeID("acme-bot-1234567890", "Main", "Sequence[0]/If[1]", "a1b2c3d4")
	want := "acme-bot-1234567890#Main#Sequence[0]/If[1]#a1b2c3d4"
	if id != want {
		t.Errorf("ActivityCompositeID = %q, want %q", id, want)
	}
}
