package validate

import "testing"

func TestInt_LeadingDigits(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"19990", 19990, true},
		{" 12abc", 12, true},
		{"-3", -3, true},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := Int(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("Int(%q) = %d,%v want %d,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestQty_ClampsToOne(t *testing.T) {
	for _, in := range []string{"", "0", "-5", "x"} {
		if got := Qty(in); got != 1 {
			t.Errorf("Qty(%q) = %d want 1", in, got)
		}
	}
	if got := Qty("3"); got != 3 {
		t.Errorf("Qty(3) = %d", got)
	}
	if got := Qty("500"); got != 500 {
		t.Errorf("Qty(500) = %d, no upper clamp expected", got)
	}
}

func TestDate(t *testing.T) {
	if _, ok := Date("2024-02-30"); ok {
		t.Error("impossible date accepted")
	}
	if _, ok := Date("01-02-2024"); ok {
		t.Error("wrong layout accepted")
	}
	if d, ok := Date(" 2024-02-29 "); !ok || d != "2024-02-29" {
		t.Errorf("got %q,%v", d, ok)
	}
	if d, ok := Date(""); !ok || d != "" {
		t.Error("empty should be an open bound")
	}
}

func TestNext_LocalOnly(t *testing.T) {
	cases := map[string]string{
		"/admin/productos?q=x": "/admin/productos?q=x",
		"https://evil.example": "/admin",
		"//evil.example":       "/admin",
		"":                     "/admin",
	}
	for in, want := range cases {
		if got := Next(in, "/admin"); got != want {
			t.Errorf("Next(%q) = %q want %q", in, got, want)
		}
	}
}

func TestRequired(t *testing.T) {
	if Required("a", " ", "c") {
		t.Error("blank value accepted")
	}
	if !Required("a", "b") {
		t.Error("filled values rejected")
	}
}

func TestCategory(t *testing.T) {
	cases := map[string]bool{
		"vinilos":   true,
		" Combos ":  true,
		"vinilos!!": false,
		"../admin":  false,
		"":          false,
	}
	for in, want := range cases {
		if _, ok := Category(in); ok != want {
			t.Errorf("Category(%q) ok = %v, want %v", in, ok, want)
		}
	}
	if got, _ := Category(" Combos "); got != "combos" {
		t.Errorf("Category normalizes to %q", got)
	}
}
