package normalize

import "testing"

func TestText(t *testing.T) {
	cases := map[string]string{
		"  Acme Corp  ": "acme corp",
		"ACME":          "acme",
		"":              "",
		"already low":   "already low",
	}
	for in, want := range cases {
		if got := Text(in); got != want {
			t.Errorf("Text(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestText_Idempotent(t *testing.T) {
	in := "  Mixed CASE Value  "
	once := Text(in)
	twice := Text(once)
	if once != twice {
		t.Errorf("Text is not idempotent: %q != %q", once, twice)
	}
}

func TestPostalCode(t *testing.T) {
	cases := map[string]string{
		"75001.0": "75001",
		" 75001 ": "75001",
		"75001":   "75001",
		"SW1A.0":  "sw1a",
	}
	for in, want := range cases {
		if got := PostalCode(in); got != want {
			t.Errorf("PostalCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPostalCode_Idempotent(t *testing.T) {
	in := "75001.0"
	once := PostalCode(in)
	twice := PostalCode(once)
	if once != twice {
		t.Errorf("PostalCode is not idempotent: %q != %q", once, twice)
	}
}

func TestDomain(t *testing.T) {
	cases := map[string]string{
		"https://www.acme.com/about":  "acme.com",
		"http://acme.com":             "acme.com",
		"www.acme.com":                "acme.com",
		"acme.com":                    "acme.com",
		"sub.domain.acme.com":         "acme.com",
		"":                            "",
		"https://acme.co.uk/careers":  "co.uk",
	}
	for in, want := range cases {
		if got := Domain(in); got != want {
			t.Errorf("Domain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDomain_Idempotent(t *testing.T) {
	in := "https://www.acme.com/about"
	once := Domain(in)
	twice := Domain(once)
	if once != twice {
		t.Errorf("Domain is not idempotent: %q != %q", once, twice)
	}
}
