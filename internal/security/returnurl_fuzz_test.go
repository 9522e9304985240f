package security

import (
	"net/url"
	"testing"
)

// FuzzSanitizeReturnURL holds the policy's one invariant under arbitrary
// input: anything that comes back without error is an absolute HTTPS URL on
// an allowlisted host, with only allowlisted query parameters.
func FuzzSanitizeReturnURL(f *testing.F) {
	p, err := NewReturnPolicy(
		[]string{"portal.example.com", "*.apps.example.com"},
		[]string{"utm_campaign", "utm_source"},
	)
	if err != nil {
		f.Fatal(err)
	}

	f.Add("https://portal.example.com/dashboard")
	f.Add("https://wiki.apps.example.com/?utm_source=x&evil=y")
	f.Add("http://portal.example.com/")
	f.Add("//evil.com")
	f.Add("javascript:alert(1)")
	f.Add("https://portal.example.com@evil.com/")
	f.Add("https://portal.example.com:8443/x")
	f.Add("\x00\x01\x02")

	f.Fuzz(func(t *testing.T, raw string) {
		out, err := p.SanitizeReturnURL(raw)
		if err != nil {
			return
		}

		u, perr := url.Parse(out)
		if perr != nil {
			t.Fatalf("sanitized output does not parse: %q: %v", out, perr)
		}
		if u.Scheme != "https" {
			t.Fatalf("sanitized output is not https: %q", out)
		}
		if !p.HostAllowed(u.Hostname()) {
			t.Fatalf("sanitized output host not allowlisted: %q", out)
		}
		if u.Fragment != "" {
			t.Fatalf("sanitized output kept a fragment: %q", out)
		}
		for key := range u.Query() {
			if key != "utm_campaign" && key != "utm_source" {
				t.Fatalf("sanitized output kept query param %q: %q", key, out)
			}
		}
	})
}
