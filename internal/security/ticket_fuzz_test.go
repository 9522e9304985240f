package security

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// FuzzVerifyTicket asserts the verifier's total behavior: no input may panic
// it, and every failure is one of the four sentinel errors.
func FuzzVerifyTicket(f *testing.F) {
	key := []byte("fuzz-key")
	now := time.Unix(1700000000, 0)

	f.Add(BuildTicket(key, "alice", "admin", "ua", now))
	f.Add("")
	f.Add(",,,")
	f.Add("a,b,c,d")
	f.Add("bG9naW5fbmFtZQ,cm9sZTEscm9sZTIscm9sZTM,1337357387,0803ddb6d45144663a92255ace8bbe0b3811acae7ff675d7b708d2cc0c99a2a2")
	f.Add(strings.Repeat(",", 100))
	f.Add("\x00\xff,\x00,0,00")
	f.Add(" QQ,QQ,99999999999999999999,ff ")

	f.Fuzz(func(t *testing.T, ticket string) {
		id, err := VerifyTicket(key, ticket, "ua", TicketOpts{Now: func() time.Time { return now }})
		if err == nil {
			// Anything that verifies must round-trip through a rebuild.
			rebuilt := BuildTicket(key, id.User, id.Roles, "ua", now)
			if _, err := VerifyTicket(key, rebuilt, "ua", TicketOpts{Now: func() time.Time { return now }}); err != nil {
				t.Fatalf("rebuilt ticket failed verification: %v", err)
			}
			return
		}
		switch {
		case errors.Is(err, ErrTicketFormat),
			errors.Is(err, ErrTicketSignature),
			errors.Is(err, ErrTicketExpired),
			errors.Is(err, ErrTicketFuture):
		default:
			t.Fatalf("unexpected error type: %v", err)
		}
	})
}

// FuzzParseTicket checks the parser in isolation: anything it accepts must
// have survived the per-field charset rules.
func FuzzParseTicket(f *testing.F) {
	f.Add("bG9naW5fbmFtZQ,cm9sZTEscm9sZTIscm9sZTM,1337357387,abc123")
	f.Add("  ,,0,0  ")
	f.Add("A,B,1,f")

	f.Fuzz(func(t *testing.T, s string) {
		p, err := parseTicket(s)
		if err != nil {
			if !errors.Is(err, ErrTicketFormat) {
				t.Fatalf("parseTicket error = %v, want ErrTicketFormat", err)
			}
			return
		}
		if !isBase64URL(p.user) || !isBase64URL(p.roles) || !isLowerHex(p.sig) {
			t.Fatalf("parser accepted out-of-charset fields: %+v", p)
		}
	})
}
