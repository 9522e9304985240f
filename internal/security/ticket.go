// Package security implements the signed authentication ticket shared between
// the SSO login service and the web servers that accept it.
//
// # Purpose
//
// A ticket binds a user name, a role list, an issuance timestamp, and a
// client tag (normally the browser's User-Agent value) under an HMAC-SHA256
// signature keyed with a secret shared by every participating server. Any
// server holding the secret can verify a ticket locally - no callback to the
// login service and no server-side session storage.
//
// # Wire Format
//
// A ticket is four comma-separated fields:
//
//	base64url(user) "," base64url(roles) "," decimal-unix-seconds "," hex-signature
//
// Example:
//
//	bG9naW5fbmFtZQ,cm9sZTEscm9sZTIscm9sZTM,1337357387,0803ddb6d4514466...
//
// User, roles, and client tag may be arbitrary bytes. Each is base64url
// encoded (unpadded, strict) before joining, so commas inside raw values can
// never shift a field boundary. The signature covers the first three fields
// plus the encoded client tag, which means a ticket copied to a client with
// a different User-Agent fails verification.
//
// # Security Design
//
// HMAC Signatures: tamper evidence, NOT confidentiality - the user and role
// fields are plain base64 and readable by anyone holding the ticket.
//
// Signature Comparison: both the received and the recomputed hex signatures
// are HMAC'd again under the secret and those digests are compared in
// constant time, so response timing reveals nothing about how much of a
// guessed signature was correct.
//
// # Time-based Security
//
// Expiry is enforced against the verifier's clock at each verification call:
// tickets older than MaxAge are rejected as expired, and tickets timestamped
// further than Skew into the future are rejected outright. The issuing side
// writes the timestamp; nothing inside the ticket extends its own life.
package security

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Verification failures, distinguishable with errors.Is. Every failure is
// terminal for that call; callers treat all four as "not authenticated".
var (
	// ErrTicketFormat means the ticket does not have the four-field shape,
	// or a field fails its charset or base64 decoding rules.
	ErrTicketFormat = errors.New("ticket: malformed")
	// ErrTicketSignature means the signature does not match the recomputed
	// one for the presented client tag.
	ErrTicketSignature = errors.New("ticket: signature mismatch")
	// ErrTicketExpired means the ticket is older than the allowed age.
	ErrTicketExpired = errors.New("ticket: expired")
	// ErrTicketFuture means the ticket is timestamped beyond the allowed
	// clock skew into the future.
	ErrTicketFuture = errors.New("ticket: timestamp in the future")
)

const (
	// DefaultTicketMaxAge bounds how long a ticket is accepted after issue.
	DefaultTicketMaxAge = 24 * time.Hour
	// DefaultTicketSkew is the tolerated clock drift for future timestamps.
	DefaultTicketSkew = 5 * time.Minute
)

// b64 is the unpadded URL-safe alphabet used for every encoded ticket field.
// Strict mode rejects encodings with non-zero trailing bits, so each value
// has exactly one accepted spelling and any one-character edit to a valid
// ticket is guaranteed to be rejected somewhere in the pipeline.
var b64 = base64.RawURLEncoding.Strict()

// Identity is the authenticated principal decoded from a valid ticket.
type Identity struct {
	User  string
	Roles string // opaque role string, delimiter convention owned by the caller
}

// TicketOpts controls the verification time window.
type TicketOpts struct {
	MaxAge time.Duration    // reject tickets older than this (default 24h)
	Skew   time.Duration    // tolerated future drift (default 5m)
	Now    func() time.Time // clock override for tests; nil means time.Now
}

// WithDefaults returns a copy of TicketOpts with sensible defaults applied
func (opts TicketOpts) WithDefaults() TicketOpts {
	if opts.MaxAge == 0 {
		opts.MaxAge = DefaultTicketMaxAge
	}
	if opts.Skew == 0 {
		opts.Skew = DefaultTicketSkew
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

// ticketPrefix renders the first three wire fields: encoded user, encoded
// roles, and the decimal timestamp.
func ticketPrefix(user, roles string, issuedAt int64) string {
	return b64.EncodeToString([]byte(user)) + "," +
		b64.EncodeToString([]byte(roles)) + "," +
		strconv.FormatInt(issuedAt, 10)
}

// canonicalMessage builds the exact byte sequence that gets signed: the
// ticket prefix plus the encoded client tag. The client tag travels in the
// signature only, never in the ticket itself.
func canonicalMessage(user, roles string, issuedAt int64, clientTag string) []byte {
	return []byte(ticketPrefix(user, roles, issuedAt) + "," + b64.EncodeToString([]byte(clientTag)))
}

// BuildTicket signs an identity into a wire-format ticket. A zero issuedAt
// means now. It cannot fail: any byte strings and any timestamp produce a
// well-formed ticket.
func BuildTicket(key []byte, user, roles, clientTag string, issuedAt time.Time) string {
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}
	ts := issuedAt.Unix()
	sig := hmacHexSHA256(key, canonicalMessage(user, roles, ts, clientTag))
	return ticketPrefix(user, roles, ts) + "," + sig
}

// parsedTicket is the transient shape of a ticket between parsing and
// verification. Fields one and two are still base64-encoded.
type parsedTicket struct {
	user     string
	roles    string
	issuedAt int64
	sig      string
}

// parseTicket splits and charset-checks a ticket. Shape only - no key, no
// clock. Surrounding whitespace is trimmed before matching.
func parseTicket(s string) (parsedTicket, error) {
	var zero parsedTicket

	s = strings.TrimSpace(s)
	if s == "" {
		return zero, fmt.Errorf("%w: empty ticket", ErrTicketFormat)
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return zero, fmt.Errorf("%w: expected 4 fields, got %d", ErrTicketFormat, len(parts))
	}

	if !isBase64URL(parts[0]) {
		return zero, fmt.Errorf("%w: user field has invalid characters", ErrTicketFormat)
	}
	if !isBase64URL(parts[1]) {
		return zero, fmt.Errorf("%w: roles field has invalid characters", ErrTicketFormat)
	}
	if parts[2] == "" || !isDecimal(parts[2]) {
		return zero, fmt.Errorf("%w: timestamp is not decimal", ErrTicketFormat)
	}
	if parts[3] == "" || !isLowerHex(parts[3]) {
		return zero, fmt.Errorf("%w: signature is not lowercase hex", ErrTicketFormat)
	}

	issuedAt, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return zero, fmt.Errorf("%w: timestamp out of range", ErrTicketFormat)
	}

	return parsedTicket{
		user:     parts[0],
		roles:    parts[1],
		issuedAt: issuedAt,
		sig:      parts[3],
	}, nil
}

// VerifyTicket checks a wire-format ticket against the key and the client
// tag presented by this request, then enforces the time window. On success
// it returns the identity carried by the ticket.
//
// The pipeline is parse, decode, recompute, compare, window - in that order,
// so a tampered ticket reports its signature failure even when it is also
// expired.
func VerifyTicket(key []byte, ticket, clientTag string, opts TicketOpts) (Identity, error) {
	var zero Identity
	opts = opts.WithDefaults()

	p, err := parseTicket(ticket)
	if err != nil {
		return zero, err
	}

	user, err := b64.DecodeString(p.user)
	if err != nil {
		return zero, fmt.Errorf("%w: user field does not decode", ErrTicketFormat)
	}
	roles, err := b64.DecodeString(p.roles)
	if err != nil {
		return zero, fmt.Errorf("%w: roles field does not decode", ErrTicketFormat)
	}

	// The client tag comes from the caller, never from the ticket. That is
	// what binds a ticket to the client presenting it.
	want := hmacHexSHA256(key, canonicalMessage(string(user), string(roles), p.issuedAt, clientTag))
	if !hmacTagEqual(key, p.sig, want) {
		return zero, ErrTicketSignature
	}

	now := opts.Now().Unix()
	if p.issuedAt < now-int64(opts.MaxAge/time.Second) {
		return zero, ErrTicketExpired
	}
	if p.issuedAt > now+int64(opts.Skew/time.Second) {
		return zero, ErrTicketFuture
	}

	return Identity{User: string(user), Roles: string(roles)}, nil
}

// TicketInfo is the decoded but unverified content of a ticket.
type TicketInfo struct {
	User     string
	Roles    string
	IssuedAt time.Time
	Sig      string
}

// InspectTicket decodes a ticket without checking its signature or time
// window. Debugging aid only - nothing it returns can be trusted.
func InspectTicket(ticket string) (TicketInfo, error) {
	var zero TicketInfo

	p, err := parseTicket(ticket)
	if err != nil {
		return zero, err
	}
	user, err := b64.DecodeString(p.user)
	if err != nil {
		return zero, fmt.Errorf("%w: user field does not decode", ErrTicketFormat)
	}
	roles, err := b64.DecodeString(p.roles)
	if err != nil {
		return zero, fmt.Errorf("%w: roles field does not decode", ErrTicketFormat)
	}

	return TicketInfo{
		User:     string(user),
		Roles:    string(roles),
		IssuedAt: time.Unix(p.issuedAt, 0),
		Sig:      p.sig,
	}, nil
}

// isBase64URL reports whether s contains only unpadded URL-safe base64
// characters. Empty is allowed: an empty field encodes an empty value.
func isBase64URL(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}

// isDecimal reports whether s contains only ASCII digits.
func isDecimal(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isLowerHex reports whether s contains only lowercase hex digits.
func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
