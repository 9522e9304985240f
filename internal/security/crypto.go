package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// hmacSignSHA256 computes HMAC-SHA256 of the message using the provided key
func hmacSignSHA256(key []byte, msg []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	return mac.Sum(nil)
}

// hmacHexSHA256 computes HMAC-SHA256 and renders it as 64 lowercase hex
// characters. Every signature that appears on the wire goes through this.
func hmacHexSHA256(key []byte, msg []byte) string {
	return hex.EncodeToString(hmacSignSHA256(key, msg))
}

// constantTimeEqual performs constant-time comparison of two byte slices
// Returns true if slices are equal in both length and content
func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// hmacTagEqual compares two hex-encoded signature strings without leaking
// where they differ. Both sides are run through HMAC-SHA256 under the key
// first, so the constant-time comparison always operates on fixed-length
// digests no matter how long the attacker-supplied string is.
func hmacTagEqual(key []byte, got, want string) bool {
	a := hmacSignSHA256(key, []byte(got))
	b := hmacSignSHA256(key, []byte(want))
	return constantTimeEqual(a, b)
}
