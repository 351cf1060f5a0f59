// Package token implements the signed-token primitive shared by the scan
// link and the face verification proof. The wire format is
// urlsafe_base64(payload || "." || HMAC-SHA256(secret, payload)) with the
// base64 padding stripped, where payload is a pipe-delimited join of the
// fields in a fixed order.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// Codec signs and verifies canonical pipe-delimited payloads with a
// shared secret. It is stateless and safe for concurrent use.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec creates a codec for the given signing secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret), now: time.Now}
}

// WithClock overrides the time source. Test hook.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// Expectation describes what Verify requires of a decoded token.
type Expectation struct {
	// FieldCount is the exact number of payload fields.
	FieldCount int
	// Exact maps a field position to its required value.
	Exact map[int]string
	// TTL bounds the age of the timestamp field at TTLIndex; zero
	// disables the check. A token is valid up to and including
	// issuedAt+TTL.
	TTL      time.Duration
	TTLIndex int
}

// Issue serializes the fields into the canonical payload, signs it and
// returns the opaque token string.
func (c *Codec) Issue(fields ...string) string {
	payload := []byte(strings.Join(fields, "|"))
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(payload)
	raw := append(payload, '.')
	raw = append(raw, mac.Sum(nil)...)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Verify decodes the token, recomputes the signature and checks it in
// constant time, then enforces the expectation. Every failure mode
// (malformed base64, missing separator, wrong field count, signature or
// field mismatch, stale timestamp) collapses to ok=false; the caller
// learns nothing about which check failed.
func (c *Codec) Verify(tok string, want Expectation) (fields []string, ok bool) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(tok, "="))
	if err != nil {
		return nil, false
	}

	// The payload is pipe-delimited text and never contains '.', so the
	// first dot separates payload from signature.
	sep := strings.IndexByte(string(raw), '.')
	if sep < 0 {
		return nil, false
	}
	payload, sig := raw[:sep], raw[sep+1:]

	mac := hmac.New(sha256.New, c.secret)
	mac.Write(payload)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, false
	}

	fields = strings.Split(string(payload), "|")
	if want.FieldCount > 0 && len(fields) != want.FieldCount {
		return nil, false
	}
	for i, v := range want.Exact {
		if i < 0 || i >= len(fields) || fields[i] != v {
			return nil, false
		}
	}
	if want.TTL > 0 {
		if want.TTLIndex < 0 || want.TTLIndex >= len(fields) {
			return nil, false
		}
		issuedAt, err := strconv.ParseInt(fields[want.TTLIndex], 10, 64)
		if err != nil {
			return nil, false
		}
		age := c.now().Unix() - issuedAt
		if age > int64(want.TTL/time.Second) {
			return nil, false
		}
	}
	return fields, true
}
