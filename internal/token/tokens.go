package token

import (
	"fmt"
	"strconv"
	"time"
)

// Payload layouts. The field order is part of the wire format and must
// not change: existing QR codes embed session tokens in this shape.
const (
	sessionFieldCount = 3 // sessionID | nonce | issuedAt
	faceFieldCount    = 4 // rollNo | sessionID | issuedAt | confidence
)

// IssueSession binds a token to a session's identity, nonce and nonce
// issuance timestamp. There is no expiry beyond the nonce itself:
// rotating the nonce invalidates every previously issued token.
func (c *Codec) IssueSession(sessionID, nonce string, issuedAt int64) string {
	return c.Issue(sessionID, nonce, strconv.FormatInt(issuedAt, 10))
}

// VerifySession checks a scan token against the session's current nonce
// and issuance timestamp.
func (c *Codec) VerifySession(tok, sessionID, nonce string, issuedAt int64) bool {
	_, ok := c.Verify(tok, Expectation{
		FieldCount: sessionFieldCount,
		Exact: map[int]string{
			0: sessionID,
			1: nonce,
			2: strconv.FormatInt(issuedAt, 10),
		},
	})
	return ok
}

// IssueFace issues a short-lived proof that the given roll number passed
// a face check for the session, carrying the achieved confidence.
func (c *Codec) IssueFace(rollNo, sessionID string, confidence float64) string {
	return c.Issue(
		rollNo,
		sessionID,
		strconv.FormatInt(c.now().Unix(), 10),
		fmt.Sprintf("%.4f", confidence),
	)
}

// VerifyFace checks a face token's signature, its (rollNo, sessionID)
// binding and its age. It returns the confidence recorded at issue time;
// a token aged exactly ttl is still valid, one second older is not.
func (c *Codec) VerifyFace(tok, rollNo, sessionID string, ttl time.Duration) (confidence float64, ok bool) {
	fields, ok := c.Verify(tok, Expectation{
		FieldCount: faceFieldCount,
		Exact: map[int]string{
			0: rollNo,
			1: sessionID,
		},
		TTL:      ttl,
		TTLIndex: 2,
	})
	if !ok {
		return 0, false
	}
	conf, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return 0, false
	}
	return conf, true
}
