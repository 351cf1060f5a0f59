// Package face implements the pluggable face matching engine. Three
// backends share one contract and one enrollment-index shape; they
// differ only in the feature representation and the comparison rule.
package face

import (
	"context"

	"github.com/campusware/rollcall/internal/domain"
)

// Matcher is the closed capability set of a face backend. Implementations
// are safe for concurrent use: verifications never observe a partially
// rebuilt index.
type Matcher interface {
	// EnsureIndexed lazily builds the enrollment index on first use and
	// reports whether it is usable (non-empty). Idempotent.
	EnsureIndexed(ctx context.Context) bool

	// Reload discards the current index and forces a full rebuild.
	// Called after the reference-image bucket changes.
	Reload(ctx context.Context) bool

	// EnrolledIdentities returns a sorted snapshot of indexed identity ids.
	EnrolledIdentities(ctx context.Context) []string

	// Verify compares a probe image against the claimed identity's
	// references. It always returns a well-formed result; internal
	// failures surface as structured rejections, never as panics.
	Verify(ctx context.Context, identityID string, probe []byte) domain.MatchResult

	// Status reports the observability snapshot.
	Status(ctx context.Context) domain.EngineStatus
}
