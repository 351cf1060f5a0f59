package domain

// MatchReason is the closed set of face verification outcomes. Backends
// never invent new values; callers branch on these codes only.
type MatchReason string

const (
	ReasonOK              MatchReason = "ok"
	ReasonIndexEmpty      MatchReason = "index_empty"
	ReasonUnknownIdentity MatchReason = "unknown_identity"
	ReasonInvalidImage    MatchReason = "invalid_image"
	ReasonNoFaceDetected  MatchReason = "no_face_detected"
	ReasonLowSimilarity   MatchReason = "low_similarity"
	// ReasonMismatch is the distance-style equivalent of low similarity,
	// reported by the classifier backend when the predicted label or the
	// confidence check fails.
	ReasonMismatch      MatchReason = "mismatch_or_low_confidence"
	ReasonModelNotReady MatchReason = "model_not_ready"
)

// SoftAcceptable reports whether the reason is one of the two
// close-but-rejected outcomes that the soft-accept toggle may upgrade.
func (r MatchReason) SoftAcceptable() bool {
	return r == ReasonLowSimilarity || r == ReasonMismatch
}

// MatchResult is what a face backend returns for a verification probe.
// Score semantics are backend-owned (lower-is-better distance for the
// histogram and encoding backends, higher-is-better similarity for the
// embedding backend); callers should branch on Accepted only.
type MatchResult struct {
	Accepted bool        `json:"accepted"`
	Score    float64     `json:"score"`
	Reason   MatchReason `json:"reason"`
}

// EngineStatus is the observability snapshot of a face backend.
type EngineStatus struct {
	Backend    string             `json:"backend"`
	Ready      bool               `json:"ready"`
	IndexCount int                `json:"index_count"`
	Params     map[string]float64 `json:"params"`
}
