// Package metrics exposes the service's prometheus counters. Everything
// funnels through one Metrics value injected where needed; the registry
// is owned by main and served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Verifications counts face-verify attempts by backend and outcome
	// reason.
	Verifications *prometheus.CounterVec
	// Submissions counts attendance submissions by final status.
	Submissions *prometheus.CounterVec
	// Rejections counts pipeline rejections before a record is written,
	// by failing gate.
	Rejections *prometheus.CounterVec
	// SoftAccepts counts verifications passed only because the
	// soft-accept policy was on.
	SoftAccepts prometheus.Counter
	// IndexReloads counts enrollment index rebuilds.
	IndexReloads prometheus.Counter
	// SwallowedErrors counts best-effort failures (audit snapshot save,
	// post-enroll reload) that were logged instead of surfaced.
	SwallowedErrors *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rollcall",
			Name:      "face_verifications_total",
			Help:      "Face verification attempts by backend and reason.",
		}, []string{"backend", "reason"}),
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rollcall",
			Name:      "attendance_submissions_total",
			Help:      "Attendance submissions recorded, by final status.",
		}, []string{"status"}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rollcall",
			Name:      "attendance_rejections_total",
			Help:      "Submissions rejected before a record was written, by gate.",
		}, []string{"gate"}),
		SoftAccepts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rollcall",
			Name:      "face_soft_accepts_total",
			Help:      "Verifications accepted only by the soft-accept policy.",
		}),
		IndexReloads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rollcall",
			Name:      "enrollment_index_reloads_total",
			Help:      "Enrollment index rebuilds.",
		}),
		SwallowedErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rollcall",
			Name:      "swallowed_errors_total",
			Help:      "Best-effort operations that failed and were only logged.",
		}, []string{"op"}),
	}
}
