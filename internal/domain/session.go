package domain

// Session is one scheduled attendance-taking event. The nonce and
// NonceIssuedAt pair is generated once at creation and never mutated;
// every scan token for the session is bound to it, so recreating or
// rotating the session invalidates previously issued codes.
type Session struct {
	ID        string  `json:"session_id"`
	Name      string  `json:"name"`
	RoomNo    string  `json:"room_no"`
	Date      string  `json:"date"`       // YYYY-MM-DD
	StartTime string  `json:"start_time"` // HH:MM
	EndTime   string  `json:"end_time"`   // HH:MM
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`

	Nonce         string `json:"nonce"`
	NonceIssuedAt int64  `json:"nonce_issued_at"` // unix seconds
	Active        bool   `json:"active"`
}

// SessionFilter narrows ListSessions results. Zero values mean "no filter".
type SessionFilter struct {
	StartDate string
	EndDate   string
	StartTime string
	EndTime   string
	Subject   string // case-insensitive substring of Name
}

// Matches reports whether the session passes every set filter field.
func (f SessionFilter) Matches(s Session) bool {
	if f.StartDate != "" && s.Date != "" && s.Date < f.StartDate {
		return false
	}
	if f.EndDate != "" && s.Date != "" && s.Date > f.EndDate {
		return false
	}
	if f.StartTime != "" && s.StartTime != "" && s.StartTime < f.StartTime {
		return false
	}
	if f.EndTime != "" && s.StartTime != "" && s.StartTime > f.EndTime {
		return false
	}
	if f.Subject != "" && !containsFold(s.Name, f.Subject) {
		return false
	}
	return true
}
