package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campusware/rollcall/internal/domain"
	"github.com/campusware/rollcall/internal/session"
)

// ScanHandler resolves scanned QR links for students. It validates the
// signed token before revealing anything about the session.
type ScanHandler struct {
	sessions *session.Service
}

func NewScanHandler(sessions *session.Service) *ScanHandler {
	return &ScanHandler{sessions: sessions}
}

// ScanResponse is the session context the attendance form needs. The
// nonce never leaves the server; the client keeps submitting the same
// signed token it scanned.
type ScanResponse struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	RoomNo    string `json:"room_no"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Scan GET /scan?lid=...&t=... - validate a scanned link
func (h *ScanHandler) Scan(c *fiber.Ctx) error {
	lid := c.Query("lid")
	tok := c.Query("t")
	if lid == "" || tok == "" {
		return domain.ErrInvalidLink
	}

	sess, err := h.sessions.ValidateScan(c.Context(), lid, tok)
	if err != nil {
		return err
	}

	return c.JSON(ScanResponse{
		SessionID: sess.ID,
		Name:      sess.Name,
		RoomNo:    sess.RoomNo,
		Date:      sess.Date,
		StartTime: sess.StartTime,
		EndTime:   sess.EndTime,
	})
}
