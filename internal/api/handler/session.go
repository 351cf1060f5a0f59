package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/campusware/rollcall/internal/domain"
	"github.com/campusware/rollcall/internal/export"
	"github.com/campusware/rollcall/internal/session"
)

// SessionHandler owns the faculty-facing session endpoints: CRUD, the
// attendance report, the XLSX export and manual record corrections.
type SessionHandler struct {
	sessions *session.Service
	logger   *slog.Logger
}

func NewSessionHandler(sessions *session.Service, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

type SessionResponse struct {
	Session *domain.Session `json:"session"`
	ScanURL string          `json:"scan_url"`
}

// Create POST /v1/sessions - create a session and return its scan link
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	var in session.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	sess, scanURL, err := h.sessions.Create(c.Context(), in)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(SessionResponse{
		Session: sess,
		ScanURL: scanURL,
	})
}

// List GET /v1/sessions - list sessions, optionally filtered
func (h *SessionHandler) List(c *fiber.Ctx) error {
	filter := domain.SessionFilter{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		StartTime: c.Query("start_time"),
		EndTime:   c.Query("end_time"),
		Subject:   c.Query("subject"),
	}

	sessions, err := h.sessions.List(c.Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"sessions": sessions})
}

// Get GET /v1/sessions/:id - fetch one session with its scan link
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(SessionResponse{
		Session: sess,
		ScanURL: h.sessions.ScanURL(sess),
	})
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// SetActive PATCH /v1/sessions/:id - activate or deactivate a session
func (h *SessionHandler) SetActive(c *fiber.Ctx) error {
	var req setActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	sess, err := h.sessions.SetActive(c.Context(), c.Params("id"), req.Active)
	if err != nil {
		return err
	}

	return c.JSON(SessionResponse{
		Session: sess,
		ScanURL: h.sessions.ScanURL(sess),
	})
}

// Delete DELETE /v1/sessions/:id - delete a session and its attendance
func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	if err := h.sessions.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Report GET /v1/sessions/:id/report - per-session attendance summary
func (h *SessionHandler) Report(c *fiber.Ctx) error {
	rep, err := h.sessions.Report(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(rep)
}

// Export GET /v1/sessions/:id/export - attendance report as XLSX
func (h *SessionHandler) Export(c *fiber.Ctx) error {
	rep, err := h.sessions.Report(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	data, filename, err := export.Attendance(rep.Session, rep.Records)
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

type correctRecordRequest struct {
	Status string `json:"status"`
	Name   string `json:"name"`
}

// CorrectRecord PATCH /v1/sessions/:id/records/:roll_no - manual fix
func (h *SessionHandler) CorrectRecord(c *fiber.Ctx) error {
	var req correctRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	rec, err := h.sessions.CorrectRecord(
		c.Context(),
		c.Params("id"),
		c.Params("roll_no"),
		domain.AttendanceStatus(req.Status),
		req.Name,
	)
	if err != nil {
		return err
	}

	return c.JSON(rec)
}

// DeleteRecord DELETE /v1/sessions/:id/records/:roll_no
func (h *SessionHandler) DeleteRecord(c *fiber.Ctx) error {
	if err := h.sessions.DeleteRecord(c.Context(), c.Params("id"), c.Params("roll_no")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
