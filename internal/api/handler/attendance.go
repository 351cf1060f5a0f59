package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campusware/rollcall/internal/attendance"
	"github.com/campusware/rollcall/internal/domain"
)

// AttendanceHandler accepts student submissions and hands them to the
// decision pipeline.
type AttendanceHandler struct {
	pipeline *attendance.Pipeline
}

func NewAttendanceHandler(pipeline *attendance.Pipeline) *AttendanceHandler {
	return &AttendanceHandler{pipeline: pipeline}
}

type SubmitResponse struct {
	Status         domain.AttendanceStatus `json:"status"`
	DistanceMeters float64                 `json:"distance_meters"`
	RollNo         string                  `json:"roll_no"`
	SessionID      string                  `json:"session_id"`
}

// Submit POST /attendance - run one submission through the pipeline
func (h *AttendanceHandler) Submit(c *fiber.Ctx) error {
	var in attendance.SubmitInput
	if err := c.BodyParser(&in); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	in.UserAgent = c.Get(fiber.HeaderUserAgent)

	rec, err := h.pipeline.Submit(c.Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(SubmitResponse{
		Status:         rec.Status,
		DistanceMeters: rec.DistanceMeters,
		RollNo:         rec.RollNo,
		SessionID:      rec.SessionID,
	})
}
