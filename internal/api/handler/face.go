package handler

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campusware/rollcall/internal/attendance"
	"github.com/campusware/rollcall/internal/bucket"
	"github.com/campusware/rollcall/internal/domain"
	"github.com/campusware/rollcall/internal/face"
	"github.com/campusware/rollcall/internal/metrics"
)

const (
	maxImageSize = 10 * 1024 * 1024 // 10MB
)

// validImageTypes mirrors what the enrollment bucket and the image
// decoder accept.
var validImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// FaceHandler handles face verification and enrollment requests.
type FaceHandler struct {
	verifier *attendance.FaceVerifier
	matcher  face.Matcher
	bucket   *bucket.Bucket
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewFaceHandler(verifier *attendance.FaceVerifier, matcher face.Matcher, b *bucket.Bucket, m *metrics.Metrics, logger *slog.Logger) *FaceHandler {
	return &FaceHandler{
		verifier: verifier,
		matcher:  matcher,
		bucket:   b,
		metrics:  m,
		logger:   logger,
	}
}

// Verify POST /face/verify - match a probe against the claimed roll.
// Every attempt answers 200 with a structured outcome; a rejection is a
// result, not an error.
func (h *FaceHandler) Verify(c *fiber.Ctx) error {
	sessionID := strings.TrimSpace(c.FormValue("session_id"))
	rollNo := strings.TrimSpace(c.FormValue("roll_no"))
	if sessionID == "" || rollNo == "" {
		return domain.ErrBadRequest.WithError(errors.New("session_id and roll_no are required"))
	}

	imageBytes, _, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	out := h.verifier.Verify(c.Context(), attendance.VerifyInput{
		SessionID: sessionID,
		RollNo:    rollNo,
		Image:     imageBytes,
	})

	return c.JSON(out)
}

type EnrollResponse struct {
	RollNo   string `json:"roll_no"`
	Reloaded bool   `json:"reloaded"`
}

// Enroll POST /face/enroll - add a reference image for a roll number.
// The index reload afterwards is best-effort: the image is already
// stored, so a failed rebuild only delays when it takes effect.
func (h *FaceHandler) Enroll(c *fiber.Ctx) error {
	rollNo := strings.TrimSpace(c.FormValue("roll_no"))
	if rollNo == "" {
		return domain.ErrBadRequest.WithError(errors.New("roll_no is required"))
	}

	imageBytes, ext, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	if _, err := h.bucket.SaveReference(rollNo, ext, imageBytes); err != nil {
		return domain.ErrInternal.WithError(err)
	}

	reloaded := h.matcher.Reload(c.Context())
	if reloaded {
		h.metrics.IndexReloads.Inc()
	} else {
		h.metrics.SwallowedErrors.WithLabelValues("post_enroll_reload").Inc()
		h.logger.Warn("index reload after enrollment left index empty",
			slog.String("roll_no", rollNo),
		)
	}

	h.logger.Info("reference image enrolled", slog.String("roll_no", rollNo))

	return c.Status(fiber.StatusCreated).JSON(EnrollResponse{
		RollNo:   rollNo,
		Reloaded: reloaded,
	})
}

// Reload POST /face/reload - force an index rebuild
func (h *FaceHandler) Reload(c *fiber.Ctx) error {
	ready := h.matcher.Reload(c.Context())
	h.metrics.IndexReloads.Inc()
	return c.JSON(h.statusWith(c, ready))
}

// Status GET /face/status - engine observability snapshot
func (h *FaceHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.matcher.Status(c.Context()))
}

// Enrolled GET /face/enrolled - sorted list of enrolled roll numbers
func (h *FaceHandler) Enrolled(c *fiber.Ctx) error {
	h.matcher.EnsureIndexed(c.Context())
	rolls := h.matcher.EnrolledIdentities(c.Context())
	if rolls == nil {
		rolls = []string{}
	}
	return c.JSON(fiber.Map{"rolls": rolls})
}

func (h *FaceHandler) statusWith(c *fiber.Ctx, ready bool) domain.EngineStatus {
	st := h.matcher.Status(c.Context())
	st.Ready = ready
	return st
}

// extractAndValidateImage extracts the image from the multipart form and
// enforces size and content-type limits. Returns the bytes and the file
// extension matching the declared type.
func extractAndValidateImage(c *fiber.Ctx) ([]byte, string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, "", domain.ErrBadRequest.WithError(err)
	}

	if file.Size == 0 || file.Size > maxImageSize {
		return nil, "", domain.ErrInvalidImage
	}

	contentType := file.Header.Get("Content-Type")
	ext, ok := validImageTypes[contentType]
	if !ok {
		return nil, "", domain.ErrInvalidImage
	}

	f, err := file.Open()
	if err != nil {
		return nil, "", domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	imageBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, "", domain.ErrInvalidImage.WithError(err)
	}

	return imageBytes, ext, nil
}
