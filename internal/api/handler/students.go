package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campusware/rollcall/internal/domain"
	"github.com/campusware/rollcall/internal/export"
	"github.com/campusware/rollcall/internal/store"
)

// StudentsHandler manages the student registry.
type StudentsHandler struct {
	store store.Store
}

func NewStudentsHandler(st store.Store) *StudentsHandler {
	return &StudentsHandler{store: st}
}

// Upsert PUT /v1/students - create or update a registry entry
func (h *StudentsHandler) Upsert(c *fiber.Ctx) error {
	var st domain.Student
	if err := c.BodyParser(&st); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	st.RollNo = strings.TrimSpace(st.RollNo)
	st.Name = strings.TrimSpace(st.Name)
	if st.RollNo == "" || st.Name == "" {
		return domain.ErrBadRequest.WithError(errors.New("roll_no and name are required"))
	}

	if err := h.store.UpsertStudent(c.Context(), &st); err != nil {
		return err
	}

	return c.JSON(st)
}

// List GET /v1/students - full registry, sorted by roll number
func (h *StudentsHandler) List(c *fiber.Ctx) error {
	students, err := h.store.ListStudents(c.Context())
	if err != nil {
		return err
	}
	if students == nil {
		students = []domain.Student{}
	}
	return c.JSON(fiber.Map{"students": students})
}

// Delete DELETE /v1/students/:roll_no
func (h *StudentsHandler) Delete(c *fiber.Ctx) error {
	if err := h.store.DeleteStudent(c.Context(), c.Params("roll_no")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Export GET /v1/students/export - registry as XLSX
func (h *StudentsHandler) Export(c *fiber.Ctx) error {
	students, err := h.store.ListStudents(c.Context())
	if err != nil {
		return err
	}

	data, filename, err := export.Students(students)
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
