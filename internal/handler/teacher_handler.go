package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutorhub-api/internal/service"
	appErrors "github.com/noah-isme/tutorhub-api/pkg/errors"
	"github.com/noah-isme/tutorhub-api/pkg/response"
)

type teacherExporter interface {
	ExportTeachers(ctx context.Context, format string) (*service.ExportFile, error)
}

// TeacherHandler wires the teacher directory to HTTP routes.
type TeacherHandler struct {
	directory directoryService
	exports   teacherExporter
}

// NewTeacherHandler constructs a new TeacherHandler.
func NewTeacherHandler(directory directoryService, exports teacherExporter) *TeacherHandler {
	return &TeacherHandler{directory: directory, exports: exports}
}

// List godoc
// @Summary List teachers with their students
// @Tags Teachers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	teachers, err := h.directory.GetTeachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, map[string]interface{}{"total": len(teachers)})
}

// Export godoc
// @Summary Export the teacher directory
// @Tags Teachers
// @Produce text/csv,application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /teachers/export [get]
func (h *TeacherHandler) Export(c *gin.Context) {
	file, err := h.exports.ExportTeachers(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Students godoc
// @Summary Students of a teacher
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/students [get]
func (h *TeacherHandler) Students(c *gin.Context) {
	roster, err := h.directory.GetStudentsForTeacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, map[string]interface{}{"total": len(roster)})
}

// Enroll godoc
// @Summary Enroll a student with a teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Param id path string true "Teacher ID"
// @Param payload body service.EnrollRequest true "Student to enroll"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /teachers/{id}/enrollments [post]
func (h *TeacherHandler) Enroll(c *gin.Context) {
	var req service.EnrollRequest
	if !bindJSON(c, &req) {
		return
	}
	studentID := strings.TrimSpace(req.StudentID)
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student_id is required"))
		return
	}
	student, err := h.directory.EnrollStudentWithTeacher(c.Request.Context(), studentID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}
