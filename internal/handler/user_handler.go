package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/internal/service"
	"github.com/noah-isme/tutorhub-api/pkg/response"
)

type directoryService interface {
	GetCurrentUser(ctx context.Context) (*models.User, error)
	SwitchCurrentUser(ctx context.Context, req service.SwitchUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, req service.UpdateUserRequest) (*models.User, error)
	GetStudentsForTeacher(ctx context.Context, teacherID string) ([]string, error)
	AddStudentToTeacherList(ctx context.Context, req service.AddStudentRequest) ([]string, error)
	GetTeachers(ctx context.Context) ([]models.User, error)
	EnrollStudentWithTeacher(ctx context.Context, studentID, teacherID string) (*models.User, error)
}

// UserHandler exposes the current user's profile and roster.
type UserHandler struct {
	directory directoryService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(directory directoryService) *UserHandler {
	return &UserHandler{directory: directory}
}

// Me godoc
// @Summary Get the current user
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.directory.GetCurrentUser(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user)
}

// Update godoc
// @Summary Update the current user's name or role
// @Tags Me
// @Accept json
// @Produce json
// @Param payload body service.UpdateUserRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /me [patch]
func (h *UserHandler) Update(c *gin.Context) {
	var req service.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.directory.UpdateUser(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user)
}

// SwitchIdentity godoc
// @Summary Act as another stored user
// @Tags Me
// @Accept json
// @Produce json
// @Param payload body service.SwitchUserRequest true "Target user"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /me/identity [put]
func (h *UserHandler) SwitchIdentity(c *gin.Context) {
	var req service.SwitchUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.directory.SwitchCurrentUser(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user)
}

// Students godoc
// @Summary Roster of the current teacher
// @Tags Me
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/students [get]
func (h *UserHandler) Students(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.directory.GetCurrentUser(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}
	roster, err := h.directory.GetStudentsForTeacher(ctx, user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, map[string]interface{}{"total": len(roster)})
}

// AddStudent godoc
// @Summary Add a student to the current teacher's roster
// @Tags Me
// @Accept json
// @Produce json
// @Param payload body service.AddStudentRequest true "Student name"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /me/students [post]
func (h *UserHandler) AddStudent(c *gin.Context) {
	var req service.AddStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	roster, err := h.directory.AddStudentToTeacherList(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, roster)
}
