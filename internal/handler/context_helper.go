package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutorhub-api/internal/models"
	appErrors "github.com/noah-isme/tutorhub-api/pkg/errors"
	"github.com/noah-isme/tutorhub-api/pkg/response"
)

type currentUserProvider interface {
	GetCurrentUser(ctx context.Context) (*models.User, error)
}

// bindJSON decodes the request body into dest, answering 400 on failure.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return false
	}
	return true
}

// requireTeacher loads the current user and answers 403 unless it is a teacher.
func requireTeacher(c *gin.Context, users currentUserProvider) (*models.User, bool) {
	user, err := users.GetCurrentUser(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if !user.IsTeacher() {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "only teachers can perform this action"))
		return nil, false
	}
	return user, true
}

// parseRange reads the RFC 3339 start and end query parameters.
func parseRange(c *gin.Context) (time.Time, time.Time, error) {
	start, err := parseInstant(c.Query("start"), "start")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseInstant(c.Query("end"), "end")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func parseInstant(raw, field string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, field+" is required")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, field+" must be an RFC 3339 timestamp")
	}
	return t, nil
}
