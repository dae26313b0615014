package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorhub-api/internal/models"
	"github.com/noah-isme/tutorhub-api/internal/repository"
	"github.com/noah-isme/tutorhub-api/internal/service"
	"github.com/noah-isme/tutorhub-api/pkg/idgen"
)

var testClock = func() time.Time { return time.UnixMilli(1700000000000) }

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"error"`
	Meta map[string]interface{} `json:"meta"`
}

func buildTestRouter(t *testing.T, currentUserID string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	validate := validator.New()

	users := repository.NewUserRepository([]models.User{
		models.NewTeacher("t1", "Ann", "Math"),
		models.NewTeacher("t2", "Dee", "Art"),
		models.NewStudent("s-bo-id", "Bo", "Ann"),
	})
	directory, err := service.NewDirectoryService(ctx, users, validate, zap.NewNop(), service.DirectoryOptions{
		CurrentUserID: currentUserID,
		NewStudentID:  idgen.New("user-s", 0, testClock).Next,
	})
	require.NoError(t, err)
	calendar := service.NewCalendarService(
		repository.NewCalendarRepository(idgen.New("event", 0, testClock).Next),
		validate, zap.NewNop(), nil, 0)
	exports := service.NewExportService(directory, calendar, zap.NewNop())

	userHandler := NewUserHandler(directory)
	teacherHandler := NewTeacherHandler(directory, exports)
	calendarHandler := NewCalendarHandler(calendar, directory, exports)

	r := gin.New()
	api := r.Group("/api/v1")
	api.GET("/me", userHandler.Me)
	api.PATCH("/me", userHandler.Update)
	api.PUT("/me/identity", userHandler.SwitchIdentity)
	api.GET("/me/students", userHandler.Students)
	api.POST("/me/students", userHandler.AddStudent)
	api.GET("/teachers", teacherHandler.List)
	api.GET("/teachers/export", teacherHandler.Export)
	api.GET("/teachers/:id/students", teacherHandler.Students)
	api.POST("/teachers/:id/enrollments", teacherHandler.Enroll)
	api.GET("/calendar/events", calendarHandler.List)
	api.POST("/calendar/events", calendarHandler.Create)
	api.GET("/calendar/events/export", calendarHandler.Export)
	return r
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}
