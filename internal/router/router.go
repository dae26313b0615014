package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorhub-api/internal/handler"
	internalmiddleware "github.com/noah-isme/tutorhub-api/internal/middleware"
	"github.com/noah-isme/tutorhub-api/internal/service"
	"github.com/noah-isme/tutorhub-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/tutorhub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tutorhub-api/pkg/middleware/requestid"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	Metrics        *service.MetricsService
	Users          *handler.UserHandler
	Teachers       *handler.TeacherHandler
	Calendar       *handler.CalendarHandler
	Observability  *handler.MetricsHandler
}

// New builds the gin engine with middleware and every route registered.
func New(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.APIPrefix == "" {
		d.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.Logger))
	r.Use(corsmiddleware.New(d.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(d.Metrics))

	r.GET("/health", d.Observability.Health)
	r.GET("/ready", d.Observability.Ready)
	r.GET("/metrics", d.Observability.Prometheus)
	if d.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(d.APIPrefix)
	{
		me := api.Group("/me")
		{
			me.GET("", d.Users.Me)
			me.PATCH("", d.Users.Update)
			me.PUT("/identity", d.Users.SwitchIdentity)
			me.GET("/students", d.Users.Students)
			me.POST("/students", d.Users.AddStudent)
		}

		teachers := api.Group("/teachers")
		{
			teachers.GET("", d.Teachers.List)
			teachers.GET("/export", d.Teachers.Export)
			teachers.GET("/:id/students", d.Teachers.Students)
			teachers.POST("/:id/enrollments", d.Teachers.Enroll)
		}

		calendar := api.Group("/calendar")
		{
			calendar.GET("/events", d.Calendar.List)
			calendar.POST("/events", d.Calendar.Create)
			calendar.GET("/events/export", d.Calendar.Export)
		}
	}

	return r
}
