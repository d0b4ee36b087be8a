package endpoint

import (
	"fmt"

	"github.com/ariebrainware/patient-registry/config"
	"github.com/ariebrainware/patient-registry/metrics"
	"github.com/ariebrainware/patient-registry/middleware"
	"github.com/ariebrainware/patient-registry/model"
	"github.com/ariebrainware/patient-registry/store"
	"github.com/ariebrainware/patient-registry/util"
	"github.com/ariebrainware/patient-registry/web"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RouterDeps are the process-wide collaborators shared by every request.
type RouterDeps struct {
	Config  *config.Config
	Store   *store.Store
	Logger  zerolog.Logger
	Access  *util.AccessLogger
	Metrics *metrics.Metrics
	Redis   *redis.Client
}

// SetupRouter builds the gin engine with all middleware and routes.
func SetupRouter(deps RouterDeps) (*gin.Engine, error) {
	if deps.Config == nil || deps.Store == nil {
		return nil, fmt.Errorf("router needs config and store")
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	// Metrics wraps Recovery so requests that panic are still counted.
	router.Use(deps.Metrics.Middleware())
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.EndpointCallLogger(deps.Access))

	patients := NewPatientHandler(deps.Config.AppName, deps.Store.Collection(model.PatientCollection), deps.Access, deps.Metrics)
	limiter := middleware.RateLimiter(deps.Redis, middleware.RateLimitConfig{
		Limit:  deps.Config.RateLimit,
		Window: deps.Config.RateWindow,
	}, deps.Access)

	router.GET("/", patients.ListPatients)
	router.GET("/add", patients.ShowAddForm)
	router.POST("/add", limiter, patients.SubmitAddForm)

	router.GET("/healthz", HealthCheck(deps.Store))
	router.GET("/metrics", deps.Metrics.Handler())
	router.StaticFS("/static", web.Static())

	router.NoRoute(func(c *gin.Context) {
		util.CallErrorNotFound(c, util.APIErrorParams{
			Msg: "Route not found",
			Err: fmt.Errorf("no route for %s %s", c.Request.Method, c.Request.URL.Path),
		})
	})

	return router, nil
}
