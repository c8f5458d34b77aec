// Package httpapi wires the gin router: middleware chain, route
// table and the role allow-list on each protected route.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clinicore/prescriptions-api/internal/app/admin"
	authsvc "github.com/clinicore/prescriptions-api/internal/app/auth/service"
	"github.com/clinicore/prescriptions-api/internal/app/directory"
	"github.com/clinicore/prescriptions-api/internal/app/prescriptions"
	"github.com/clinicore/prescriptions-api/internal/domain/model"
	"github.com/clinicore/prescriptions-api/internal/transport/http/middleware"
)

type Options struct {
	Log            *zap.Logger
	AllowedOrigins []string

	Auth          authsvc.Service
	Prescriptions prescriptions.Service
	Admin         admin.Service
	Directory     directory.Service

	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler
	// Extra middleware (rate limiting, HTTP instrumentation) runs
	// after recovery and logging, before CORS.
	Extra []gin.HandlerFunc
}

func NewRouter(o Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(o.Log))
	for _, mw := range o.Extra {
		router.Use(mw)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins: o.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
		},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	auth := &authHandlers{auth: o.Auth, log: o.Log}
	rx := &prescriptionHandlers{prescriptions: o.Prescriptions}
	adm := &adminHandlers{admin: o.Admin, directory: o.Directory}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})
	if o.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(o.MetricsHandler))
	}

	router.POST("/auth/login", auth.login)
	router.POST("/auth/refresh", auth.refresh)

	authed := router.Group("/", middleware.Authenticate(o.Auth))

	authed.POST("/auth/logout", auth.logout)
	authed.GET("/auth/profile", auth.profile)
	authed.GET("/auth/validate", auth.validate)

	authed.POST("/prescriptions",
		middleware.RequireRoles(model.RoleDoctor), rx.create)
	authed.GET("/prescriptions",
		middleware.RequireRoles(model.RoleDoctor), rx.list)
	authed.GET("/prescriptions/:id",
		middleware.RequireRoles(model.RoleAdmin, model.RoleDoctor, model.RolePatient), rx.get)
	authed.POST("/prescriptions/:id/consume",
		middleware.RequireRoles(model.RolePatient), rx.consume)
	authed.GET("/me/prescriptions",
		middleware.RequireRoles(model.RolePatient), rx.listMine)

	authed.GET("/users",
		middleware.RequireRoles(model.RoleAdmin), adm.listUsers)
	authed.GET("/doctors",
		middleware.RequireRoles(model.RoleAdmin), adm.listDoctors)
	authed.GET("/patients",
		middleware.RequireRoles(model.RoleAdmin, model.RoleDoctor), adm.listPatients)
	authed.GET("/admin/metrics",
		middleware.RequireRoles(model.RoleAdmin), adm.metrics)

	return router
}
