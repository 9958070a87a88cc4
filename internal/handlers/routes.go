package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/scentdesk/usage-backend/internal/middleware"
)

// Routes groups the page handlers mounted by RegisterRoutes
type Routes struct {
	Auth     *AuthHandler
	Usage    *UsageHandler
	Perfumes *PerfumeHandler

	// LoginLimit throttles login and registration submissions; nil disables it
	LoginLimit gin.HandlerFunc
}

// RegisterRoutes mounts every page on router. Session loading must already be
// installed as router middleware.
func (r Routes) RegisterRoutes(router *gin.Engine) {
	limit := r.LoginLimit
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}

	router.GET("/", Home)

	router.GET("/login/", r.Auth.LoginPage)
	router.POST("/login/", limit, r.Auth.Login)
	router.GET("/register/", r.Auth.RegisterPage)
	router.POST("/register/", limit, r.Auth.Register)
	router.GET("/logout/", r.Auth.Logout)
	router.POST("/logout/", r.Auth.Logout)

	protected := router.Group("/", middleware.RequireSession())
	{
		protected.GET("/record/", r.Usage.RecordPage)
		protected.POST("/record/", r.Usage.Record)
		protected.GET("/today/", r.Usage.Today)
		protected.GET("/logs/", r.Usage.AllLogs)

		protected.GET("/perfumes/", r.Perfumes.Management)
		protected.GET("/perfumes/add/", r.Perfumes.ToManagement)
		protected.POST("/perfumes/add/", r.Perfumes.Add)
		protected.GET("/perfumes/edit/:id/", r.Perfumes.ToManagement)
		protected.POST("/perfumes/edit/:id/", r.Perfumes.Edit)
		protected.GET("/perfumes/delete/:id/", r.Perfumes.ToManagement)
		protected.POST("/perfumes/delete/:id/", r.Perfumes.Delete)
	}

	router.NoRoute(NotFound)
}
