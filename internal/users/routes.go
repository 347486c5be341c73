package users

import (
	"github.com/gin-gonic/gin"

	"energienachweise/marketplace-backend/internal/auth"
)

// RegisterRoutes registers user account routes
func RegisterRoutes(r *gin.Engine, handler *Handler, mw *auth.Middleware) {
	customers := r.Group("/customers")
	{
		customers.POST("/register", handler.RegisterCustomer)
	}

	experts := r.Group("/experts")
	{
		experts.POST("/register", handler.RegisterExpert)
		experts.GET("/search",
			mw.Authenticate(),
			mw.RequireRoles(auth.RoleKunde, auth.RoleAdmin),
			handler.SearchExperts)
	}

	admin := r.Group("/admin", mw.Authenticate(), mw.RequireRoles(auth.RoleAdmin))
	{
		admin.GET("/experts/unverified", handler.ListUnverifiedExperts)
		admin.POST("/experts/:id/verify", handler.VerifyExpert)
	}
}
