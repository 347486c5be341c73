package projects

import (
	"github.com/gin-gonic/gin"

	"energienachweise/marketplace-backend/internal/auth"
)

// RegisterRoutes registers project lifecycle routes
func RegisterRoutes(r *gin.Engine, handler *Handler, mw *auth.Middleware) {
	projectsGroup := r.Group("/projects", mw.Authenticate())
	{
		projectsGroup.POST("", mw.RequireRoles(auth.RoleKunde, auth.RoleAdmin), handler.CreateProject)
		projectsGroup.GET("/mine", mw.RequireRoles(auth.RoleKunde, auth.RoleAdmin), handler.ListMyProjects)
		projectsGroup.GET("/:id", handler.GetProject)
		projectsGroup.PATCH("/:id", handler.PatchProject)

		projectsGroup.POST("/:id/evidences", handler.AddEvidence)
		projectsGroup.GET("/:id/evidences", handler.ListEvidences)
		projectsGroup.DELETE("/:id/evidences/:evidenceID", handler.DeleteEvidence)
	}

	requestsGroup := r.Group("/requests", mw.Authenticate())
	{
		requestsGroup.POST("", mw.RequireRoles(auth.RoleKunde, auth.RoleAdmin), handler.CreateRequests)
		requestsGroup.GET("/mine", handler.ListMyRequests)
	}

	quotesGroup := r.Group("/quotes", mw.Authenticate())
	{
		quotesGroup.POST("/requests/:id", mw.RequireRoles(auth.RoleExperte, auth.RoleAdmin), handler.SubmitQuote)
		quotesGroup.POST("/:id/accept", mw.RequireRoles(auth.RoleKunde, auth.RoleAdmin), handler.AcceptQuote)
		quotesGroup.POST("/:id/reject", mw.RequireRoles(auth.RoleKunde, auth.RoleAdmin), handler.RejectQuote)
	}
}
