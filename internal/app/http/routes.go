package routes

import (
	"net/http"

	authapi "signage-panel/internal/api/auth"
	campaignsapi "signage-panel/internal/api/campaigns"
	groupsapi "signage-panel/internal/api/groups"
	playerapi "signage-panel/internal/api/player"
	slidesapi "signage-panel/internal/api/slides"
	usersapi "signage-panel/internal/api/users"
	"signage-panel/internal/app/http/middleware"
	"signage-panel/internal/domain/users"
	"signage-panel/internal/realtime"
	"signage-panel/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Store          *store.Store
	Secret         string
	UploadsDir     string
	MaxUploadBytes int64
	Hub            *realtime.Hub

	Auth      *authapi.Handler
	Users     *usersapi.Handler
	Groups    *groupsapi.Handler
	Slides    *slidesapi.Handler
	Campaigns *campaignsapi.Handler
	Player    *playerapi.Handler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", gin.WrapH(d.Hub.Handler()))
	r.Static("/uploads", d.UploadsDir)

	api := r.Group("/")
	api.Use(middleware.AttachUser(d.Secret, d.Store))

	auth := api.Group("/auth")
	auth.POST("/login", d.Auth.Login)
	auth.POST("/logout", d.Auth.Logout)
	auth.GET("/me", d.Auth.Me)
	auth.GET("/groups", middleware.AuthMiddleware(), d.Auth.Groups)

	master := auth.Group("/")
	master.Use(middleware.AuthMiddleware(), middleware.RequireRole(users.RoleMaster))
	master.GET("/users", d.Users.List)
	master.POST("/users", d.Users.Create)

	// Public reads used by players
	media := api.Group("/media")
	media.GET("/groups", d.Groups.List)
	media.GET("/settings", d.Groups.GetSettings)
	media.GET("/playlist", d.Player.Playlist)
	media.GET("/player-config", d.Player.Config)
	media.GET("/slides", d.Slides.List)
	media.GET("/campaigns", d.Campaigns.List)

	// Uploads
	uploads := media.Group("/")
	uploads.Use(middleware.AuthMiddleware(), middleware.LimitBody(d.MaxUploadBytes))
	uploads.POST("/upload", d.Slides.Upload)
	uploads.POST("/default-image", d.Groups.UploadDefaultImage)

	// Authenticated JSON mutations
	edit := media.Group("/")
	edit.Use(middleware.AuthMiddleware(), middleware.SanitizeAndCleanInputMiddleware())
	edit.POST("/settings", d.Groups.UpdateSettings)
	edit.POST("/reorder", d.Slides.Reorder)
	edit.POST("/delete", d.Slides.Delete)
	edit.PATCH("/slides/:id", d.Slides.Update)
	edit.POST("/campaigns", d.Campaigns.Create)
	edit.PUT("/campaigns/:id", d.Campaigns.Update)
	edit.DELETE("/campaigns/:id", d.Campaigns.Delete)

	admin := edit.Group("/")
	admin.Use(middleware.RequireRole(users.RoleMaster))
	admin.POST("/groups", d.Groups.Create)
	admin.POST("/groups/reorder", d.Groups.Reorder)
}
