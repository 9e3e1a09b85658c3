package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "greatlibrary/internal/app"
	"greatlibrary/internal/bootstrap"
	"greatlibrary/internal/platform/rabbitmq"
	"greatlibrary/internal/repository"
	"greatlibrary/internal/transport/http/handler"
	"greatlibrary/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	qaRepo := repository.NewQARecordRepository(app.MySQL)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
		app.Logger,
	)

	resolver := appsvc.NewStoreResolver(
		app.Search,
		app.DocumentCache,
		app.Config.FileSearch.StoreDisplayName,
		app.Logger,
	)
	uploadService := appsvc.NewUploadService(
		app.Search,
		resolver,
		app.DocumentCache,
		int64(app.Config.FileSearch.MaxFileSizeMB)<<20,
		app.Logger,
	)
	documentService := appsvc.NewDocumentService(app.Search, resolver, app.DocumentCache, app.Logger)
	qaPublisher := rabbitmq.NewQAPublisher(app.MQConn, app.Config.RabbitMQ.QAPersistQueue)
	askService := appsvc.NewAskService(
		app.Search,
		resolver,
		app.DocumentCache,
		app.ConversationCache,
		qaPublisher,
		app.Config.FileSearch.MaxContextMessages,
		app.Logger,
	)

	authHandler := handler.NewAuthHandler(authService)
	documentHandler := handler.NewDocumentHandler(uploadService, documentService)
	noteHandler := handler.NewNoteHandler(uploadService)
	askHandler := handler.NewAskHandler(askService, qaRepo)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	authed := v1.Group("")
	authed.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))

	authed.POST("/documents", documentHandler.Upload)
	authed.GET("/documents", documentHandler.List)
	authed.POST("/documents/sync", documentHandler.Sync)
	authed.DELETE("/documents/:id", documentHandler.Delete)

	authed.POST("/notes", noteHandler.Create)

	authed.POST("/ask", askHandler.Ask)
	authed.GET("/ask/history", askHandler.History)
	authed.DELETE("/ask/sessions/:session", askHandler.ClearHistory)

	return router
}
