package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"cloudnest/config"
	"cloudnest/database"
	"cloudnest/handlers"
	"cloudnest/logger"
	"cloudnest/middleware"
	"cloudnest/models"
	"cloudnest/repositories"
	"cloudnest/services"
	"cloudnest/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("starting cloudnest service")

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	logger.Setup(&cfg.Log)

	if err := database.InitMySQL(&cfg.Database); err != nil {
		log.Fatalf("init mysql failed: %v", err)
	}

	database.DB.AutoMigrate(
		&models.User{},
		&models.Folder{},
		&models.File{},
		&models.ShareLink{},
	)
	log.Println("database migration completed")

	if err := database.InitRedis(&cfg.Redis); err != nil {
		log.Fatalf("init redis failed: %v", err)
	}

	if err := os.MkdirAll(filepath.Join(cfg.Storage.BasePath, "uploads"), 0o755); err != nil {
		log.Fatalf("create uploads dir failed: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(cfg.Storage.BasePath, "thumbnails"), 0o755); err != nil {
		log.Fatalf("create thumbnails dir failed: %v", err)
	}

	store := storage.NewLocalStore(cfg.Storage.BasePath)
	repoContainer := repositories.NewGormRepositories(database.DB, database.RedisClient).BuildContainer()
	serviceContainer := services.NewContainer(repoContainer, store)
	handlers.SetServices(serviceContainer)

	serviceContainer.Cleanup.StartCleanupWorkers(context.Background())
	log.Println("cleanup workers started")

	r := gin.Default()
	r.MaxMultipartMemory = 32 << 20
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestLogger())
	setupRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("server listening on http://%s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server start failed: %v", err)
	}
}

func setupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/health", handlers.HealthCheck)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", handlers.Signup)
		auth.POST("/login", handlers.Login)
		auth.POST("/reset-password", handlers.ResetPassword)
	}

	// Public share resolution: the token is the credential.
	api.GET("/share/:token", handlers.ResolveShareLink)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/user/profile", handlers.GetProfile)
		protected.GET("/user/storage/quota", handlers.GetStorageQuota)

		protected.GET("/folders", handlers.ListFolders)
		protected.POST("/folders", handlers.CreateFolder)
		protected.PUT("/folders/:id", handlers.RenameFolder)
		protected.DELETE("/folders/:id", handlers.DeleteFolder)

		protected.GET("/files", handlers.ListFiles)
		protected.POST("/files/upload", handlers.UploadFiles)
		protected.GET("/files/:id", handlers.GetFile)
		protected.GET("/files/:id/thumbnail", handlers.GetThumbnail)
		protected.DELETE("/files/:id", handlers.DeleteFile)

		protected.POST("/files/:id/share", handlers.CreateShareLink)
		protected.GET("/share-links", handlers.ListShareLinks)
		protected.DELETE("/share-links/:id", handlers.DeactivateShareLink)
	}

	// Downloads additionally accept the token as a query parameter so
	// plain browser navigation can fetch them.
	download := api.Group("")
	download.Use(middleware.AuthMiddlewareWithQueryToken())
	{
		download.GET("/files/:id/download", handlers.DownloadFile)
	}
}
