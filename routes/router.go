package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cppla/gamehouse/config"
	"github.com/cppla/gamehouse/controllers"
	"github.com/cppla/gamehouse/middleware"
	"github.com/cppla/gamehouse/services"
	"github.com/cppla/gamehouse/utils"
)

// SetupRouter wires services, controllers and middlewares. rdb may be nil, in
// which case listings are not cached and token revocation stays in memory.
func SetupRouter(cfg config.AppConfig, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rotating file; the app log level applies.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		utils.Logger.Warn("access log unavailable, falling back to default recovery")
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", utils.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", utils.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static(cfg.UploadURLPrefix, cfg.UploadDir)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	log := utils.Logger
	tokens := utils.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	revoked := utils.NewTokenBlacklist(rdb)
	identities := services.NewIdentityService(db, tokens, revoked)
	accounts := services.NewAccountService(db, utils.BcryptHasher{}, tokens, revoked, cfg.AdminSecret, log)
	cache := utils.NewCache(rdb)
	thread := services.NewCommentThread(db, cache, log)
	articles := services.NewArticleService(db, thread, cache, log)
	ballots := services.NewBallotBox(db, log)
	questions := services.NewQuestionService(db)
	blobs := services.NewDiskBlobStore(db, cfg.UploadDir, cfg.UploadURLPrefix, int64(cfg.UploadMaxMB)<<20, log)

	authController := controllers.NewAuthController(accounts)
	articleController := controllers.NewArticleController(articles)
	commentController := controllers.NewCommentController(thread)
	pollController := controllers.NewPollController(ballots)
	questionController := controllers.NewQuestionController(questions)
	uploadController := controllers.NewUploadController(blobs)

	authRequired := middleware.AuthRequired(identities)
	api := r.Group("/api")

	users := api.Group("/users")
	users.POST("/register", authController.Register)
	users.POST("/login", authController.Login)
	users.POST("/make-admin", authController.MakeAdmin)
	users.POST("/logout", authRequired, authController.Logout)
	users.GET("/profile", authRequired, authController.Profile)
	users.PUT("/profile", authRequired, authController.UpdateProfile)

	articlesGroup := api.Group("/articles")
	articlesGroup.GET("", articleController.List)
	articlesGroup.GET("/:id", articleController.Get)
	articlesGroup.POST("", authRequired, articleController.Create)
	articlesGroup.PUT("/:id", authRequired, articleController.Update)
	articlesGroup.DELETE("/:id", authRequired, articleController.Delete)
	articlesGroup.POST("/:id/like", authRequired, articleController.Like)
	articlesGroup.POST("/:id/react", authRequired, articleController.React)

	comments := api.Group("/comments")
	comments.GET("/article/:articleId", commentController.ListForArticle)
	comments.GET("/all", authRequired, commentController.ListAll)
	comments.POST("", authRequired, commentController.Create)
	comments.PUT("/:id", authRequired, commentController.Update)
	comments.DELETE("/:id", authRequired, commentController.Delete)

	polls := api.Group("/polls")
	polls.GET("", pollController.ListActive)
	polls.GET("/:id", pollController.Get)
	polls.POST("", authRequired, pollController.Create)
	polls.POST("/:id/vote", authRequired, pollController.Vote)
	polls.DELETE("/:id", authRequired, pollController.Delete)

	api.GET("/questions", questionController.List)
	api.POST("/questions", questionController.Create)

	api.POST("/uploads", authRequired, uploadController.Upload)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}
