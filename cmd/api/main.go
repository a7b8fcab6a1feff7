package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	limit "github.com/yangxikun/gin-limit-by-key"
	"golang.org/x/time/rate"

	_ "SupabaseAuthPortal/docs"
	"SupabaseAuthPortal/internal/chat"
	"SupabaseAuthPortal/internal/config"
	"SupabaseAuthPortal/internal/handler"
	"SupabaseAuthPortal/internal/middleware"
	"SupabaseAuthPortal/internal/rag"
	"SupabaseAuthPortal/internal/session"
	"SupabaseAuthPortal/internal/supabase"
)

// @title			Supabase Auth Portal API
// @version		1.0
// @description	Supabase 백엔드를 프록시하는 인증/프로필 API와 RAG 채팅
// @BasePath		/
// @securityDefinitions.apikey	BearerAuth
// @in				header
// @name			Authorization
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	client := supabase.New(cfg.SupabaseURL, cfg.SupabaseKey)
	sessions := session.NewManager(client)
	conversations := chat.NewManager(chat.ModelSettings{
		Model:       cfg.ChatModel,
		Temperature: 0.2,
		TopP:        1.0,
	})

	// 채팅/RAG는 OPENAI_API_KEY가 있을 때만 활성화
	var index *rag.Index
	var engine *rag.Engine
	if cfg.OpenAIAPIKey != "" {
		var err error
		index, err = rag.Open(context.Background(), cfg.DataDir, cfg.IndexDir, cfg.OpenAIAPIKey)
		if err != nil {
			log.Fatal("main(): Failed to open vector index: ", err)
		}
		engine = rag.NewEngine(cfg.OpenAIAPIKey, index)
	}

	h := handler.New(client, sessions, conversations, engine, index, cfg.ConfirmTokenType)

	router := gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	// 인증 엔드포인트 IP 단위 속도 제한
	authLimiter := limit.NewRateLimiter(func(c *gin.Context) string {
		return c.ClientIP()
	}, func(c *gin.Context) (*rate.Limiter, time.Duration) {
		return rate.NewLimiter(rate.Every(time.Second), 10), time.Hour
	}, func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
	})

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	router.POST("/login", authLimiter, h.Login)
	router.POST("/register", authLimiter, h.Register)
	router.POST("/reset-password", authLimiter, h.ResetPassword)
	router.GET("/confirm", h.Confirm)

	protected := router.Group("/api").Use(middleware.AuthMiddleware(sessions))
	{
		protected.GET("/profile", h.Profile)
		protected.PUT("/settings", h.UpdateSettings)
		if h.ChatEnabled() {
			protected.POST("/chat", h.Chat)
			protected.POST("/index", h.CreateIndex)
		}
	}
	router.POST("/logout", middleware.AuthMiddleware(sessions), h.Logout)

	if h.ChatEnabled() {
		router.GET("/ws/chat", h.HandleChatWS)
	}

	log.Fatal(router.Run(":" + cfg.Port))
}
