package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"quote-web-server/config"
	_ "quote-web-server/docs"
	"quote-web-server/internal/handler"
	"quote-web-server/internal/repository"
	"quote-web-server/internal/security"
	"quote-web-server/internal/service"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Quote-web-server
// @version 1.0
// @description REST API для отправки смет клиентам и обработки их ответов

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Ошибка при закрытии Redis: %v", err)
		}
	}()

	srv, router := config.SetupServer(cfg.ServerAddr)

	userRepo := repository.NewUserRepository(db)
	jwtRepo := repository.NewJWTRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, time.Duration(cfg.TTL.S3AndRedis)*time.Second)

	s3Service, err := service.NewS3Service(ctx, &cfg.S3Config)
	if err != nil {
		log.Fatalf("Ошибка создания S3 сервиса: %v", err)
	}

	rendererService := service.NewRendererService(&cfg.Renderer)
	mailerService := service.NewMailerService(&cfg.SMTP)
	composeService := service.NewComposeService()
	tokenService := service.NewTokenService(tokenRepo, db, cfg.TTL.TokenDays)

	deliveryService := service.NewDeliveryService(
		quoteRepo,
		tokenService,
		rendererService,
		rendererService,
		composeService,
		mailerService,
		cacheRepo,
		s3Service,
		db,
		time.Duration(cfg.TTL.S3AndRedis)*time.Second,
	)
	actionService := service.NewActionService(quoteRepo, tokenRepo, userRepo, mailerService, cacheRepo, db)

	jwtService := security.NewJWTService(&cfg.JWT)
	authService := service.NewAuthenticationService(jwtRepo, cfg, jwtService, userRepo, db)

	authHandler := handler.NewAuthenticationHandler(authService, jwtService, &cfg.JWT)
	quoteHandler := handler.NewQuoteHandler(deliveryService, userRepo, db, cfg.Public.Origin, &cfg.TTL)
	publicHandler := handler.NewPublicHandler(actionService)

	router.Use(config.DBMiddleware(db))
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	setupAuthRoutes(router, authHandler, jwtService, jwtRepo, cfg)
	setupQuoteRoutes(router, quoteHandler, jwtService, jwtRepo, cfg)
	setupPublicRoutes(router, publicHandler)

	runServer(ctx, srv)
}

func setupAuthRoutes(r chi.Router, h *handler.AuthenticationHandler, jwtService *security.JWTService, jwtRepo *repository.JWTRepository, cfg *config.AppConfig) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(security.JWTMiddleware([]byte(cfg.JWT.SecretKey), jwtRepo, jwtService, cfg.Admin.AdminToken))
			r.Post("/refresh", h.RefreshToken)
			r.Post("/logout", h.Logout)
		})
		r.Group(func(r chi.Router) {
			r.Post("/", h.Login)
		})
	})
}

func setupQuoteRoutes(r chi.Router, h *handler.QuoteHandler, jwtService *security.JWTService, jwtRepo *repository.JWTRepository, cfg *config.AppConfig) {
	r.Route("/api/quotes", func(r chi.Router) {
		r.Use(security.JWTMiddleware([]byte(cfg.JWT.SecretKey), jwtRepo, jwtService, cfg.Admin.AdminToken))

		r.Route("/{quote_id}", func(r chi.Router) {
			r.Post("/send", h.SendQuote)
			r.Post("/artifact", h.EnsureArtifact)
			r.Get("/artifact", h.ArtifactLink)
		})
	})
}

func setupPublicRoutes(r chi.Router, h *handler.PublicHandler) {
	r.Get("/public-document/{token}", h.ViewQuote)
	r.Get("/public/quotes/respond", h.Respond)
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
