// Command innate-go serves a small multi-user note-keeping API: account
// registration and login, password reset over emailed tokens, profile
// pictures, and CRUD over user-owned innates and items.
//
// @title Innate API
// @version 1.0
// @description Multi-user innate (note) keeping API with session auth and password reset.
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_TOKEN' to authorize
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/innate-go/apperror"
	"github.com/user/innate-go/auth"
	"github.com/user/innate-go/avatar"
	"github.com/user/innate-go/config"
	"github.com/user/innate-go/db"
	_ "github.com/user/innate-go/docs" // generated swagger spec
	"github.com/user/innate-go/innates"
	"github.com/user/innate-go/items"
	"github.com/user/innate-go/mailer"
	"github.com/user/innate-go/users"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	// A missing secret key (or any other config problem) is fatal here,
	// before anything listens.
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pool, err := db.NewPool(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}
	defer pool.Close()

	if err := db.EnableExtensions(pool); err != nil {
		log.Fatalf("Failed to enable extensions: %v", err)
	}
	if err := db.RunMigrations(cfg.Database, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	avatarStore, err := avatar.NewStore(cfg.Upload.Dir)
	if err != nil {
		log.Fatalf("Failed to prepare upload directory: %v", err)
	}

	var mail mailer.Mailer
	if cfg.Mail.Host != "" {
		mail, err = mailer.NewSMTPMailer(cfg.Mail)
		if err != nil {
			log.Fatalf("Failed to create mailer: %v", err)
		}
	} else {
		log.Println("SMTP_HOST not set, password-reset links will be logged instead of emailed")
		mail = mailer.LogMailer{}
	}

	tokens := auth.NewTokenService(cfg.Auth.SecretKey)
	authService := auth.NewAuthService(pool, *cfg.Auth, tokens, mail, cfg.Server.BaseURL)
	authHandlers := auth.NewHandlers(authService)

	userService := users.NewUserService(pool, avatarStore)
	userHandlers := users.NewUserHandlers(userService)

	innateService := innates.NewService(pool)
	innateHandlers := innates.NewHandler(innateService)

	itemService := items.NewService(pool)
	itemHandlers := items.NewHandler(itemService)

	r := chi.NewRouter()

	// Global middleware, registered before any routes.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Panic recovery that answers in the API's error format.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				if rvr := recover(); rvr != nil {
					log.Printf("Panic: %+v", rvr)
					writeError(ww, apperror.NewInternalError("internal server error", nil))
				}
			}()
			next.ServeHTTP(ww, r)
		})
	})

	// Every request gets a principal (or anonymous) before routing.
	r.Use(auth.SessionMiddleware(tokens))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Stored profile pictures.
	r.Handle(users.AvatarURLPrefix+"*", http.StripPrefix(
		users.AvatarURLPrefix,
		http.FileServer(http.Dir(cfg.Upload.Dir)),
	))

	r.Route("/auth", func(r chi.Router) {
		r.With(auth.RequireAnonymous).Post("/register", authHandlers.HandleRegister())
		r.With(auth.RequireAnonymous).Post("/login", authHandlers.HandleLogin())
		r.Post("/logout", authHandlers.HandleLogout())
		r.With(auth.RequireAnonymous).Post("/reset_password", authHandlers.HandleRequestReset())
		r.With(auth.RequireAnonymous).Post("/reset_password/{token}", authHandlers.HandleSubmitReset())
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(auth.RequireAuth)
		r.Get("/me", userHandlers.HandleGetProfile())
		r.Put("/me", userHandlers.HandleUpdateAccount())
		r.Post("/me/avatar", userHandlers.HandleUploadAvatar())
	})

	r.Route("/api/v1/innates", func(r chi.Router) {
		innateHandlers.RegisterRoutes(r)
	})
	r.Get("/api/v1/users/{username}/innates", innateHandlers.HandleListByUser())

	r.Route("/api/v1/items", func(r chi.Router) {
		r.Use(auth.RequireAuth)
		itemHandlers.RegisterRoutes(r)
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}

// writeError mirrors the handler-layer error formatting for the panic
// recovery middleware without importing the handler packages.
func writeError(w http.ResponseWriter, appErr *apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if err := json.NewEncoder(w).Encode(appErr.ToResponse()); err != nil {
		http.Error(w, `{"error":"failed to encode error response"}`, http.StatusInternalServerError)
	}
}
