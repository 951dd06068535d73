// Package main, mnemo backend uygulamasının giriş noktasıdır.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//  1. Config'i yükle
//  2. Database'i başlat (embedded migration'lar ile)
//  3. Repository'leri oluştur (DB bağlantısı ile)
//  4. Generation gateway client'ını oluştur
//  5. Service'leri oluştur (repository'ler + gateway ile)
//  6. Handler'ları oluştur (service'ler ile)
//  7. Auth middleware'ı oluştur
//  8. HTTP router'ı kur, route'ları bağla
//  9. CORS yapılandır
// 10. HTTP Server'ı başlat
// 11. Graceful shutdown
//
// Global değişken YOK — her şey bu fonksiyonda oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akinalp/mnemo/config"
	"github.com/akinalp/mnemo/database"
	"github.com/akinalp/mnemo/handlers"
	"github.com/akinalp/mnemo/middleware"
	"github.com/akinalp/mnemo/pkg/genai"
	"github.com/akinalp/mnemo/pkg/ratelimit"
	"github.com/akinalp/mnemo/repository"
	"github.com/akinalp/mnemo/services"
	"github.com/rs/cors"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] mnemo server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	// ─── 2. Database ───
	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		log.Fatalf("[main] failed to open embedded migrations: %v", err)
	}

	db, err := database.New(cfg.Database.Path, migrationsFS)
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	// ─── 3. Repository Layer ───
	userRepo := repository.NewSQLiteUserRepo(db.Conn)
	cardRepo := repository.NewSQLiteFlashcardRepo(db.Conn)

	// ─── 4. Generation Gateway ───
	generator := genai.NewGeminiGenerator(
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		cfg.Gemini.BaseURL,
		time.Duration(cfg.Gemini.Timeout)*time.Second,
	)

	// ─── 5. Service Layer ───
	authService := services.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	cardService := services.NewFlashcardService(cardRepo, generator)

	// ─── 6. Handler Layer ───
	// Login brute-force koruması: IP başına 2 dakikada 5 deneme
	loginLimiter := ratelimit.NewLoginRateLimiter(5, 2*time.Minute)
	defer loginLimiter.Stop()

	authHandler := handlers.NewAuthHandler(authService, loginLimiter)
	cardHandler := handlers.NewFlashcardHandler(cardService)

	// ─── 7. Middleware ───
	authMiddleware := middleware.NewAuthMiddleware(authService, userRepo)

	// ─── 8. HTTP Router ───
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"mnemo"}`)
	})

	// Auth — public endpoint'ler (token gerekmez)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/refresh", authHandler.Refresh)

	// Protected endpoint'ler — authMiddleware.Require() sarar
	mux.Handle("GET /api/users/me", authMiddleware.Require(http.HandlerFunc(authHandler.Me)))

	// Flashcards — hepsi authenticated, hepsi sahibin kayıtlarıyla sınırlı.
	// Route sıralama kuralı: literal path'ler ("topics", "generate")
	// parametrik path'lerden ({id}) önce tanımlanmalı.
	mux.Handle("POST /api/flashcards/generate", authMiddleware.Require(
		http.HandlerFunc(cardHandler.Generate)))
	mux.Handle("GET /api/flashcards/topics", authMiddleware.Require(
		http.HandlerFunc(cardHandler.Topics)))
	mux.Handle("GET /api/flashcards/topic/{topic}", authMiddleware.Require(
		http.HandlerFunc(cardHandler.ByTopic)))
	mux.Handle("DELETE /api/flashcards/topic/{topic}", authMiddleware.Require(
		http.HandlerFunc(cardHandler.DeleteTopic)))
	mux.Handle("POST /api/flashcards", authMiddleware.Require(
		http.HandlerFunc(cardHandler.Create)))
	mux.Handle("GET /api/flashcards", authMiddleware.Require(
		http.HandlerFunc(cardHandler.List)))
	mux.Handle("POST /api/flashcards/{id}/review", authMiddleware.Require(
		http.HandlerFunc(cardHandler.Review)))
	mux.Handle("PATCH /api/flashcards/{id}", authMiddleware.Require(
		http.HandlerFunc(cardHandler.Update)))
	mux.Handle("DELETE /api/flashcards/{id}", authMiddleware.Require(
		http.HandlerFunc(cardHandler.Delete)))

	// ─── 9. CORS ───
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		Debug:            false,
	})

	handler := corsHandler.Handler(mux)

	// ─── 10. HTTP Server ───
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // Gemini çağrısı uzun sürebilir
		IdleTimeout:  60 * time.Second,
	}

	// ─── 11. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// Yeni request kabul etmeyi durdur, mevcut request'lerin bitmesini bekle
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}
