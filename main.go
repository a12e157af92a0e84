// Package main, merume backend uygulamasının giriş noktasıdır.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//  1. Config'i yükle
//  2. MongoDB'ye bağlan (koleksiyonlar + index'ler + change stream preimage)
//  3. Repository'leri oluştur (koleksiyonlar ile)
//  4. Service'leri oluştur (repository'ler ile)
//  5. Handler'ları oluştur (service'ler ile)
//  6. HTTP router'ı kur, route'ları bağla
//  7. CORS yapılandır
//  8. HTTP Server'ı başlat
//  9. Graceful shutdown
//
// Global değişken YOK — her şey bu fonksiyonda oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/akinalp/merume/config"
	"github.com/akinalp/merume/database"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] merume server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d, db=%s)", cfg.Server.Port, cfg.Mongo.Database)

	// ─── 2. Database ───
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.New(dbCtx, cfg.Mongo)
	dbCancel()
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(ctx); err != nil {
			log.Printf("[main] failed to close database: %v", err)
		}
	}()

	// ─── 3-5. Repository → Service → Handler ───
	repos := initRepositories(db, cfg)
	svcs := initServices(repos, cfg)
	h := initHandlers(svcs, repos)

	// ─── 6. HTTP Router ───
	mux := http.NewServeMux()
	initRoutes(mux, h, svcs.Auth, repos.User)

	// ─── 7. CORS ───
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		Debug:            false,
	})

	handler := corsHandler.Handler(mux)

	// ─── 8. HTTP Server ───
	//
	// WriteTimeout yok: WebSocket bağlantıları saatlerce açık kalır,
	// sabit bir write timeout onları koparır. Frame bazlı deadline'ları
	// ws paketi kendi yönetiyor.
	srv := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     handler,
		ReadTimeout: 0,
		IdleTimeout: 60 * time.Second,
	}

	// ─── 9. Graceful Shutdown ───
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

	// Shutdown yeni request kabulünü durdurur; açık WebSocket'ler hijacked
	// bağlantılar olduğu için beklemez — timeout sonunda Close ile kesilir.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[main] graceful shutdown timed out, forcing close: %v", err)
		if err := srv.Close(); err != nil {
			log.Fatalf("[main] forced shutdown: %v", err)
		}
	}

	log.Println("[main] server stopped gracefully")
}
