// Package main — HTTP route registration.
//
// initRoutes, tüm API endpoint'lerini mux'a bağlar.
// Middleware chain helper'ları burada tanımlıdır:
//   - auth: JWT doğrulaması, context'e sadece user id koyar
//   - authProfile: JWT doğrulaması + claims'ten author profili
package main

import (
	"fmt"
	"net/http"

	"github.com/akinalp/merume/middleware"
	"github.com/akinalp/merume/repository"
	"github.com/akinalp/merume/services"
)

// initRoutes, middleware chain'i kurar ve tüm endpoint'leri mux'a bağlar.
//
// Route sıralama kuralı: Literal path'ler parametrik path'lerden ÖNCE
// tanımlanmalı. Örnek: "/api/posts/read" → "/api/posts/{id}/read"
// öncesinde, yoksa Go router "read" kelimesini bir id olarak yorumlar.
func initRoutes(
	mux *http.ServeMux,
	h *Handlers,
	authService services.AuthService,
	userRepo repository.UserRepository,
) {
	// ─── Middleware ───
	authMw := middleware.NewAuthMiddleware(authService, userRepo)

	// ─── Middleware Chain Helpers ───
	//
	// Endpoint'lerin hiçbiri tam kullanıcı dökümanına ihtiyaç duymuyor —
	// ScopeMinimalID yeterli, her request'te DB okuması yapılmaz.
	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(middleware.ScopeMinimalID, http.HandlerFunc(handler))
	}

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"merume"}`)
	})

	// Content — kişiselleştirilmiş öneriler + global trend listesi
	mux.Handle("GET /api/content/recommendations", auth(h.Content.Recommendations))
	mux.Handle("GET /api/content/trendings", auth(h.Content.Trendings))

	// Read tracker — okuma imleci get/upsert + toplu unread sayıları
	mux.Handle("GET /api/users/me/unreads", auth(h.ReadTracker.MyUnreads))
	mux.Handle("GET /api/channels/{id}/read-tracker", auth(h.ReadTracker.Get))
	mux.Handle("PUT /api/channels/{id}/read-tracker", auth(h.ReadTracker.Update))

	// Posts — tek seferlik düzenleme + okundu işaretleme
	// "/api/posts/read" literal'i "{id}/read" parametriğinden önce.
	mux.Handle("POST /api/posts/read", auth(h.Post.MarkReadBulk))
	mux.Handle("POST /api/posts/{id}/read", auth(h.Post.MarkRead))
	mux.Handle("PATCH /api/posts/{id}", auth(h.Post.Update))

	// Subscriptions
	mux.Handle("POST /api/channels/{id}/subscription", auth(h.Subscription.Subscribe))
	mux.Handle("DELETE /api/channels/{id}/subscription", auth(h.Subscription.Unsubscribe))

	// WebSocket — token query parameter ile authenticate edilir
	//
	// Neden auth middleware kullanmıyoruz?
	// WebSocket upgrade sırasında tarayıcılar custom HTTP header gönderemez.
	// Bu yüzden JWT token URL query parameter olarak gönderilir:
	//   ws://server/ws/heartbeat?token=JWT_TOKEN
	// WS handler kendi içinde token doğrulaması yapar.
	mux.HandleFunc("GET /ws/channels/{id}/posts", h.WS.HandleChannelPosts)
	mux.HandleFunc("GET /ws/users/me/channels", h.WS.HandleUserChannels)
	mux.HandleFunc("GET /ws/users/me/updates", h.WS.HandleMyPostUpdates)
	mux.HandleFunc("GET /ws/heartbeat", h.WS.HandleHeartbeat)
}
