// Package main — Handler katmanı başlatma.
//
// initHandlers, tüm HTTP ve WebSocket handler'larını oluşturur.
// Her handler, ihtiyaç duyduğu service interface'lerini constructor'dan alır.
// Handler'lar "thin" dir — sadece HTTP parse + service call + response write.
package main

import (
	"github.com/akinalp/merume/handlers"
	"github.com/akinalp/merume/ws"
)

// Handlers, tüm handler instance'larını tutan container struct.
type Handlers struct {
	Content      *handlers.ContentHandler
	ReadTracker  *handlers.ReadTrackerHandler
	Post         *handlers.PostHandler
	Subscription *handlers.SubscriptionHandler
	WS           *ws.Handler
}

// initHandlers, tüm handler'ları service dependency'leri ile oluşturur.
func initHandlers(svcs *Services, repos *Repositories) *Handlers {
	return &Handlers{
		Content:      handlers.NewContentHandler(svcs.Ranking),
		ReadTracker:  handlers.NewReadTrackerHandler(svcs.ReadTracker),
		Post:         handlers.NewPostHandler(svcs.Post, svcs.ReadTracker),
		Subscription: handlers.NewSubscriptionHandler(svcs.Subscription),
		WS: ws.NewHandler(
			svcs.Auth,
			repos.Channel,
			repos.Post,
			repos.UserChannel,
			svcs.ReadTracker,
			svcs.Presence,
			repos.PostsWatcher,
			repos.ChannelsWatcher,
			repos.UserChannelsWatcher,
		),
	}
}
