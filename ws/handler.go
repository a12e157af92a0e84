package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/akinalp/merume/models"
	"github.com/akinalp/merume/pkg"
	"github.com/akinalp/merume/repository"
	"github.com/akinalp/merume/services"
)

// TokenValidator, WebSocket handler'ın JWT doğrulaması için kullandığı interface.
//
// Interface Segregation Principle (ISP):
// WS handler'ın auth servisinin tamamına ihtiyacı yok, sadece
// ValidateAccessToken yeterli. Küçük, odaklı bir interface tanımlıyoruz —
// testlerde sahte bir validator vermek de böylece kolaylaşır.
// main.go'da authService bu interface'i otomatik olarak karşılar
// (Go'da implicit interface).
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
}

// upgrader, HTTP bağlantısını WebSocket bağlantısına yükseltir.
//
// WebSocket Upgrade nedir?
// WebSocket, normal HTTP bağlantısı olarak başlar ve "upgrade" ile
// kalıcı, çift yönlü (bidirectional) bir bağlantıya dönüşür.
// HTTP: istek → yanıt → bağlantı kapanır
// WebSocket: bağlantı açık kalır, her iki taraf istediği zaman mesaj gönderebilir
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CheckOrigin: Production'da domain kontrolü yapılmalı.
	// Şimdilik tüm origin'lere izin veriyoruz (development için).
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	// pageSize, snapshot ve scroll_top sayfalarının boyutu.
	pageSize = 20

	// coalesceThreshold: feed buffer'ında bekleyen bildirim sayısı bu
	// eşiği aşarsa tek tek delta göndermek yerine buffer boşaltılıp tam
	// snapshot push edilir. Yavaş client sınırsız delta kuyruğu biriktiremez.
	coalesceThreshold = 32

	// presenceWriteTimeout: disconnect sırasındaki offline yazısının süresi.
	// Request context'i o anda çoktan iptal olmuş olabilir.
	presenceWriteTimeout = 5 * time.Second
)

// Handler, WebSocket bağlantı isteklerini işleyen HTTP handler'ları.
//
// Her endpoint kendi change feed'ini açar; Hub gibi merkezi bir broadcast
// yapısı YOKTUR. Dağıtımı storage'ın change stream'i yapar — bu sayede
// birden fazla server instance'ı aynı DB'ye bakarak aynı push'ları üretir.
type Handler struct {
	tokenValidator TokenValidator

	channelRepo     repository.ChannelRepository
	postRepo        repository.PostRepository
	userChannelRepo repository.UserChannelRepository

	readTrackerService services.ReadTrackerService
	presenceService    services.PresenceService

	postsWatcher        repository.ChangeFeedWatcher
	channelsWatcher     repository.ChangeFeedWatcher
	userChannelsWatcher repository.ChangeFeedWatcher
}

// NewHandler, yeni bir WebSocket handler oluşturur.
func NewHandler(
	tokenValidator TokenValidator,
	channelRepo repository.ChannelRepository,
	postRepo repository.PostRepository,
	userChannelRepo repository.UserChannelRepository,
	readTrackerService services.ReadTrackerService,
	presenceService services.PresenceService,
	postsWatcher repository.ChangeFeedWatcher,
	channelsWatcher repository.ChangeFeedWatcher,
	userChannelsWatcher repository.ChangeFeedWatcher,
) *Handler {
	return &Handler{
		tokenValidator:      tokenValidator,
		channelRepo:         channelRepo,
		postRepo:            postRepo,
		userChannelRepo:     userChannelRepo,
		readTrackerService:  readTrackerService,
		presenceService:     presenceService,
		postsWatcher:        postsWatcher,
		channelsWatcher:     channelsWatcher,
		userChannelsWatcher: userChannelsWatcher,
	}
}

// authenticate, query'deki token'ı doğrular ve user id döner.
//
// Neden normal auth middleware kullanmıyoruz?
// WebSocket bağlantısında HTTP header göndermek zordur (tarayıcı sınırlaması).
// Bu yüzden token URL query parameter'ı olarak gönderilir:
//
//	ws://server/ws/heartbeat?token=JWT_TOKEN
//
// Hata durumunda HTTP yanıtı buradan yazılır — upgrade henüz yapılmadığı
// için normal JSON envelope kullanılabilir.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	token := r.URL.Query().Get("token")
	if token == "" {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "missing token")
		return primitive.NilObjectID, false
	}

	claims, err := h.tokenValidator.ValidateAccessToken(token)
	if err != nil {
		pkg.Error(w, err)
		return primitive.NilObjectID, false
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid token subject")
		return primitive.NilObjectID, false
	}

	return userID, true
}

// HandleChannelPosts, tek bir kanalın post akışını stream eder.
//
// GET /ws/channels/{id}/posts?token=JWT
//
// Flow:
// 1. Token doğrula, kanal görünürlüğünü kontrol et (upgrade ÖNCESİ —
//    görünmez kanal için bağlantı hiç kurulmaz)
// 2. posts koleksiyonunda kanala filtreli change feed aç
// 3. Upgrade, ilk post sayfasını push et
// 4. Döngü: feed bildirimi → policy'yi YENİDEN kontrol et → postu DB'den
//    YENİDEN oku → push. scroll_top → bir sonraki (daha eski) sayfayı push.
//
// Delete bildirimlerinde elimizde sadece id vardır; tombstone YALNIZCA bu
// bağlantının daha önce servis ettiği id'ler için gönderilir. Hiç
// gösterilmemiş bir postun silinmesi bu bağlantı için görünmezdir — böylece
// private kanalların silinen postları bile dışarı id sızdırmaz.
func (h *Handler) HandleChannelPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	channelID, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusUnprocessableEntity, "invalid channel id")
		return
	}

	ctx := r.Context()

	channel, err := h.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	link, err := h.userChannelRepo.GetLink(ctx, userID, channelID)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	if !services.CanViewChannel(userID, channel, link) {
		pkg.ErrorWithMessage(w, http.StatusForbidden, "channel is not visible to you")
		return
	}

	// Kanala filtreli feed: insert/update'ler channel_id ile eşleşir.
	// Delete'lerde fullDocument olmadığı için HEPSİ geçer — served set'i
	// ile client tarafında elenir.
	filter := mongo.Pipeline{bson.D{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "fullDocument.channel_id", Value: channelID}},
		bson.D{{Key: "operationType", Value: "delete"}},
	}}}}}}

	feed, err := h.postsWatcher.Watch(ctx, filter)
	if err != nil {
		log.Printf("[ws] failed to open post feed for channel %s: %v", channelID.Hex(), err)
		pkg.Error(w, pkg.ErrInternal)
		return
	}
	defer feed.Close(context.Background())

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for user %s: %v", userID.Hex(), err)
		return
	}

	conn := NewLiveConnection(wsConn, userID.Hex())
	defer conn.Close()

	// served: bu bağlantıya gövdesi gönderilmiş post id'leri.
	served := make(map[primitive.ObjectID]struct{})

	posts, err := h.postRepo.ListByChannel(ctx, channelID, 0, pageSize)
	if err != nil {
		log.Printf("[ws] snapshot failed for channel %s: %v", channelID.Hex(), err)
		return
	}
	if err := conn.Push(dataFrame(posts)); err != nil {
		return
	}
	for _, p := range posts {
		served[p.ID] = struct{}{}
	}
	nextPage := int64(1)

	conn.SetState(StateStreaming)
	notifications, feedErr := pumpFeed(ctx, feed)

	for {
		select {
		case <-conn.Closed():
			return

		case cmd := <-conn.Inbound():
			if cmd.Op != OpScrollTop {
				continue
			}
			older, err := h.postRepo.ListByChannel(ctx, channelID, nextPage*pageSize, pageSize)
			if err != nil {
				log.Printf("[ws] scroll_top page failed for channel %s: %v", channelID.Hex(), err)
				continue
			}
			if err := conn.Push(dataFrame(older)); err != nil {
				return
			}
			for _, p := range older {
				served[p.ID] = struct{}{}
			}
			if len(older) > 0 {
				nextPage++
			}

		case n, open := <-notifications:
			if !open {
				err := <-feedErr
				if !errors.Is(err, repository.ErrFeedClosed) && !errors.Is(err, context.Canceled) {
					log.Printf("[ws] post feed error for channel %s: %v", channelID.Hex(), err)
					conn.Push(errorFrame("live feed interrupted, reconnect"))
				}
				return
			}

			// Yavaş client: buffer birikti, deltalar yerine taze snapshot.
			if len(notifications) >= coalesceThreshold {
				drainNotifications(notifications)
				fresh, err := h.postRepo.ListByChannel(ctx, channelID, 0, pageSize)
				if err != nil {
					log.Printf("[ws] coalesce snapshot failed for channel %s: %v", channelID.Hex(), err)
					continue
				}
				if err := conn.Push(dataFrame(fresh)); err != nil {
					return
				}
				for _, p := range fresh {
					served[p.ID] = struct{}{}
				}
				continue
			}

			if err := h.pushPostChange(ctx, conn, userID, channelID, n, served); err != nil {
				return
			}
		}
	}
}

// pushPostChange, tek bir post bildirimi için policy'yi yeniden değerlendirir
// ve uygunsa frame push eder. Dönen hata bağlantıyı sonlandırır; transient
// storage hataları loglanıp yutulur (o cycle atlanır).
func (h *Handler) pushPostChange(
	ctx context.Context,
	conn *LiveConnection,
	userID, channelID primitive.ObjectID,
	n *repository.ChangeNotification,
	served map[primitive.ObjectID]struct{},
) error {
	if n.Op == repository.ChangeOpDelete {
		if _, wasServed := served[n.DocumentID]; !wasServed {
			return nil
		}
		delete(served, n.DocumentID)
		id := n.DocumentID
		return conn.Push(dataFrame(PostChangeFrame{OperationType: repository.ChangeOpDelete, PostID: &id}))
	}

	// Görünürlük her bildirimde taze veriyle yeniden değerlendirilir —
	// kanal bu arada private'a dönmüş veya abonelik silinmiş olabilir.
	channel, err := h.channelRepo.GetByID(ctx, channelID)
	if errors.Is(err, pkg.ErrNotFound) {
		// Kanal silinmiş — stream'in konusu kalmadı.
		conn.Push(errorFrame("channel no longer exists"))
		return errors.New("channel deleted")
	}
	if err != nil {
		log.Printf("[ws] policy re-check failed for channel %s: %v", channelID.Hex(), err)
		return nil
	}
	link, err := h.userChannelRepo.GetLink(ctx, userID, channelID)
	if err != nil {
		log.Printf("[ws] link re-check failed for channel %s: %v", channelID.Hex(), err)
		return nil
	}
	if !services.CanViewChannel(userID, channel, link) {
		return nil
	}

	post, err := h.postRepo.GetByID(ctx, n.DocumentID)
	if errors.Is(err, pkg.ErrNotFound) {
		// Bildirim ile okuma arasında silinmiş — delete bildirimi ayrıca gelecek.
		return nil
	}
	if err != nil {
		log.Printf("[ws] post re-read failed for %s: %v", n.DocumentID.Hex(), err)
		return nil
	}
	if post.ChannelID != channelID {
		return nil
	}

	if err := conn.Push(dataFrame(PostChangeFrame{OperationType: n.Op, Post: post})); err != nil {
		return err
	}
	served[post.ID] = struct{}{}
	return nil
}

// HandleUserChannels, kullanıcının kanal setini (sahip olunan + abone
// olunan) unread sayılarıyla birlikte stream eder.
//
// GET /ws/users/me/channels?token=JWT
//
// Diff YOKTUR: ilgili üç koleksiyondan herhangi birinde değişiklik olunca
// set KOMPLE yeniden türetilip push edilir. Üyelik ve unread değişimlerinin
// listeye etkisi join gerektirdiği için tekil bildirimden ucuza
// çıkarılamaz — yeniden türetme hem basit hem her zaman doğrudur.
func (h *Handler) HandleUserChannels(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	ctx := r.Context()

	// user_channels feed'i kullanıcıya filtreli; channels ve posts
	// feed'leri filtresiz — hangi kanalın değişiminin bu kullanıcıyı
	// etkileyeceği server-side bilinemez.
	userFilter := mongo.Pipeline{bson.D{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "fullDocument.user_id", Value: userID}},
		bson.D{{Key: "operationType", Value: "delete"}},
	}}}}}}

	linkFeed, err := h.userChannelsWatcher.Watch(ctx, userFilter)
	if err != nil {
		log.Printf("[ws] failed to open user_channels feed for user %s: %v", userID.Hex(), err)
		pkg.Error(w, pkg.ErrInternal)
		return
	}
	defer linkFeed.Close(context.Background())

	channelFeed, err := h.channelsWatcher.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		log.Printf("[ws] failed to open channels feed for user %s: %v", userID.Hex(), err)
		pkg.Error(w, pkg.ErrInternal)
		return
	}
	defer channelFeed.Close(context.Background())

	postFeed, err := h.postsWatcher.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		log.Printf("[ws] failed to open posts feed for user %s: %v", userID.Hex(), err)
		pkg.Error(w, pkg.ErrInternal)
		return
	}
	defer postFeed.Close(context.Background())

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for user %s: %v", userID.Hex(), err)
		return
	}

	conn := NewLiveConnection(wsConn, userID.Hex())
	defer conn.Close()

	if err := h.pushChannelSet(ctx, conn, userID); err != nil {
		return
	}

	conn.SetState(StateStreaming)
	linkNotifs, linkErr := pumpFeed(ctx, linkFeed)
	channelNotifs, channelErr := pumpFeed(ctx, channelFeed)
	postNotifs, postErr := pumpFeed(ctx, postFeed)

	for {
		var open bool
		select {
		case <-conn.Closed():
			return
		case <-conn.Inbound():
			// Bu endpoint inbound komut tanımaz.
			continue
		case _, open = <-linkNotifs:
			if !open {
				logFeedError("user_channels", userID, <-linkErr)
				return
			}
		case _, open = <-channelNotifs:
			if !open {
				logFeedError("channels", userID, <-channelErr)
				return
			}
		case _, open = <-postNotifs:
			if !open {
				logFeedError("posts", userID, <-postErr)
				return
			}
		}

		// Coalesce: bekleyen tüm bildirimler tek yeniden türetmeye katlanır.
		drainNotifications(linkNotifs)
		drainNotifications(channelNotifs)
		drainNotifications(postNotifs)

		if err := h.pushChannelSet(ctx, conn, userID); err != nil {
			return
		}
	}
}

// pushChannelSet, kullanıcının kanal setini türetip push eder.
// Transient storage hataları loglanır ve cycle atlanır (nil döner);
// push hatası bağlantıyı sonlandırır.
func (h *Handler) pushChannelSet(ctx context.Context, conn *LiveConnection, userID primitive.ObjectID) error {
	links, err := h.userChannelRepo.ListByUser(ctx, userID)
	if err != nil {
		log.Printf("[ws] failed to list links for user %s: %v", userID.Hex(), err)
		return nil
	}

	counts, err := h.readTrackerService.BulkUnreadCounts(ctx, userID)
	if err != nil {
		log.Printf("[ws] failed to load unread counts for user %s: %v", userID.Hex(), err)
		return nil
	}

	subscriptions := make([]models.ChannelSubscription, 0, len(links))
	for _, link := range links {
		channel, err := h.channelRepo.GetByID(ctx, link.ChannelID)
		if errors.Is(err, pkg.ErrNotFound) {
			// Kanal silinmiş ama link henüz temizlenmemiş — listeye girmez.
			continue
		}
		if err != nil {
			log.Printf("[ws] failed to load channel %s: %v", link.ChannelID.Hex(), err)
			return nil
		}

		subscriptions = append(subscriptions, models.ChannelSubscription{
			Channel:      *channel,
			IsOwner:      link.IsOwner,
			SubscribedAt: link.SubscribedAt,
			UnreadCount:  counts[link.ChannelID],
		})
	}

	return conn.Push(dataFrame(subscriptions))
}

// HandleMyPostUpdates, kullanıcının yazdığı postların kanal bağımsız
// akışını stream eder.
//
// GET /ws/users/me/updates?token=JWT
func (h *Handler) HandleMyPostUpdates(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	ctx := r.Context()

	filter := mongo.Pipeline{bson.D{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "fullDocument.author.id", Value: userID}},
		bson.D{{Key: "operationType", Value: "delete"}},
	}}}}}}

	feed, err := h.postsWatcher.Watch(ctx, filter)
	if err != nil {
		log.Printf("[ws] failed to open author feed for user %s: %v", userID.Hex(), err)
		pkg.Error(w, pkg.ErrInternal)
		return
	}
	defer feed.Close(context.Background())

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for user %s: %v", userID.Hex(), err)
		return
	}

	conn := NewLiveConnection(wsConn, userID.Hex())
	defer conn.Close()

	served := make(map[primitive.ObjectID]struct{})

	posts, err := h.postRepo.ListByAuthor(ctx, userID, pageSize)
	if err != nil {
		log.Printf("[ws] author snapshot failed for user %s: %v", userID.Hex(), err)
		return
	}
	if err := conn.Push(dataFrame(posts)); err != nil {
		return
	}
	for _, p := range posts {
		served[p.ID] = struct{}{}
	}

	conn.SetState(StateStreaming)
	notifications, feedErr := pumpFeed(ctx, feed)

	for {
		select {
		case <-conn.Closed():
			return
		case <-conn.Inbound():
			continue

		case n, open := <-notifications:
			if !open {
				logFeedError("posts", userID, <-feedErr)
				return
			}

			if n.Op == repository.ChangeOpDelete {
				if _, wasServed := served[n.DocumentID]; !wasServed {
					continue
				}
				delete(served, n.DocumentID)
				id := n.DocumentID
				if err := conn.Push(dataFrame(PostChangeFrame{OperationType: repository.ChangeOpDelete, PostID: &id})); err != nil {
					return
				}
				continue
			}

			post, err := h.postRepo.GetByID(ctx, n.DocumentID)
			if errors.Is(err, pkg.ErrNotFound) {
				continue
			}
			if err != nil {
				log.Printf("[ws] post re-read failed for %s: %v", n.DocumentID.Hex(), err)
				continue
			}
			// Filtre best-effort'tur — sahiplik burada yeniden doğrulanır.
			if post.Author.ID != userID {
				continue
			}

			if err := conn.Push(dataFrame(PostChangeFrame{OperationType: n.Op, Post: post})); err != nil {
				return
			}
			served[post.ID] = struct{}{}
		}
	}
}

// HandleHeartbeat, presence takibi için echo bağlantısı.
//
// GET /ws/heartbeat?token=JWT
//
// Bağlantı kurulunca kullanıcı online, kopunca offline işaretlenir.
// Gelen her frame olduğu gibi geri yazılır — client gidiş-dönüş süresini
// ölçebilir. İçerik push'u yoktur.
func (h *Handler) HandleHeartbeat(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for user %s: %v", userID.Hex(), err)
		return
	}
	defer conn.Close()

	if err := h.presenceService.MarkOnline(r.Context(), userID); err != nil {
		log.Printf("[ws] failed to mark user %s online: %v", userID.Hex(), err)
	}
	defer func() {
		// Request context'i bağlantı kopunca iptal olur — offline yazısı
		// kendi context'iyle yapılır, yoksa hiç yazılamaz.
		ctx, cancel := context.WithTimeout(context.Background(), presenceWriteTimeout)
		defer cancel()
		if err := h.presenceService.MarkOffline(ctx, userID); err != nil {
			log.Printf("[ws] failed to mark user %s offline: %v", userID.Hex(), err)
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := conn.WriteMessage(messageType, payload); err != nil {
			return
		}
	}
}

// drainNotifications, channel'da o an bekleyen tüm bildirimleri atar.
func drainNotifications(ch <-chan *repository.ChangeNotification) {
	for {
		select {
		case _, open := <-ch:
			if !open {
				return
			}
		default:
			return
		}
	}
}

// logFeedError, feed kapanışını loglar. Normal kapanışlar (ErrFeedClosed,
// context iptali) sessizce geçilir.
func logFeedError(collection string, userID primitive.ObjectID, err error) {
	if errors.Is(err, repository.ErrFeedClosed) || errors.Is(err, context.Canceled) {
		return
	}
	log.Printf("[ws] %s feed error for user %s: %v", collection, userID.Hex(), err)
}
