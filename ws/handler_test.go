package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/akinalp/merume/models"
	"github.com/akinalp/merume/pkg"
	"github.com/akinalp/merume/repository"
)

// ─── Fake'ler ───

// fakeValidator, verilen user id'yi her token için döner.
type fakeValidator struct {
	userID primitive.ObjectID
}

func (v *fakeValidator) ValidateAccessToken(_ string) (*models.TokenClaims, error) {
	return &models.TokenClaims{UserID: v.userID.Hex(), Nickname: "test", Username: "test"}, nil
}

// fakeFeed, bildirimleri testin kontrol ettiği bir channel'dan servis eder.
type fakeFeed struct {
	notifications chan *repository.ChangeNotification

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{
		notifications: make(chan *repository.ChangeNotification, 16),
		done:          make(chan struct{}),
	}
}

func (f *fakeFeed) Next(ctx context.Context) (*repository.ChangeNotification, error) {
	select {
	case n := <-f.notifications:
		return n, nil
	case <-f.done:
		return nil, repository.ErrFeedClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeFeed) Close(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.done)
	}
	return nil
}

func (f *fakeFeed) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeFeed) emit(op repository.ChangeOp, id primitive.ObjectID) {
	f.notifications <- &repository.ChangeNotification{Op: op, DocumentID: id}
}

// fakeWatcher, her Watch çağrısında aynı feed'i döner.
type fakeWatcher struct {
	feed *fakeFeed
}

func (w *fakeWatcher) Watch(_ context.Context, _ mongo.Pipeline) (repository.ChangeFeed, error) {
	return w.feed, nil
}

type fakeChannelRepo struct {
	mu       sync.Mutex
	channels map[primitive.ObjectID]models.Channel
}

func newFakeChannelRepo(channels ...models.Channel) *fakeChannelRepo {
	r := &fakeChannelRepo{channels: make(map[primitive.ObjectID]models.Channel)}
	for _, ch := range channels {
		r.channels[ch.ID] = ch
	}
	return r
}

func (r *fakeChannelRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[id]
	if !ok {
		return nil, fmt.Errorf("%w: channel", pkg.ErrNotFound)
	}
	return &ch, nil
}

func (r *fakeChannelRepo) ListAll(_ context.Context) ([]models.Channel, error) {
	return nil, nil
}

func (r *fakeChannelRepo) ListByCategories(_ context.Context, _ []string) ([]models.Channel, error) {
	return nil, nil
}

func (r *fakeChannelRepo) IncrementFollowers(_ context.Context, _ primitive.ObjectID, _ int64) error {
	return nil
}

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]models.Post
}

func newFakePostRepo(posts ...models.Post) *fakePostRepo {
	r := &fakePostRepo{posts: make(map[primitive.ObjectID]models.Post)}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *fakePostRepo) add(p models.Post) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[p.ID] = p
}

func (r *fakePostRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("%w: post", pkg.ErrNotFound)
	}
	return &p, nil
}

func (r *fakePostRepo) ListByChannel(_ context.Context, channelID primitive.ObjectID, skip, limit int64) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []models.Post{}
	for _, p := range r.posts {
		if p.ChannelID == channelID {
			result = append(result, p)
		}
	}
	if skip >= int64(len(result)) {
		return []models.Post{}, nil
	}
	end := skip + limit
	if end > int64(len(result)) {
		end = int64(len(result))
	}
	return result[skip:end], nil
}

func (r *fakePostRepo) ListByAuthor(_ context.Context, authorID primitive.ObjectID, _ int64) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []models.Post{}
	for _, p := range r.posts {
		if p.Author.ID == authorID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *fakePostRepo) LatestPerChannel(_ context.Context, _ []primitive.ObjectID) (map[primitive.ObjectID]models.Post, error) {
	return nil, nil
}

func (r *fakePostRepo) CountByChannel(_ context.Context, _ primitive.ObjectID) (int64, error) {
	return 0, nil
}

func (r *fakePostRepo) CountNewerThan(_ context.Context, _ primitive.ObjectID, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *fakePostRepo) Update(_ context.Context, _ *models.Post) error { return nil }

type fakeUserChannelRepo struct {
	mu           sync.Mutex
	links        []models.UserChannel
	getLinkCalls int
}

func newFakeUserChannelRepo(links ...models.UserChannel) *fakeUserChannelRepo {
	return &fakeUserChannelRepo{links: links}
}

func (r *fakeUserChannelRepo) add(link models.UserChannel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links = append(r.links, link)
}

func (r *fakeUserChannelRepo) GetLink(_ context.Context, userID, channelID primitive.ObjectID) (*models.UserChannel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getLinkCalls++
	for _, link := range r.links {
		if link.UserID == userID && link.ChannelID == channelID {
			l := link
			return &l, nil
		}
	}
	return nil, nil
}

func (r *fakeUserChannelRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.UserChannel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []models.UserChannel{}
	for _, link := range r.links {
		if link.UserID == userID {
			result = append(result, link)
		}
	}
	return result, nil
}

func (r *fakeUserChannelRepo) Insert(_ context.Context, link *models.UserChannel) error {
	r.add(*link)
	return nil
}

func (r *fakeUserChannelRepo) linkLookups() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLinkCalls
}

func (r *fakeUserChannelRepo) Delete(_ context.Context, _, _ primitive.ObjectID) error {
	return nil
}

// fakeReadTrackerService, sabit unread sayıları döner.
type fakeReadTrackerService struct {
	counts map[primitive.ObjectID]int64
}

func (s *fakeReadTrackerService) Get(_ context.Context, _, _ primitive.ObjectID) (*models.ReadTracker, error) {
	return nil, pkg.ErrNotFound
}

func (s *fakeReadTrackerService) UpsertCursor(_ context.Context, _, _, _ primitive.ObjectID) error {
	return nil
}

func (s *fakeReadTrackerService) UnreadCount(_ context.Context, _, _ primitive.ObjectID) (int64, error) {
	return 0, nil
}

func (s *fakeReadTrackerService) BulkUnreadCounts(_ context.Context, _ primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	if s.counts == nil {
		return map[primitive.ObjectID]int64{}, nil
	}
	return s.counts, nil
}

func (s *fakeReadTrackerService) MarkRead(_ context.Context, _ primitive.ObjectID, _ []primitive.ObjectID) error {
	return nil
}

// fakePresenceService, online/offline çağrılarını kaydeder.
type fakePresenceService struct {
	mu      sync.Mutex
	online  []primitive.ObjectID
	offline []primitive.ObjectID
}

func (s *fakePresenceService) MarkOnline(_ context.Context, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.online = append(s.online, userID)
	return nil
}

func (s *fakePresenceService) MarkOffline(_ context.Context, userID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offline = append(s.offline, userID)
	return nil
}

func (s *fakePresenceService) onlineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.online)
}

func (s *fakePresenceService) offlineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.offline)
}

// ─── Test yardımcıları ───

type testEnv struct {
	handler  *Handler
	server   *httptest.Server
	postFeed *fakeFeed
	linkFeed *fakeFeed
	chanFeed *fakeFeed
	posts    *fakePostRepo
	links    *fakeUserChannelRepo
	presence *fakePresenceService
}

func newTestEnv(t *testing.T, userID primitive.ObjectID, channels *fakeChannelRepo, posts *fakePostRepo, links *fakeUserChannelRepo) *testEnv {
	t.Helper()

	env := &testEnv{
		postFeed: newFakeFeed(),
		linkFeed: newFakeFeed(),
		chanFeed: newFakeFeed(),
		posts:    posts,
		links:    links,
		presence: &fakePresenceService{},
	}

	env.handler = NewHandler(
		&fakeValidator{userID: userID},
		channels,
		posts,
		links,
		&fakeReadTrackerService{},
		env.presence,
		&fakeWatcher{feed: env.postFeed},
		&fakeWatcher{feed: env.chanFeed},
		&fakeWatcher{feed: env.linkFeed},
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/channels/{id}/posts", env.handler.HandleChannelPosts)
	mux.HandleFunc("GET /ws/users/me/channels", env.handler.HandleUserChannels)
	mux.HandleFunc("GET /ws/users/me/updates", env.handler.HandleMyPostUpdates)
	mux.HandleFunc("GET /ws/heartbeat", env.handler.HandleHeartbeat)

	env.server = httptest.NewServer(mux)
	t.Cleanup(env.server.Close)

	return env
}

func (env *testEnv) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + path + "?token=test-token"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readFrame, bağlantıdan bir frame okur (timeout'lu).
func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var frame Frame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

// decodeData, frame data'sını verilen hedefe çözer.
func decodeData(t *testing.T, frame Frame, target any) {
	t.Helper()
	raw, err := json.Marshal(frame.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, target))
}

func publicChannel(owner primitive.ObjectID) models.Channel {
	return models.Channel{
		ID:         primitive.NewObjectID(),
		Author:     models.Author{ID: owner},
		Name:       "public",
		Visibility: models.VisibilityPublic,
	}
}

func channelPost(author, channelID primitive.ObjectID) models.Post {
	return models.Post{
		ID:        primitive.NewObjectID(),
		Author:    models.Author{ID: author},
		ChannelID: channelID,
		Body:      "hello",
		EditState: models.PostEditable,
		CreatedAt: time.Now().UTC(),
	}
}

// ─── Testler ───

func TestChannelPosts_SnapshotThenInsertPush(t *testing.T) {
	userID := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	channel := publicChannel(owner)
	existing := channelPost(owner, channel.ID)

	posts := newFakePostRepo(existing)
	env := newTestEnv(t, userID, newFakeChannelRepo(channel), posts, newFakeUserChannelRepo())

	conn := env.dial(t, "/ws/channels/"+channel.ID.Hex()+"/posts")

	// 1. Snapshot: mevcut postlar.
	snapshot := readFrame(t, conn)
	assert.True(t, snapshot.Success)
	var snapshotPosts []models.Post
	decodeData(t, snapshot, &snapshotPosts)
	require.Len(t, snapshotPosts, 1)
	assert.Equal(t, existing.ID, snapshotPosts[0].ID)

	// 2. Yeni post yazılır, feed bildirimi gelir → unit push.
	inserted := channelPost(owner, channel.ID)
	posts.add(inserted)
	env.postFeed.emit(repository.ChangeOpInsert, inserted.ID)

	frame := readFrame(t, conn)
	assert.True(t, frame.Success)
	var change PostChangeFrame
	decodeData(t, frame, &change)
	assert.Equal(t, repository.ChangeOpInsert, change.OperationType)
	require.NotNil(t, change.Post)
	assert.Equal(t, inserted.ID, change.Post.ID)
	assert.Nil(t, change.PostID)
}

func TestChannelPosts_DeleteProducesTombstoneOnlyForServedPosts(t *testing.T) {
	userID := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	channel := publicChannel(owner)
	served := channelPost(owner, channel.ID)

	posts := newFakePostRepo(served)
	env := newTestEnv(t, userID, newFakeChannelRepo(channel), posts, newFakeUserChannelRepo())

	conn := env.dial(t, "/ws/channels/"+channel.ID.Hex()+"/posts")
	readFrame(t, conn) // snapshot

	// Hiç servis edilmemiş bir postun delete'i frame ÜRETMEMELİ —
	// ardından gelen servis edilmiş postun tombstone'u ilk frame olmalı.
	neverServed := primitive.NewObjectID()
	env.postFeed.emit(repository.ChangeOpDelete, neverServed)
	env.postFeed.emit(repository.ChangeOpDelete, served.ID)

	frame := readFrame(t, conn)
	assert.True(t, frame.Success)
	var change PostChangeFrame
	decodeData(t, frame, &change)
	assert.Equal(t, repository.ChangeOpDelete, change.OperationType)
	// Tombstone sadece id taşır — gövde asla yeniden servis edilmez.
	assert.Nil(t, change.Post)
	require.NotNil(t, change.PostID)
	assert.Equal(t, served.ID, *change.PostID)
}

func TestChannelPosts_PrivateChannelRejectsStranger(t *testing.T) {
	userID := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	channel := publicChannel(owner)
	channel.Visibility = models.VisibilityPrivate

	env := newTestEnv(t, userID, newFakeChannelRepo(channel), newFakePostRepo(), newFakeUserChannelRepo())

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws/channels/" + channel.ID.Hex() + "/posts?token=test-token"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestChannelPosts_PrivateGatingSuppressesPushAfterUnsubscribe(t *testing.T) {
	userID := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	channel := publicChannel(owner)
	channel.Visibility = models.VisibilityPrivate

	now := time.Now().UTC()
	links := newFakeUserChannelRepo(models.UserChannel{
		UserID:       userID,
		ChannelID:    channel.ID,
		SubscribedAt: &now,
	})

	channels := newFakeChannelRepo(channel)
	posts := newFakePostRepo()
	env := newTestEnv(t, userID, channels, posts, links)

	conn := env.dial(t, "/ws/channels/"+channel.ID.Hex()+"/posts")
	readFrame(t, conn) // snapshot (boş)

	// Abonelik düşer — sonraki insert bildirimi push ÜRETMEMELİ.
	links.mu.Lock()
	links.links = nil
	links.mu.Unlock()

	hidden := channelPost(owner, channel.ID)
	posts.add(hidden)

	// Bildirimin aboneliksiz durumda işlendiğinden emin ol: handler her
	// insert'te GetLink çağırır, sayaç artana kadar bekle.
	baseline := links.linkLookups()
	env.postFeed.emit(repository.ChangeOpInsert, hidden.ID)
	require.Eventually(t, func() bool { return links.linkLookups() > baseline },
		3*time.Second, 10*time.Millisecond)

	// Abonelik geri gelir — bu push artık GÖRÜNMELİ. İlk okunan frame
	// hidden değil visible olmalı: aradaki bildirim bastırılmış demektir.
	links.add(models.UserChannel{UserID: userID, ChannelID: channel.ID, SubscribedAt: &now})

	visible := channelPost(owner, channel.ID)
	posts.add(visible)
	env.postFeed.emit(repository.ChangeOpInsert, visible.ID)

	frame := readFrame(t, conn)
	var change PostChangeFrame
	decodeData(t, frame, &change)
	require.NotNil(t, change.Post)
	assert.Equal(t, visible.ID, change.Post.ID)
}

func TestChannelPosts_DisconnectReleasesFeed(t *testing.T) {
	userID := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	channel := publicChannel(owner)

	env := newTestEnv(t, userID, newFakeChannelRepo(channel), newFakePostRepo(), newFakeUserChannelRepo())

	conn := env.dial(t, "/ws/channels/"+channel.ID.Hex()+"/posts")
	readFrame(t, conn) // snapshot

	// Client bağlantıyı koparır — handler feed beklemesinden çıkıp
	// feed handle'ını kapatmalı.
	conn.Close()

	assert.Eventually(t, env.postFeed.isClosed, 3*time.Second, 10*time.Millisecond,
		"disconnect sonrası feed kapatılmalı")
}

func TestUserChannels_ReDerivesOnLinkChange(t *testing.T) {
	userID := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	first := publicChannel(owner)

	now := time.Now().UTC()
	links := newFakeUserChannelRepo(models.UserChannel{
		UserID:       userID,
		ChannelID:    first.ID,
		SubscribedAt: &now,
	})

	second := publicChannel(owner)
	channels := newFakeChannelRepo(first, second)

	env := newTestEnv(t, userID, channels, newFakePostRepo(), links)

	conn := env.dial(t, "/ws/users/me/channels")

	snapshot := readFrame(t, conn)
	var set []models.ChannelSubscription
	decodeData(t, snapshot, &set)
	require.Len(t, set, 1)
	assert.Equal(t, first.ID, set[0].Channel.ID)

	// Yeni abonelik — link feed bildirimi tam seti yeniden türetir.
	links.add(models.UserChannel{UserID: userID, ChannelID: second.ID, SubscribedAt: &now})
	env.linkFeed.emit(repository.ChangeOpInsert, primitive.NewObjectID())

	frame := readFrame(t, conn)
	var updated []models.ChannelSubscription
	decodeData(t, frame, &updated)
	assert.Len(t, updated, 2)
}

func TestMyPostUpdates_PushesOwnPostsOnly(t *testing.T) {
	userID := primitive.NewObjectID()
	other := primitive.NewObjectID()
	channel := publicChannel(other)

	posts := newFakePostRepo()
	env := newTestEnv(t, userID, newFakeChannelRepo(channel), posts, newFakeUserChannelRepo())

	conn := env.dial(t, "/ws/users/me/updates")
	readFrame(t, conn) // snapshot (boş)

	// Başkasının postu filtreyi geçse bile push edilmemeli.
	foreign := channelPost(other, channel.ID)
	posts.add(foreign)
	env.postFeed.emit(repository.ChangeOpInsert, foreign.ID)

	mine := channelPost(userID, channel.ID)
	posts.add(mine)
	env.postFeed.emit(repository.ChangeOpInsert, mine.ID)

	frame := readFrame(t, conn)
	var change PostChangeFrame
	decodeData(t, frame, &change)
	require.NotNil(t, change.Post)
	assert.Equal(t, mine.ID, change.Post.ID)
}

func TestHeartbeat_MarksOnlineAndOffline(t *testing.T) {
	userID := primitive.NewObjectID()
	env := newTestEnv(t, userID, newFakeChannelRepo(), newFakePostRepo(), newFakeUserChannelRepo())

	conn := env.dial(t, "/ws/heartbeat")

	assert.Eventually(t, func() bool { return env.presence.onlineCount() == 1 },
		3*time.Second, 10*time.Millisecond, "bağlanınca online yazılmalı")

	// Echo: gönderilen frame aynen geri gelmeli.
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "ping", string(payload))

	conn.Close()

	assert.Eventually(t, func() bool { return env.presence.offlineCount() == 1 },
		3*time.Second, 10*time.Millisecond, "kopunca offline yazılmalı")
}
