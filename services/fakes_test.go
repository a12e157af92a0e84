package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akinalp/merume/models"
	"github.com/akinalp/merume/pkg"
)

// Bu dosya service testlerinin paylaştığı in-memory fake repository'leri
// içerir. Fake'ler mongo implementasyonlarıyla aynı kontratı uygular:
// GetLink yoklukta (nil, nil), GetByID yoklukta ErrNotFound, Insert
// duplicate'te ErrConflict.

type fakeChannelRepo struct {
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
	ch, ok := r.channels[id]
	if !ok {
		return nil, fmt.Errorf("%w: channel", pkg.ErrNotFound)
	}
	return &ch, nil
}

func (r *fakeChannelRepo) ListAll(_ context.Context) ([]models.Channel, error) {
	return r.sorted(), nil
}

func (r *fakeChannelRepo) ListByCategories(_ context.Context, categories []string) ([]models.Channel, error) {
	wanted := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		wanted[c] = struct{}{}
	}

	var result []models.Channel
	for _, ch := range r.sorted() {
		for _, cat := range ch.Categories {
			if _, ok := wanted[cat]; ok {
				result = append(result, ch)
				break
			}
		}
	}
	return result, nil
}

func (r *fakeChannelRepo) IncrementFollowers(_ context.Context, id primitive.ObjectID, delta int64) error {
	ch, ok := r.channels[id]
	if !ok {
		return fmt.Errorf("%w: channel", pkg.ErrNotFound)
	}
	ch.Followers.Current += delta
	r.channels[id] = ch
	return nil
}

// sorted, map iterasyonunun deterministik olmayışını testlerden saklar.
func (r *fakeChannelRepo) sorted() []models.Channel {
	result := make([]models.Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		result = append(result, ch)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID.Hex() < result[j].ID.Hex()
	})
	return result
}

type fakePostRepo struct {
	posts map[primitive.ObjectID]models.Post
}

func newFakePostRepo(posts ...models.Post) *fakePostRepo {
	r := &fakePostRepo{posts: make(map[primitive.ObjectID]models.Post)}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *fakePostRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("%w: post", pkg.ErrNotFound)
	}
	return &p, nil
}

func (r *fakePostRepo) ListByChannel(_ context.Context, channelID primitive.ObjectID, skip, limit int64) ([]models.Post, error) {
	var posts []models.Post
	for _, p := range r.posts {
		if p.ChannelID == channelID {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})

	if skip >= int64(len(posts)) {
		return []models.Post{}, nil
	}
	end := skip + limit
	if end > int64(len(posts)) {
		end = int64(len(posts))
	}
	return posts[skip:end], nil
}

func (r *fakePostRepo) ListByAuthor(_ context.Context, authorID primitive.ObjectID, limit int64) ([]models.Post, error) {
	var posts []models.Post
	for _, p := range r.posts {
		if p.Author.ID == authorID {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if int64(len(posts)) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (r *fakePostRepo) LatestPerChannel(_ context.Context, channelIDs []primitive.ObjectID) (map[primitive.ObjectID]models.Post, error) {
	latest := make(map[primitive.ObjectID]models.Post)
	for _, id := range channelIDs {
		for _, p := range r.posts {
			if p.ChannelID != id {
				continue
			}
			current, ok := latest[id]
			if !ok || p.CreatedAt.After(current.CreatedAt) {
				latest[id] = p
			}
		}
	}
	return latest, nil
}

func (r *fakePostRepo) CountByChannel(_ context.Context, channelID primitive.ObjectID) (int64, error) {
	var count int64
	for _, p := range r.posts {
		if p.ChannelID == channelID {
			count++
		}
	}
	return count, nil
}

func (r *fakePostRepo) CountNewerThan(_ context.Context, channelID primitive.ObjectID, t time.Time) (int64, error) {
	var count int64
	for _, p := range r.posts {
		if p.ChannelID == channelID && p.CreatedAt.After(t) {
			count++
		}
	}
	return count, nil
}

func (r *fakePostRepo) Update(_ context.Context, post *models.Post) error {
	if _, ok := r.posts[post.ID]; !ok {
		return fmt.Errorf("%w: post", pkg.ErrNotFound)
	}
	r.posts[post.ID] = *post
	return nil
}

type fakeUserChannelRepo struct {
	links []models.UserChannel
}

func newFakeUserChannelRepo(links ...models.UserChannel) *fakeUserChannelRepo {
	return &fakeUserChannelRepo{links: links}
}

func (r *fakeUserChannelRepo) GetLink(_ context.Context, userID, channelID primitive.ObjectID) (*models.UserChannel, error) {
	for _, link := range r.links {
		if link.UserID == userID && link.ChannelID == channelID {
			l := link
			return &l, nil
		}
	}
	return nil, nil
}

func (r *fakeUserChannelRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.UserChannel, error) {
	var result []models.UserChannel
	for _, link := range r.links {
		if link.UserID == userID {
			result = append(result, link)
		}
	}
	return result, nil
}

func (r *fakeUserChannelRepo) Insert(_ context.Context, link *models.UserChannel) error {
	for _, existing := range r.links {
		if existing.UserID == link.UserID && existing.ChannelID == link.ChannelID {
			return fmt.Errorf("%w: user is already linked to channel", pkg.ErrConflict)
		}
	}
	r.links = append(r.links, *link)
	return nil
}

func (r *fakeUserChannelRepo) Delete(_ context.Context, userID, channelID primitive.ObjectID) error {
	for i, link := range r.links {
		if link.UserID == userID && link.ChannelID == channelID {
			r.links = append(r.links[:i], r.links[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: link", pkg.ErrNotFound)
}

type trackerKey struct {
	userID    primitive.ObjectID
	channelID primitive.ObjectID
}

type fakeReadTrackerRepo struct {
	trackers map[trackerKey]models.ReadTracker
}

func newFakeReadTrackerRepo() *fakeReadTrackerRepo {
	return &fakeReadTrackerRepo{trackers: make(map[trackerKey]models.ReadTracker)}
}

func (r *fakeReadTrackerRepo) Get(_ context.Context, userID, channelID primitive.ObjectID) (*models.ReadTracker, error) {
	t, ok := r.trackers[trackerKey{userID, channelID}]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *fakeReadTrackerRepo) Upsert(_ context.Context, userID, channelID primitive.ObjectID, lastReadPostID *primitive.ObjectID) error {
	key := trackerKey{userID, channelID}
	t, ok := r.trackers[key]
	if !ok {
		t = models.ReadTracker{ID: primitive.NewObjectID(), UserID: userID, ChannelID: channelID}
	}
	t.LastReadPostID = lastReadPostID
	r.trackers[key] = t
	return nil
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]models.User

	onlineCalls  []primitive.ObjectID
	offlineCalls []primitive.ObjectID
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[primitive.ObjectID]models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user", pkg.ErrNotFound)
	}
	return &u, nil
}

func (r *fakeUserRepo) Preferences(_ context.Context, id primitive.ObjectID) ([]string, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user", pkg.ErrNotFound)
	}
	return u.Preferences, nil
}

func (r *fakeUserRepo) SetOnline(_ context.Context, id primitive.ObjectID) error {
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("%w: user", pkg.ErrNotFound)
	}
	u.IsOnline = true
	now := time.Now().UTC()
	u.LastTimeOnline = &now
	r.users[id] = u
	r.onlineCalls = append(r.onlineCalls, id)
	return nil
}

func (r *fakeUserRepo) SetOffline(_ context.Context, id primitive.ObjectID) error {
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("%w: user", pkg.ErrNotFound)
	}
	u.IsOnline = false
	now := time.Now().UTC()
	u.LastTimeOnline = &now
	r.users[id] = u
	r.offlineCalls = append(r.offlineCalls, id)
	return nil
}

// ─── Test veri kurucuları ───

func testChannel(author primitive.ObjectID, visibility models.Visibility, categories []string, twoWeek []int64) models.Channel {
	return models.Channel{
		ID:         primitive.NewObjectID(),
		Author:     models.Author{ID: author, Nickname: "author", Username: "author"},
		Name:       "test channel",
		Visibility: visibility,
		Categories: categories,
		Followers: models.Followers{
			Current:     0,
			TwoWeek:     twoWeek,
			LastUpdated: time.Now().UTC(),
		},
		CreatedAt: time.Now().UTC(),
	}
}

func testPost(author, channelID primitive.ObjectID, createdAt time.Time) models.Post {
	return models.Post{
		ID:        primitive.NewObjectID(),
		Author:    models.Author{ID: author, Nickname: "author", Username: "author"},
		ChannelID: channelID,
		Body:      "test post",
		EditState: models.PostEditable,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}
