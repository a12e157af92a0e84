package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akinalp/merume/models"
	"github.com/akinalp/merume/pkg"
	"github.com/akinalp/merume/repository"
)

// PostService, postun tek seferlik düzenleme akışını yönetir.
type PostService interface {
	Update(ctx context.Context, userID, postID primitive.ObjectID, req models.UpdatePostRequest) (*models.Post, error)
}

type postService struct {
	postRepo repository.PostRepository
}

// NewPostService, constructor — interface döner.
func NewPostService(postRepo repository.PostRepository) PostService {
	return &postService{postRepo: postRepo}
}

// Update, postu düzenler ve edit ratchet'ini kilitler.
//
// Ratchet tek yönlüdür: ilk başarılı düzenleme Editable → Locked geçişini
// yapar, sonraki her deneme ErrConflict ile düşer. Post handler açısından
// bundan sonra yapısal olarak immutable'dır.
func (s *postService) Update(ctx context.Context, userID, postID primitive.ObjectID, req models.UpdatePostRequest) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !CanMutatePost(userID, post) {
		return nil, fmt.Errorf("%w: only the author can edit a post", pkg.ErrForbidden)
	}
	if post.EditState == models.PostLocked {
		return nil, fmt.Errorf("%w: post has already been edited once", pkg.ErrConflict)
	}

	post.Body = req.Body
	post.Images = req.Images
	post.EditState = models.PostLocked
	post.UpdatedAt = time.Now().UTC()

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}
