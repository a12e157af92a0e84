package handlers

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akinalp/merume/models"
	"github.com/akinalp/merume/pkg"
	"github.com/akinalp/merume/services"
)

// PostHandler, post düzenleme ve okundu işaretleme endpoint'lerini yöneten struct.
type PostHandler struct {
	postService        services.PostService
	readTrackerService services.ReadTrackerService
}

// NewPostHandler, constructor.
func NewPostHandler(postService services.PostService, readTrackerService services.ReadTrackerService) *PostHandler {
	return &PostHandler{
		postService:        postService,
		readTrackerService: readTrackerService,
	}
}

// Update godoc
// PATCH /api/posts/{id}
// Postu düzenler. Bir post en fazla BİR kez düzenlenebilir — ikinci
// deneme 409 Conflict döner.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	postID, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusUnprocessableEntity, "invalid post id")
		return
	}

	var req models.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	post, err := h.postService.Update(r.Context(), identity.UserID, postID, req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, post)
}

// MarkRead godoc
// POST /api/posts/{id}/read
// Tek bir postu okundu işaretler — kanaldaki imleç bu posta ilerletilir
// (imleç sadece İLERİ gider, daha eski bir posta geri çekilmez).
func (h *PostHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	postID, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusUnprocessableEntity, "invalid post id")
		return
	}

	if err := h.readTrackerService.MarkRead(r.Context(), identity.UserID, []primitive.ObjectID{postID}); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "marked as read"})
}

// MarkReadBulk godoc
// POST /api/posts/read
// Birden fazla postu tek istekte okundu işaretler. Client görünüme giren
// postları biriktirip toplu gönderir — post başına bir istek yerine.
func (h *PostHandler) MarkReadBulk(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	postIDs := make([]primitive.ObjectID, 0, len(req.PostIDs))
	for _, hex := range req.PostIDs {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusUnprocessableEntity, "invalid post id: "+hex)
			return
		}
		postIDs = append(postIDs, id)
	}

	if err := h.readTrackerService.MarkRead(r.Context(), identity.UserID, postIDs); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "marked as read"})
}
