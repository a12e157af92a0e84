package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akinalp/merume/models"
	"github.com/akinalp/merume/pkg"
	"github.com/akinalp/merume/services"
)

// ReadTrackerHandler, okuma imleci endpoint'lerini yöneten struct.
type ReadTrackerHandler struct {
	readTrackerService services.ReadTrackerService
}

// NewReadTrackerHandler, constructor.
func NewReadTrackerHandler(readTrackerService services.ReadTrackerService) *ReadTrackerHandler {
	return &ReadTrackerHandler{readTrackerService: readTrackerService}
}

// Get godoc
// GET /api/channels/{id}/read-tracker
// Kullanıcının bu kanaldaki okuma imlecini döner. İmleç hiç açılmamışsa 404.
func (h *ReadTrackerHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	channelID, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusUnprocessableEntity, "invalid channel id")
		return
	}

	tracker, err := h.readTrackerService.Get(r.Context(), identity.UserID, channelID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, tracker)
}

// Update godoc
// PUT /api/channels/{id}/read-tracker
// Okuma imlecini verilen posta taşır. İmleç yoksa oluşturulur (upsert).
func (h *ReadTrackerHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	channelID, err := primitive.ObjectIDFromHex(r.PathValue("id"))
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusUnprocessableEntity, "invalid channel id")
		return
	}

	var req models.UpdateReadTrackerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	lastReadPostID, err := primitive.ObjectIDFromHex(req.LastReadPostID)
	if err != nil {
		pkg.ErrorWithMessage(w, http.StatusUnprocessableEntity, "invalid post id")
		return
	}

	if err := h.readTrackerService.UpsertCursor(r.Context(), identity.UserID, channelID, lastReadPostID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "read tracker updated"})
}

// MyUnreads godoc
// GET /api/users/me/unreads
// Kullanıcının linki olan kanallardaki okunmamış post sayılarını döner.
// Sıfır okunmamışı olan kanallar listede YER ALMAZ (sparse).
func (h *ReadTrackerHandler) MyUnreads(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	counts, err := h.readTrackerService.BulkUnreadCounts(r.Context(), identity.UserID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	// Map iterasyonu deterministik değil — response sıralaması kanal
	// id'sine göre sabitlenir.
	unreads := make([]models.UnreadInfo, 0, len(counts))
	for channelID, count := range counts {
		unreads = append(unreads, models.UnreadInfo{ChannelID: channelID, UnreadCount: count})
	}
	sort.Slice(unreads, func(i, j int) bool {
		return unreads[i].ChannelID.Hex() < unreads[j].ChannelID.Hex()
	})

	pkg.JSON(w, http.StatusOK, unreads)
}
