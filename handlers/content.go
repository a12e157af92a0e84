package handlers

import (
	"net/http"

	"github.com/akinalp/merume/pkg"
	"github.com/akinalp/merume/services"
)

// ContentHandler, içerik keşfi (öneri + trend) endpoint'lerini yöneten struct.
type ContentHandler struct {
	rankingService services.RankingService
}

// NewContentHandler, constructor.
func NewContentHandler(rankingService services.RankingService) *ContentHandler {
	return &ContentHandler{rankingService: rankingService}
}

// Recommendations godoc
// GET /api/content/recommendations?page=0&limit=20
// Kullanıcının tercihlerine göre kişiselleştirilmiş kanal önerileri döner.
// Kullanıcının hiç tercihi yoksa 404 + açıklayıcı mesaj döner —
// boş liste DEĞİL, client iki durumu ayırt edebilmeli.
func (h *ContentHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	pagination, err := pkg.ParsePagination(r)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	channels, err := h.rankingService.Recommend(r.Context(), identity.UserID, pagination)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, channels)
}

// Trendings godoc
// GET /api/content/trendings?page=0&limit=20
// Tercih ve okuma filtresi olmadan trend skoruna göre sıralı kanalları döner.
func (h *ContentHandler) Trendings(w http.ResponseWriter, r *http.Request) {
	pagination, err := pkg.ParsePagination(r)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	channels, err := h.rankingService.Trending(r.Context(), pagination)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, channels)
}
