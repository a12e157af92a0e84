package handlers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akinalp/merume/pkg"
	"github.com/akinalp/merume/services"
)

// SubscriptionHandler, kanal abonelik endpoint'lerini yöneten struct.
type SubscriptionHandler struct {
	subscriptionService services.SubscriptionService
}

// NewSubscriptionHandler, constructor.
func NewSubscriptionHandler(subscriptionService services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// Subscribe godoc
// POST /api/channels/{id}/subscription
// Kullanıcıyı kanala abone eder. Zaten aboneyse 409, kanal private ise 403.
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
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

	link, err := h.subscriptionService.Subscribe(r.Context(), identity.UserID, channelID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, link)
}

// Unsubscribe godoc
// DELETE /api/channels/{id}/subscription
// Kullanıcının kanal aboneliğini kaldırır. Sahiplik linki kaldırılamaz.
func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
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

	if err := h.subscriptionService.Unsubscribe(r.Context(), identity.UserID, channelID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "unsubscribed"})
}
