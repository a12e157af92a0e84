package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/akinalp/merume/models"
)

func TestPresence_OnlineOffline(t *testing.T) {
	userID := primitive.NewObjectID()
	userRepo := newFakeUserRepo(models.User{ID: userID})

	svc := NewPresenceService(userRepo)
	ctx := context.Background()

	require.NoError(t, svc.MarkOnline(ctx, userID))
	user, err := userRepo.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, user.IsOnline)
	assert.NotNil(t, user.LastTimeOnline)

	require.NoError(t, svc.MarkOffline(ctx, userID))
	user, err = userRepo.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.False(t, user.IsOnline)
	assert.NotNil(t, user.LastTimeOnline)
}
