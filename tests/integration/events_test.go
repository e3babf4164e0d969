package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightmill/storefront/internal/events"
	"github.com/brightmill/storefront/pkg/catalog"
)

func TestEveryMutationLandsOnTheFeed(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	store := createStore(t, s, "Trinket")
	rec := create(t, s, store.ID, catalog.KindBillboard, catalog.Fields{
		"label":    "Hero",
		"imageUrl": "https://cdn.test/hero.png",
	})
	_, err := s.Client.Update(ctx, store.ID, catalog.KindBillboard, rec.ID, catalog.Fields{
		"label":    "Hero Reworked",
		"imageUrl": "https://cdn.test/hero.png",
	})
	require.NoError(t, err)
	require.NoError(t, s.Client.Delete(ctx, store.ID, catalog.KindBillboard, rec.ID))

	feed := s.Feed.All()
	require.Len(t, feed, 4)

	assert.Equal(t, events.OpCreated, feed[0].Op)
	assert.Equal(t, catalog.KindStore, feed[0].Kind)
	assert.Equal(t, store.ID, feed[0].RecordID)

	assert.Equal(t, events.OpCreated, feed[1].Op)
	assert.Equal(t, events.OpUpdated, feed[2].Op)
	assert.Equal(t, events.OpDeleted, feed[3].Op)
	for _, event := range feed[1:] {
		assert.Equal(t, catalog.KindBillboard, event.Kind)
		assert.Equal(t, store.ID, event.StoreID)
		assert.Equal(t, rec.ID, event.RecordID)
	}

	for i, event := range feed {
		assert.NotEmpty(t, event.ID, "event %d has no id", i)
		assert.False(t, event.At.IsZero(), "event %d has no timestamp", i)
	}
}

func TestRejectedMutationsStayOffTheFeed(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	seed := seedStore(t, s, "Outdoor")
	before := len(s.Feed.All())

	// Validation failure.
	_, err := s.Client.Create(ctx, seed.Store.ID, catalog.KindBillboard, catalog.Fields{"label": ""})
	require.Equal(t, http.StatusBadRequest, apiStatus(t, err))

	// Blocked delete.
	err = s.Client.Delete(ctx, seed.Store.ID, catalog.KindBillboard, seed.Billboard.ID)
	require.Equal(t, http.StatusConflict, apiStatus(t, err))

	assert.Len(t, s.Feed.All(), before, "failed mutations published events")
}
