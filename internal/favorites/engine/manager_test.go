package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmodels "udonmap/internal/catalog/models"
	"udonmap/internal/catalog/normkey"
	catalogservice "udonmap/internal/catalog/service"
	catalogmem "udonmap/internal/catalog/store/memory"
	favmem "udonmap/internal/favorites/store/memory"
	id "udonmap/pkg/domain"
	dErrors "udonmap/pkg/domain-errors"
	"udonmap/pkg/requestcontext"
)

func newManager(t *testing.T, favorites Store, shops *catalogmem.Store) *Manager {
	t.Helper()
	catalog, err := catalogservice.New(shops)
	require.NoError(t, err)
	m, err := NewManager(favorites, catalog, time.Second)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func userCtx(uid string) context.Context {
	return requestcontext.WithUser(context.Background(), requestcontext.User{ID: id.UserID(uid)})
}

func publishShop(t *testing.T, shops *catalogmem.Store, name string) *catalogmodels.ShopRecord {
	t.Helper()
	now := time.Now()
	shop := &catalogmodels.ShopRecord{
		ID:        id.NewShopID(),
		Pref:      id.RegionFukuoka,
		Name:      name,
		Address:   "somewhere in Fukuoka",
		Status:    catalogmodels.StatusPublished,
		NameKey:   normkey.Key(name),
		AddrKey:   normkey.Key("somewhere in Fukuoka"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, shops.Insert(context.Background(), shop))
	return shop
}

func TestManagerToggle(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		m := newManager(t, favmem.New(), catalogmem.New())
		_, err := m.Toggle(context.Background(), id.NewShopID())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("favorites are isolated per user", func(t *testing.T) {
		store := favmem.New()
		m := newManager(t, store, catalogmem.New())
		shopID := id.NewShopID()

		on, err := m.Toggle(userCtx("alice"), shopID)
		require.NoError(t, err)
		assert.True(t, on)

		on, err = m.Toggle(userCtx("bob"), shopID)
		require.NoError(t, err)
		assert.True(t, on)

		off, err := m.Toggle(userCtx("alice"), shopID)
		require.NoError(t, err)
		assert.False(t, off)

		bobs, err := store.List(context.Background(), "bob")
		require.NoError(t, err)
		assert.Equal(t, []id.ShopID{shopID}, bobs)
	})

	t.Run("engine seeds from persisted favorites", func(t *testing.T) {
		store := favmem.New()
		shopID := id.NewShopID()
		require.NoError(t, store.Add(context.Background(), "alice", shopID, time.Now()))

		m := newManager(t, store, catalogmem.New())
		off, err := m.Toggle(userCtx("alice"), shopID)
		require.NoError(t, err)
		assert.False(t, off)
	})
}

func TestManagerListShops(t *testing.T) {
	shops := catalogmem.New()
	store := favmem.New()
	m := newManager(t, store, shops)

	udon := publishShop(t, shops, "Udon Taro")
	soba := publishShop(t, shops, "Abiko Soba")
	ctx := userCtx("alice")

	_, err := m.Toggle(ctx, udon.ID)
	require.NoError(t, err)
	_, err = m.Toggle(ctx, soba.ID)
	require.NoError(t, err)

	// A favorite pointing at a vanished shop is skipped, not an error.
	require.NoError(t, store.Add(context.Background(), "alice", id.NewShopID(), time.Now()))
	gone := id.NewShopID()
	eng, err := m.engineFor(ctx)
	require.NoError(t, err)
	eng.replace(append(eng.Snapshot(), gone))

	listed, err := m.ListShops(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Abiko Soba", listed[0].Name)
	assert.Equal(t, "Udon Taro", listed[1].Name)
}
