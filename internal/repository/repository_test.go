package repository

import (
	"context"
	"testing"
	"time"

	"github.com/agrocampo/campo-api/internal/docstore"
	"github.com/agrocampo/campo-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampPaging(t *testing.T) {
	page, size := clampPaging(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)

	page, size = clampPaging(-3, 1000)
	assert.Equal(t, 1, page)
	assert.Equal(t, 200, size)

	page, size = clampPaging(5, 50)
	assert.Equal(t, 5, page)
	assert.Equal(t, 50, size)
}

func TestPageSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, pageSlice(items, 1, 2))
	assert.Equal(t, []int{3, 4}, pageSlice(items, 2, 2))
	assert.Equal(t, []int{5}, pageSlice(items, 3, 2))
	assert.Empty(t, pageSlice(items, 4, 2))
	assert.Empty(t, pageSlice([]int{}, 1, 20))
}

func TestSortByCreatedDesc(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	items := []domain.Client{
		{ID: "a", CreatedAt: base},
		{ID: "c", CreatedAt: base.AddDate(0, 0, 2)},
		{ID: "b", CreatedAt: base.AddDate(0, 0, 1)},
	}
	sortByCreatedDesc(items, func(c domain.Client) time.Time { return c.CreatedAt })

	assert.Equal(t, "c", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
	assert.Equal(t, "a", items[2].ID)
}

func TestClientRepository_RoundTrip(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewClientRepository(store)
	ctx := context.Background()

	active := true
	client := &domain.Client{
		Name:     "Rancho El Amanecer",
		TaxID:    "AAA010101AAA",
		IsActive: &active,
		Contacts: []domain.Contact{{Name: "María López", Email: "maria@elamanecer.mx"}},
	}
	require.NoError(t, repo.Create(ctx, client))
	require.NotEmpty(t, client.ID)
	assert.False(t, client.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, client.ID, got.ID)
	assert.Equal(t, "Rancho El Amanecer", got.Name)

	got.Name = "Rancho Renombrado"
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.GetByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rancho Renombrado", again.Name)

	_, err = repo.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClientRepository_ListPagesNewestFirst(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewClientRepository(store)
	ctx := context.Background()

	store.Seed(domain.CollectionClients, "c1", map[string]any{
		"name": "Primero", "createdAt": "2026-03-01T00:00:00Z",
	})
	store.Seed(domain.CollectionClients, "c2", map[string]any{
		"name": "Segundo", "createdAt": "2026-03-02T00:00:00Z",
	})
	store.Seed(domain.CollectionClients, "c3", map[string]any{
		"name": "Tercero", "createdAt": "2026-03-03T00:00:00Z",
		"_validationError": map[string]any{"at": "2026-03-03T01:00:00Z", "errors": []any{}},
	})

	clients, total, err := repo.List(ctx, 1, 2, false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, clients, 2)
	assert.Equal(t, "Tercero", clients[0].Name)
	assert.Equal(t, "Segundo", clients[1].Name)

	clients, total, err = repo.List(ctx, 1, 20, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, clients, 1)
	assert.Equal(t, "Tercero", clients[0].Name)
}
