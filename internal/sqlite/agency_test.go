package sqlite

import (
	"context"
	"testing"

	"github.com/opencivic/govcontacts/internal/domain/agency"
	"github.com/opencivic/govcontacts/internal/repository"
	"github.com/stretchr/testify/require"
)

func seedAgencies(t *testing.T, repo *AgencyRepository) {
	t.Helper()
	ctx := context.Background()
	rows := []agency.Agency{
		{ID: "a1", Name: "Austin Police Department", State: "Texas", StateCode: "TX", Type: "Police", Population: "960000", County: "Travis", CreatedAt: "2024-01-01"},
		{ID: "a2", Name: "Boston Fire Department", State: "Massachusetts", StateCode: "MA", Type: "Fire", Population: "650000", County: "Suffolk", CreatedAt: "2024-01-02"},
		{ID: "a3", Name: "Travis County Sheriff", State: "Texas", StateCode: "TX", Type: "Sheriff", Population: "1290000", County: "Travis", CreatedAt: "2024-01-03"},
		{ID: "a4", Name: "Cambridge Police Department", State: "Massachusetts", StateCode: "MA", Type: "police", Population: "118000", County: "Middlesex", CreatedAt: "2024-01-04"},
	}
	for i := range rows {
		require.NoError(t, repo.Upsert(ctx, &rows[i]))
	}
}

func TestAgencyRepository_GetNotFound(t *testing.T) {
	repo := NewAgencyRepository(NewTestDB(t))
	_, err := repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAgencyRepository_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewAgencyRepository(NewTestDB(t))
	seedAgencies(t, repo)

	a, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, "Austin Police Department", a.Name)
	require.Equal(t, "TX", a.StateCode)

	// Upsert with the same id updates in place.
	a.Website = "https://austintexas.gov/police"
	require.NoError(t, repo.Upsert(ctx, a))
	again, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, "https://austintexas.gov/police", again.Website)
}

func TestAgencyRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewAgencyRepository(NewTestDB(t))
	seedAgencies(t, repo)

	// State filter.
	list, total, err := repo.List(ctx, agency.ListOptions{State: "TX", SortBy: "name", Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, list, 2)
	require.Equal(t, "Austin Police Department", list[0].Name)

	// Type filter is case-insensitive.
	list, total, err = repo.List(ctx, agency.ListOptions{Type: "POLICE", SortBy: "name", Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, list, 2)

	// Search matches name or county, case-insensitively.
	list, total, err = repo.List(ctx, agency.ListOptions{Search: "travis", SortBy: "name", Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, "Austin Police Department", list[0].Name)
	require.Equal(t, "Travis County Sheriff", list[1].Name)
}

func TestAgencyRepository_ListSortAndPaginate(t *testing.T) {
	ctx := context.Background()
	repo := NewAgencyRepository(NewTestDB(t))
	seedAgencies(t, repo)

	list, total, err := repo.List(ctx, agency.ListOptions{SortBy: "created_at", Desc: true, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 4, total)
	require.Len(t, list, 2)
	require.Equal(t, "a4", list[0].ID)
	require.Equal(t, "a3", list[1].ID)

	list, _, err = repo.List(ctx, agency.ListOptions{SortBy: "created_at", Desc: true, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Equal(t, "a2", list[0].ID)
	require.Equal(t, "a1", list[1].ID)
}

func TestAgencyRepository_UnknownSortFallsBackToName(t *testing.T) {
	ctx := context.Background()
	repo := NewAgencyRepository(NewTestDB(t))
	seedAgencies(t, repo)

	list, _, err := repo.List(ctx, agency.ListOptions{SortBy: "drop table", Limit: 10})
	require.NoError(t, err)
	require.Equal(t, "Austin Police Department", list[0].Name)
}
