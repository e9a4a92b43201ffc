package infra

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/mission_tower/internal/config"
	"github.com/Vovarama1992/mission_tower/internal/ports"
)

func setupRepo(t *testing.T) ports.MissionRepo {
	t.Helper()

	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "missions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewMissionRepo(db, config.DriverSQLite)
}

func sampleMission(n int) *ports.Mission {
	return &ports.Mission{
		Title:       fmt.Sprintf("The pups save the lighthouse #%d", n),
		Pups:        []string{"Zuma", "Skye"},
		Location:    "Seal Island",
		Script:      "Pups, the lighthouse lamp went dark...",
		Translation: "Valpar, fyrens lampa har slocknat...",
	}
}

// insertReady stores a mission and marks its audio ready, the way the maintainer does.
func insertReady(t *testing.T, repo ports.MissionRepo, n int) *ports.Mission {
	t.Helper()
	ctx := context.Background()

	m, err := repo.Insert(ctx, sampleMission(n))
	require.NoError(t, err)
	require.NoError(t, repo.MarkAudioReady(ctx, m.ID))
	m.AudioReady = true
	return m
}

func TestMissionRepo_InsertAndGet(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	created, err := repo.Insert(ctx, sampleMission(1))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.IsRequested)
	assert.False(t, created.AudioReady)
	assert.Equal(t, []string{"Zuma", "Skye"}, created.Pups)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, "Seal Island", got.Location)
	assert.False(t, got.CreatedAt.IsZero())

	byTitle, err := repo.GetByTitle(ctx, created.Title)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byTitle.ID)

	_, err = repo.GetByID(ctx, created.ID+100)
	assert.ErrorIs(t, err, ports.ErrMissionNotFound)
}

func TestMissionRepo_InsertMissingField(t *testing.T) {
	repo := setupRepo(t)

	m := sampleMission(1)
	m.Translation = "  "

	_, err := repo.Insert(context.Background(), m)
	assert.ErrorIs(t, err, ports.ErrMissingField)

	_, err = repo.Insert(context.Background(), nil)
	assert.ErrorIs(t, err, ports.ErrMissingField)
}

func TestMissionRepo_LatestEmptyStore(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.Latest(context.Background())
	assert.ErrorIs(t, err, ports.ErrMissionNotFound)
}

func TestMissionRepo_LatestIgnoresRequestedState(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	insertReady(t, repo, 1)
	last := insertReady(t, repo, 2)

	_, err := repo.RequestByID(ctx, last.ID)
	require.NoError(t, err)

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, last.ID, latest.ID)
	assert.True(t, latest.IsRequested)
}

func TestMissionRepo_CountOnlyReadyUnrequested(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	insertReady(t, repo, 1)
	insertReady(t, repo, 2)
	_, err := repo.Insert(ctx, sampleMission(3)) // draft
	require.NoError(t, err)

	n, err := repo.CountUnrequested(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = repo.RequestOldest(ctx)
	require.NoError(t, err)

	n, err = repo.CountUnrequested(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMissionRepo_RequestOldest(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	first := insertReady(t, repo, 1)
	second := insertReady(t, repo, 2)

	got, err := repo.RequestOldest(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.True(t, got.IsRequested)

	got, err = repo.RequestOldest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	_, err = repo.RequestOldest(ctx)
	assert.ErrorIs(t, err, ports.ErrMissionNotFound)
}

func TestMissionRepo_RequestOldestSkipsDrafts(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, sampleMission(1))
	require.NoError(t, err)

	_, err = repo.RequestOldest(ctx)
	assert.ErrorIs(t, err, ports.ErrMissionNotFound)
}

func TestMissionRepo_RequestOldestConcurrent(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	const (
		available = 5
		callers   = 20
	)
	for i := 0; i < available; i++ {
		insertReady(t, repo, i)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		seen    = map[int64]int{}
		absent  int
		failure error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := repo.RequestOldest(ctx)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				seen[m.ID]++
			case errors.Is(err, ports.ErrMissionNotFound):
				absent++
			default:
				failure = err
			}
		}()
	}
	wg.Wait()

	require.NoError(t, failure)
	assert.Len(t, seen, available)
	assert.Equal(t, callers-available, absent)
	for id, n := range seen {
		assert.Equal(t, 1, n, "mission %d delivered more than once", id)
	}
}

func TestMissionRepo_GetDoesNotFlipFlag(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	m := insertReady(t, repo, 1)

	requested, err := repo.RequestByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, requested.IsRequested)

	for i := 0; i < 2; i++ {
		got, err := repo.GetByID(ctx, m.ID)
		require.NoError(t, err)
		assert.True(t, got.IsRequested)
		assert.Equal(t, requested.Title, got.Title)
		assert.Equal(t, requested.Translation, got.Translation)
	}

	// requesting again keeps the flag set, it never goes back
	again, err := repo.RequestByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, again.IsRequested)
}

func TestMissionRepo_RequestByTitle(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	m := insertReady(t, repo, 7)

	got, err := repo.RequestByTitle(ctx, m.Title)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.True(t, got.IsRequested)

	_, err = repo.RequestByTitle(ctx, "no such mission")
	assert.ErrorIs(t, err, ports.ErrMissionNotFound)
}

func TestMissionRepo_DeleteAndIDsNotReused(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	first := insertReady(t, repo, 1)
	require.NoError(t, repo.Delete(ctx, first.ID))

	_, err := repo.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, ports.ErrMissionNotFound)

	second, err := repo.Insert(ctx, sampleMission(2))
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}

func TestMissionRepo_DeleteDrafts(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	ready := insertReady(t, repo, 1)
	draft, err := repo.Insert(ctx, sampleMission(2))
	require.NoError(t, err)

	ids, err := repo.DeleteDrafts(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []int64{draft.ID}, ids)

	_, err = repo.GetByID(ctx, ready.ID)
	assert.NoError(t, err)
	_, err = repo.GetByID(ctx, draft.ID)
	assert.ErrorIs(t, err, ports.ErrMissionNotFound)
}

func TestMissionRepo_DeleteDraftsKeepsFreshOnes(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	draft, err := repo.Insert(ctx, sampleMission(1))
	require.NoError(t, err)

	ids, err := repo.DeleteDrafts(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = repo.GetByID(ctx, draft.ID)
	assert.NoError(t, err)
}

func TestMissionRepo_MarkAudioReadyMissing(t *testing.T) {
	repo := setupRepo(t)

	err := repo.MarkAudioReady(context.Background(), 42)
	assert.ErrorIs(t, err, ports.ErrMissionNotFound)
}

func TestRebind(t *testing.T) {
	pg := &missionRepo{dialect: config.DriverPostgres}
	lite := &missionRepo{dialect: config.DriverSQLite}

	q := `UPDATE missions SET audio_ready = ? WHERE id = ?`
	assert.Equal(t, `UPDATE missions SET audio_ready = $1 WHERE id = $2`, pg.rebind(q))
	assert.Equal(t, q, lite.rebind(q))
}
