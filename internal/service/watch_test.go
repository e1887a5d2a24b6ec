package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsugi-app/tsugi/internal/config"
	"github.com/tsugi-app/tsugi/internal/domain"
	"github.com/tsugi-app/tsugi/internal/registry"
)

// fakeRepo is an in-memory stand-in for the AniList repository.
type fakeRepo struct {
	progress map[int]int
	saveErr  error
	getErr   error
	saved    []int
}

func (f *fakeRepo) SearchAnime(ctx context.Context, query string, sort string) ([]domain.Anime, error) {
	return nil, nil
}

func (f *fakeRepo) GetProgress(ctx context.Context, mediaID int) (int, error) {
	if f.getErr != nil {
		return 0, f.getErr
	}
	return f.progress[mediaID], nil
}

func (f *fakeRepo) SaveProgress(ctx context.Context, mediaID, progress int, status domain.MediaStatus) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.progress == nil {
		f.progress = make(map[int]int)
	}
	f.progress[mediaID] = progress
	f.saved = append(f.saved, mediaID)
	return nil
}

func newTestWatchService(t *testing.T, repo domain.MediaRepository) *WatchService {
	t.Helper()

	t.Setenv("TSUGI_REGISTRY_PATH", filepath.Join(t.TempDir(), "registry.json"))
	reg, err := registry.Load()
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Stream.EpisodeCompleteAt = 85

	return NewWatchService(cfg, nil, repo, reg)
}

func TestRecordProgress(t *testing.T) {
	t.Run("UpdatesTrackerAndRegistry", func(t *testing.T) {
		repo := &fakeRepo{progress: map[int]int{42: 4}}
		svc := newTestWatchService(t, repo)

		synced := svc.recordProgress(context.Background(), StreamParams{MediaID: 42}, "Test Show", 5)

		assert.True(t, synced)
		assert.Equal(t, 5, repo.progress[42])

		entry, ok := svc.registry.Get(42)
		require.True(t, ok)
		assert.Equal(t, 5, entry.Progress)
		assert.False(t, entry.Dirty)
	})

	t.Run("NeverWindsTrackerProgressBackwards", func(t *testing.T) {
		repo := &fakeRepo{progress: map[int]int{42: 9}}
		svc := newTestWatchService(t, repo)

		synced := svc.recordProgress(context.Background(), StreamParams{MediaID: 42}, "Test Show", 5)

		assert.True(t, synced, "a rewatch is already in sync")
		assert.Empty(t, repo.saved, "no mutation should be sent")
		assert.Equal(t, 9, repo.progress[42])

		// Local registry keeps the higher figure too
		entry, ok := svc.registry.Get(42)
		require.True(t, ok)
		assert.Equal(t, 5, entry.Progress)
	})

	t.Run("TrackerFailureMarksEntryDirty", func(t *testing.T) {
		repo := &fakeRepo{saveErr: errors.New("network down")}
		svc := newTestWatchService(t, repo)

		synced := svc.recordProgress(context.Background(), StreamParams{MediaID: 42}, "Test Show", 5)

		assert.False(t, synced)
		entry, ok := svc.registry.Get(42)
		require.True(t, ok)
		assert.True(t, entry.Dirty)
		assert.Equal(t, 5, entry.Progress)
	})

	t.Run("UntrackedShowOnlyTouchesRegistry", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := newTestWatchService(t, repo)

		synced := svc.recordProgress(context.Background(), StreamParams{MediaID: 0}, "Obscure Show", 2)

		assert.False(t, synced)
		assert.Empty(t, repo.saved)

		entry, ok := svc.registry.Get(0)
		require.True(t, ok)
		assert.False(t, entry.Dirty, "nothing to sync for an untracked show")
	})
}

func TestSyncDirty(t *testing.T) {
	t.Run("PushesDirtyEntries", func(t *testing.T) {
		repo := &fakeRepo{progress: map[int]int{1: 2}}
		svc := newTestWatchService(t, repo)

		require.NoError(t, svc.registry.Put(registry.Entry{ID: 1, Title: "Behind Show", Progress: 6, Status: "CURRENT", Dirty: true}))
		require.NoError(t, svc.registry.Put(registry.Entry{ID: 2, Title: "Clean Show", Progress: 3}))

		count, err := svc.SyncDirty(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, 6, repo.progress[1])
		assert.Empty(t, svc.registry.DirtyEntries())
	})

	t.Run("StaleDirtyEntryJustClearsFlag", func(t *testing.T) {
		// Tracker already moved past whatever we recorded offline
		repo := &fakeRepo{progress: map[int]int{1: 10}}
		svc := newTestWatchService(t, repo)

		require.NoError(t, svc.registry.Put(registry.Entry{ID: 1, Title: "Show", Progress: 6, Dirty: true}))

		count, err := svc.SyncDirty(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Empty(t, repo.saved)
		assert.Empty(t, svc.registry.DirtyEntries())
	})

	t.Run("StopsOnTrackerError", func(t *testing.T) {
		repo := &fakeRepo{getErr: errors.New("network down")}
		svc := newTestWatchService(t, repo)

		require.NoError(t, svc.registry.Put(registry.Entry{ID: 1, Title: "Show", Progress: 6, Dirty: true}))

		_, err := svc.SyncDirty(context.Background())
		assert.Error(t, err)
		assert.Len(t, svc.registry.DirtyEntries(), 1, "entry stays dirty for the next attempt")
	})
}
