package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunestream/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/logger"
)

// Mock preferences repository for testing
type mockPreferencesRepository struct {
	mu        sync.RWMutex
	volume    int
	mode      domain.ShuffleMode
	query     string
	failSaves bool
}

func newMockPreferencesRepository() *mockPreferencesRepository {
	return &mockPreferencesRepository{volume: DefaultVolume}
}

var errSave = errors.New("save failed")

func (m *mockPreferencesRepository) SaveVolume(volume int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return errSave
	}
	m.volume = volume
	return nil
}

func (m *mockPreferencesRepository) LoadVolume() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.volume, nil
}

func (m *mockPreferencesRepository) SaveShuffleMode(mode domain.ShuffleMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return errSave
	}
	m.mode = mode
	return nil
}

func (m *mockPreferencesRepository) LoadShuffleMode() (domain.ShuffleMode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode, nil
}

func (m *mockPreferencesRepository) SaveLastQuery(query string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.query = query
	return nil
}

func (m *mockPreferencesRepository) LoadLastQuery() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.query, nil
}

func (m *mockPreferencesRepository) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = DefaultVolume
	m.mode = domain.ShuffleOff
	m.query = ""
	return nil
}

func newTestPreferenceService(t *testing.T) (*PreferenceService, *mockPreferencesRepository, *eventbus.SyncEventBus) {
	t.Helper()
	repo := newMockPreferencesRepository()
	bus := eventbus.NewSyncEventBus(logger.NewTestLogger())
	svc := NewPreferenceService(logger.NewTestLogger(), repo, bus)
	t.Cleanup(func() {
		_ = svc.Shutdown()
		_ = bus.Close()
	})
	return svc, repo, bus
}

func TestPreferenceService_Defaults(t *testing.T) {
	svc, _, _ := newTestPreferenceService(t)

	assert.Equal(t, DefaultVolume, svc.GetVolume())
	assert.Equal(t, domain.ShuffleOff, svc.GetShuffleMode())
	assert.Empty(t, svc.GetLastQuery())
}

func TestPreferenceService_SetVolume(t *testing.T) {
	svc, repo, _ := newTestPreferenceService(t)

	require.NoError(t, svc.SetVolume(35))
	assert.Equal(t, 35, svc.GetVolume())
	saved, _ := repo.LoadVolume()
	assert.Equal(t, 35, saved)

	assert.ErrorIs(t, svc.SetVolume(-1), domain.ErrInvalidVolume)
	assert.ErrorIs(t, svc.SetVolume(101), domain.ErrInvalidVolume)
	assert.Equal(t, 35, svc.GetVolume())
}

func TestPreferenceService_FollowsBusEvents(t *testing.T) {
	svc, repo, bus := newTestPreferenceService(t)

	bus.Publish(domain.NewVolumeChangedEvent(12))
	bus.Publish(domain.NewShuffleModeChangedEvent(domain.ShuffleRepeat))

	assert.Equal(t, 12, svc.GetVolume())
	assert.Equal(t, domain.ShuffleRepeat, svc.GetShuffleMode())
	mode, _ := repo.LoadShuffleMode()
	assert.Equal(t, domain.ShuffleRepeat, mode)

	require.NoError(t, svc.Shutdown())
	bus.Publish(domain.NewVolumeChangedEvent(99))
	assert.Equal(t, 12, svc.GetVolume())
}

func TestPreferenceService_SaveFailureKeepsCache(t *testing.T) {
	svc, repo, bus := newTestPreferenceService(t)
	repo.failSaves = true

	assert.ErrorIs(t, svc.SetShuffleMode(domain.ShuffleNoRepeat), errSave)
	assert.Equal(t, domain.ShuffleNoRepeat, svc.GetShuffleMode())

	// bus-driven saves only log
	assert.NotPanics(t, func() { bus.Publish(domain.NewVolumeChangedEvent(5)) })
}

func TestPreferenceService_LastQuery(t *testing.T) {
	svc, repo, _ := newTestPreferenceService(t)

	require.NoError(t, svc.SetLastQuery("  lofi beats "))
	require.NoError(t, svc.SetLastQuery("   "))
	assert.Equal(t, "lofi beats", svc.GetLastQuery())
	q, _ := repo.LoadLastQuery()
	assert.Equal(t, "lofi beats", q)
}

func TestPreferenceService_Persistence(t *testing.T) {
	repo := newMockPreferencesRepository()
	bus := eventbus.NewSyncEventBus(logger.NewTestLogger())
	defer bus.Close()

	first := NewPreferenceService(logger.NewTestLogger(), repo, bus)
	require.NoError(t, first.SetVolume(60))
	require.NoError(t, first.SetShuffleMode(domain.ShuffleNoRepeat))
	require.NoError(t, first.Shutdown())

	second := NewPreferenceService(logger.NewTestLogger(), repo, bus)
	defer second.Shutdown()
	assert.Equal(t, 60, second.GetVolume())
	assert.Equal(t, domain.ShuffleNoRepeat, second.GetShuffleMode())
}

func TestPreferenceService_ResetToDefaults(t *testing.T) {
	svc, repo, _ := newTestPreferenceService(t)
	require.NoError(t, svc.SetVolume(10))
	require.NoError(t, svc.SetShuffleMode(domain.ShuffleRepeat))

	require.NoError(t, svc.ResetToDefaults())
	assert.Equal(t, DefaultVolume, svc.GetVolume())
	assert.Equal(t, domain.ShuffleOff, svc.GetShuffleMode())
	vol, _ := repo.LoadVolume()
	assert.Equal(t, DefaultVolume, vol)
}

func TestPreferenceService_ConcurrentAccess(t *testing.T) {
	svc, _, _ := newTestPreferenceService(t)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_ = svc.SetVolume(i)
			} else {
				_ = svc.GetVolume()
			}
		}()
	}
	wg.Wait()

	vol := svc.GetVolume()
	assert.GreaterOrEqual(t, vol, 0)
	assert.LessOrEqual(t, vol, 100)
}
