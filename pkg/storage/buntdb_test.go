package storage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/buntdb"

	"github.com/raykavin/coinalert/pkg/core"
)

func newTestStorage(t *testing.T, options ...Option) *BuntStorage {
	t.Helper()
	storage, err := FromMemory(options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func above(target float64) core.Condition {
	return core.Condition{Target: target, Direction: core.DirectionAbove}
}

func below(target float64) core.Condition {
	return core.Condition{Target: target, Direction: core.DirectionBelow}
}

func TestBuntStorage_AddAndListAlerts(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.AddAlert(1, "BTC", above(50000))
	require.NoError(t, err)
	_, err = storage.AddAlert(1, "ETH", below(2000))
	require.NoError(t, err)
	_, err = storage.AddAlert(1, "BTC", below(40000))
	require.NoError(t, err)
	_, err = storage.AddAlert(1, "BTC", above(50000))
	require.NoError(t, err)

	alerts, err := storage.ListAlerts(1)
	require.NoError(t, err)
	assert.Equal(t, map[core.Symbol][]core.Condition{
		"BTC": {above(50000), below(40000), above(50000)},
		"ETH": {below(2000)},
	}, alerts)

	t.Run("other users are isolated", func(t *testing.T) {
		alerts, err := storage.ListAlerts(2)
		require.NoError(t, err)
		assert.NotNil(t, alerts)
		assert.Empty(t, alerts)
	})
}

func TestBuntStorage_UserPrefixes(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.AddAlert(1, "BTC", above(1))
	require.NoError(t, err)
	_, err = storage.AddAlert(12, "BTC", above(2))
	require.NoError(t, err)
	_, err = storage.AddAlert(1, "BTCB", above(3))
	require.NoError(t, err)

	removed, err := storage.RemoveAlertsForSymbol(1, "BTC")
	require.NoError(t, err)
	assert.True(t, removed)

	alerts, err := storage.ListAlerts(1)
	require.NoError(t, err)
	assert.Equal(t, map[core.Symbol][]core.Condition{"BTCB": {above(3)}}, alerts)

	alerts, err = storage.ListAlerts(12)
	require.NoError(t, err)
	assert.Equal(t, map[core.Symbol][]core.Condition{"BTC": {above(2)}}, alerts)
}

func TestBuntStorage_RemoveAlertsForSymbol(t *testing.T) {
	storage := newTestStorage(t)

	removed, err := storage.RemoveAlertsForSymbol(1, "BTC")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = storage.AddAlert(1, "BTC", above(50000))
	require.NoError(t, err)
	_, err = storage.AddAlert(1, "BTC", below(30000))
	require.NoError(t, err)

	removed, err = storage.RemoveAlertsForSymbol(1, "BTC")
	require.NoError(t, err)
	assert.True(t, removed)

	alerts, err := storage.ListAlerts(1)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	removed, err = storage.RemoveAlertsForSymbol(1, "BTC")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestBuntStorage_Watchlist(t *testing.T) {
	storage := newTestStorage(t)

	for _, symbol := range []core.Symbol{"SOL", "BTC", "ETH"} {
		present, err := storage.AddWatch(1, symbol)
		require.NoError(t, err)
		assert.False(t, present)
	}

	present, err := storage.AddWatch(1, "BTC")
	require.NoError(t, err)
	assert.True(t, present)

	symbols, err := storage.ListWatch(1)
	require.NoError(t, err)
	assert.Equal(t, []core.Symbol{"SOL", "BTC", "ETH"}, symbols)

	removed, err := storage.RemoveWatch(1, "BTC")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = storage.RemoveWatch(1, "BTC")
	require.NoError(t, err)
	assert.False(t, removed)

	symbols, err = storage.ListWatch(1)
	require.NoError(t, err)
	assert.Equal(t, []core.Symbol{"SOL", "ETH"}, symbols)

	symbols, err = storage.ListWatch(99)
	require.NoError(t, err)
	assert.NotNil(t, symbols)
	assert.Empty(t, symbols)
}

func TestBuntStorage_ConcurrentAddAlert(t *testing.T) {
	storage := newTestStorage(t)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := storage.AddAlert(1, "BTC", above(float64(i+1)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	alerts, err := storage.ListAlerts(1)
	require.NoError(t, err)
	assert.Len(t, alerts["BTC"], 100)

	snapshot, err := storage.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snapshot, 100)
}

func TestBuntStorage_Snapshot(t *testing.T) {
	storage := newTestStorage(t)

	first, err := storage.AddAlert(2, "ETH", below(2000))
	require.NoError(t, err)
	second, err := storage.AddAlert(1, "BTC", above(50000))
	require.NoError(t, err)
	third, err := storage.AddAlert(2, "BTC", above(60000))
	require.NoError(t, err)

	snapshot, err := storage.Snapshot()
	require.NoError(t, err)
	require.Len(t, snapshot, 3)

	assert.Equal(t, []string{first.Key, second.Key, third.Key},
		[]string{snapshot[0].Key, snapshot[1].Key, snapshot[2].Key})
	assert.Equal(t, core.UserID(1), snapshot[1].User)
	assert.Equal(t, core.Symbol("BTC"), snapshot[1].Symbol)
	assert.Equal(t, above(50000), snapshot[1].Condition)
}

func TestBuntStorage_TakeTriggered(t *testing.T) {
	storage := newTestStorage(t)

	keep, err := storage.AddAlert(1, "BTC", below(30000))
	require.NoError(t, err)
	take, err := storage.AddAlert(1, "BTC", above(50000))
	require.NoError(t, err)
	foreign, err := storage.AddAlert(2, "BTC", above(50000))
	require.NoError(t, err)

	taken, err := storage.TakeTriggered(1, "BTC", []string{take.Key, foreign.Key, "alert:1:BTC:missing"})
	require.NoError(t, err)
	assert.Equal(t, 1, taken)

	taken, err = storage.TakeTriggered(1, "BTC", []string{take.Key})
	require.NoError(t, err)
	assert.Zero(t, taken)

	alerts, err := storage.ListAlerts(1)
	require.NoError(t, err)
	assert.Equal(t, []core.Condition{keep.Condition}, alerts["BTC"])

	alerts, err = storage.ListAlerts(2)
	require.NoError(t, err)
	assert.Len(t, alerts["BTC"], 1)
}

func TestBuntStorage_Settle(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.AddAlert(1, "BTC", above(50000))
	require.NoError(t, err)
	_, err = storage.AddAlert(1, "BTC", below(30000))
	require.NoError(t, err)

	var seen []core.Alert
	taken, err := storage.Settle(1, "BTC", func(alerts []core.Alert) []string {
		seen = alerts
		return []string{alerts[0].Key}
	})
	require.NoError(t, err)
	assert.Equal(t, 1, taken)
	require.Len(t, seen, 2)

	alerts, err := storage.ListAlerts(1)
	require.NoError(t, err)
	assert.Equal(t, []core.Condition{below(30000)}, alerts["BTC"])

	t.Run("nothing pending skips the callback", func(t *testing.T) {
		called := false
		taken, err := storage.Settle(1, "ETH", func([]core.Alert) []string {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.Zero(t, taken)
		assert.False(t, called)
	})

	t.Run("removal during settle waits for it", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		done := make(chan struct{})

		go func() {
			defer close(done)
			_, err := storage.Settle(1, "BTC", func(alerts []core.Alert) []string {
				close(started)
				<-release
				return []string{alerts[0].Key}
			})
			assert.NoError(t, err)
		}()

		<-started
		removedCh := make(chan bool)
		go func() {
			removed, err := storage.RemoveAlertsForSymbol(1, "BTC")
			assert.NoError(t, err)
			removedCh <- removed
		}()

		close(release)
		<-done
		// the settle retired the only alert, so the removal finds nothing
		assert.False(t, <-removedCh)
	})
}

func TestBuntStorage_Users(t *testing.T) {
	storage := newTestStorage(t)

	found, err := storage.HasUser(7)
	require.NoError(t, err)
	assert.False(t, found)

	created, err := storage.EnsureUser(7)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = storage.EnsureUser(7)
	require.NoError(t, err)
	assert.False(t, created)

	found, err = storage.HasUser(7)
	require.NoError(t, err)
	assert.True(t, found)

	alerts, err := storage.ListAlerts(7)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	_, err = storage.AddWatch(8, "BTC")
	require.NoError(t, err)
	found, err = storage.HasUser(8)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestBuntStorage_Language(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		storage := newTestStorage(t)

		lang, err := storage.Language(1)
		require.NoError(t, err)
		assert.Equal(t, core.LanguageEnglish, lang)

		require.NoError(t, storage.SetLanguage(1, core.LanguageRussian))
		lang, err = storage.Language(1)
		require.NoError(t, err)
		assert.Equal(t, core.LanguageRussian, lang)

		lang, err = storage.Language(2)
		require.NoError(t, err)
		assert.Equal(t, core.LanguageEnglish, lang)
	})

	t.Run("configured default", func(t *testing.T) {
		storage := newTestStorage(t, WithDefaultLanguage(core.LanguageRussian))

		_, err := storage.EnsureUser(1)
		require.NoError(t, err)

		lang, err := storage.Language(1)
		require.NoError(t, err)
		assert.Equal(t, core.LanguageRussian, lang)
	})

	t.Run("preference survives alert changes", func(t *testing.T) {
		storage := newTestStorage(t)

		require.NoError(t, storage.SetLanguage(1, core.LanguageRussian))
		_, err := storage.AddAlert(1, "BTC", above(1))
		require.NoError(t, err)

		lang, err := storage.Language(1)
		require.NoError(t, err)
		assert.Equal(t, core.LanguageRussian, lang)
	})
}

func TestBuntStorage_InvalidSymbol(t *testing.T) {
	storage := newTestStorage(t)

	for _, symbol := range []core.Symbol{"", "BT:C", "*", "B?"} {
		_, err := storage.AddAlert(1, symbol, above(1))
		assert.ErrorIs(t, err, core.ErrInvalidArgument, "symbol %q", symbol)

		_, err = storage.AddWatch(1, symbol)
		assert.ErrorIs(t, err, core.ErrInvalidArgument, "symbol %q", symbol)
	}
}

func TestBuntStorage_MissingKeysReportNotFound(t *testing.T) {
	storage := newTestStorage(t)

	err := storage.db.Update(func(tx *buntdb.Tx) error {
		_, err := get(tx, userKey(99))
		assert.ErrorIs(t, err, core.ErrNotFound)

		_, err = remove(tx, watchKey(99, "BTC"))
		assert.ErrorIs(t, err, core.ErrNotFound)
		return nil
	})
	require.NoError(t, err)

	// misses stay silent at the public surface
	removed, err := storage.RemoveWatch(99, "BTC")
	require.NoError(t, err)
	assert.False(t, removed)

	found, err := storage.HasUser(99)
	require.NoError(t, err)
	assert.False(t, found)
}
