// Package storage implements the alert store on top of an in-memory BuntDB instance.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/raykavin/coinalert/pkg/core"
	"github.com/tidwall/buntdb"
)

type userRecord struct {
	Language  core.Language `json:"language"`
	CreatedAt time.Time     `json:"created_at"`
}

type watchRecord struct {
	Seq    uint64      `json:"seq"`
	Symbol core.Symbol `json:"symbol"`
}

// BuntStorage implements core.AlertStorage. Single statements are atomic through BuntDB
// transactions; read-modify-write sequences of one user are serialized by a per-user mutex.
type BuntStorage struct {
	lastSeq         uint64
	db              *buntdb.DB
	defaultLanguage core.Language

	locksMu sync.Mutex
	locks   map[core.UserID]*sync.Mutex
}

var _ core.AlertStorage = (*BuntStorage)(nil)

// Option configures a BuntStorage
type Option func(*BuntStorage)

// WithDefaultLanguage sets the language reported for users without a preference
func WithDefaultLanguage(lang core.Language) Option {
	return func(b *BuntStorage) {
		if lang != "" {
			b.defaultLanguage = lang
		}
	}
}

// FromMemory creates an in-memory storage. State lives as long as the process.
func FromMemory(options ...Option) (*BuntStorage, error) {
	return NewBuntStorage(":memory:", options...)
}

// NewBuntStorage creates a new BuntDB storage instance
func NewBuntStorage(sourceFile string, options ...Option) (*BuntStorage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	err = db.CreateIndex(alertIndex, alertPrefix+"*", buntdb.IndexJSON("seq"))
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	storage := &BuntStorage{
		db:              db,
		defaultLanguage: core.DefaultLanguage,
		locks:           make(map[core.UserID]*sync.Mutex),
	}
	for _, option := range options {
		option(storage)
	}

	return storage, nil
}

// nextSeq generates a monotonically increasing sequence number
func (b *BuntStorage) nextSeq() uint64 {
	return atomic.AddUint64(&b.lastSeq, 1)
}

// lockUser acquires the user's mutex, creating it on first use, and returns the unlock func
func (b *BuntStorage) lockUser(user core.UserID) func() {
	b.locksMu.Lock()
	mu, ok := b.locks[user]
	if !ok {
		mu = &sync.Mutex{}
		b.locks[user] = mu
	}
	b.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// ensureUser creates the user record inside tx if it does not exist yet
func (b *BuntStorage) ensureUser(tx *buntdb.Tx, user core.UserID) (bool, error) {
	_, err := get(tx, userKey(user))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return false, fmt.Errorf("failed to read user: %w", err)
	}

	content, err := json.Marshal(userRecord{Language: b.defaultLanguage, CreatedAt: time.Now()})
	if err != nil {
		return false, fmt.Errorf("failed to marshal user: %w", err)
	}
	if _, _, err := tx.Set(userKey(user), string(content), nil); err != nil {
		return false, fmt.Errorf("failed to store user: %w", err)
	}
	return true, nil
}

// EnsureUser creates empty collections for the user
func (b *BuntStorage) EnsureUser(user core.UserID) (created bool, err error) {
	unlock := b.lockUser(user)
	defer unlock()

	err = b.db.Update(func(tx *buntdb.Tx) error {
		created, err = b.ensureUser(tx, user)
		return err
	})
	return created, err
}

// HasUser reports whether the user was ever seen
func (b *BuntStorage) HasUser(user core.UserID) (bool, error) {
	found := false
	err := b.db.View(func(tx *buntdb.Tx) error {
		_, err := get(tx, userKey(user))
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		found = err == nil
		return err
	})
	return found, err
}

// AddAlert appends a condition to the user's list for symbol. It never deduplicates.
func (b *BuntStorage) AddAlert(user core.UserID, symbol core.Symbol, cond core.Condition) (core.Alert, error) {
	if err := validSymbol(symbol); err != nil {
		return core.Alert{}, err
	}

	unlock := b.lockUser(user)
	defer unlock()

	alert := core.Alert{
		Seq:       b.nextSeq(),
		User:      user,
		Symbol:    symbol,
		Condition: cond,
		CreatedAt: time.Now(),
	}
	alert.Key = alertKey(user, symbol, alert.Seq)

	err := b.db.Update(func(tx *buntdb.Tx) error {
		if _, err := b.ensureUser(tx, user); err != nil {
			return err
		}

		content, err := json.Marshal(alert)
		if err != nil {
			return fmt.Errorf("failed to marshal alert: %w", err)
		}

		if _, _, err := tx.Set(alert.Key, string(content), nil); err != nil {
			return fmt.Errorf("failed to store alert: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Alert{}, err
	}

	return alert, nil
}

// ListAlerts returns a snapshot of the user's alerts grouped by symbol, each list in
// creation order. Unknown users get an empty map.
func (b *BuntStorage) ListAlerts(user core.UserID) (map[core.Symbol][]core.Condition, error) {
	alerts, err := b.userAlerts(user)
	if err != nil {
		return nil, err
	}

	result := make(map[core.Symbol][]core.Condition)
	for _, alert := range alerts {
		result[alert.Symbol] = append(result[alert.Symbol], alert.Condition)
	}
	return result, nil
}

// userAlerts returns the user's alerts across all symbols ordered by sequence
func (b *BuntStorage) userAlerts(user core.UserID) ([]core.Alert, error) {
	alerts := make([]core.Alert, 0)
	err := b.db.View(func(tx *buntdb.Tx) error {
		var decodeErr error
		err := tx.AscendKeys(userAlertsPattern(user), func(key, value string) bool {
			alert, err := decodeAlert(key, value)
			if err != nil {
				decodeErr = err
				return false
			}
			alerts = append(alerts, alert)
			return true
		})
		if err != nil {
			return fmt.Errorf("failed to iterate over alerts: %w", err)
		}
		return decodeErr
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(alerts, func(i, j int) bool { return alerts[i].Seq < alerts[j].Seq })
	return alerts, nil
}

// symbolAlerts reads the live alerts of one (user, symbol) pair in creation order
func (b *BuntStorage) symbolAlerts(tx *buntdb.Tx, user core.UserID, symbol core.Symbol) ([]core.Alert, error) {
	alerts := make([]core.Alert, 0)
	var decodeErr error
	err := tx.AscendKeys(symbolAlertsPrefix(user, symbol)+"*", func(key, value string) bool {
		alert, err := decodeAlert(key, value)
		if err != nil {
			decodeErr = err
			return false
		}
		alerts = append(alerts, alert)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over alerts: %w", err)
	}
	return alerts, decodeErr
}

// RemoveAlertsForSymbol deletes every alert the user holds on symbol
func (b *BuntStorage) RemoveAlertsForSymbol(user core.UserID, symbol core.Symbol) (bool, error) {
	if err := validSymbol(symbol); err != nil {
		return false, err
	}

	unlock := b.lockUser(user)
	defer unlock()

	removed := false
	err := b.db.Update(func(tx *buntdb.Tx) error {
		alerts, err := b.symbolAlerts(tx, user, symbol)
		if err != nil {
			return err
		}

		// keys are collected first; BuntDB forbids deleting while iterating
		for _, alert := range alerts {
			if _, err := remove(tx, alert.Key); err != nil && !errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("failed to delete alert: %w", err)
			}
			removed = true
		}
		return nil
	})
	return removed, err
}

// AddWatch puts symbol on the user's watchlist. A second call reports alreadyPresent.
func (b *BuntStorage) AddWatch(user core.UserID, symbol core.Symbol) (bool, error) {
	if err := validSymbol(symbol); err != nil {
		return false, err
	}

	unlock := b.lockUser(user)
	defer unlock()

	alreadyPresent := false
	err := b.db.Update(func(tx *buntdb.Tx) error {
		if _, err := b.ensureUser(tx, user); err != nil {
			return err
		}

		_, err := get(tx, watchKey(user, symbol))
		if err == nil {
			alreadyPresent = true
			return nil
		}
		if !errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("failed to read watch entry: %w", err)
		}

		content, err := json.Marshal(watchRecord{Seq: b.nextSeq(), Symbol: symbol})
		if err != nil {
			return fmt.Errorf("failed to marshal watch entry: %w", err)
		}
		if _, _, err := tx.Set(watchKey(user, symbol), string(content), nil); err != nil {
			return fmt.Errorf("failed to store watch entry: %w", err)
		}
		return nil
	})
	return alreadyPresent, err
}

// ListWatch returns the watchlist in insertion order
func (b *BuntStorage) ListWatch(user core.UserID) ([]core.Symbol, error) {
	records := make([]watchRecord, 0)
	err := b.db.View(func(tx *buntdb.Tx) error {
		var decodeErr error
		err := tx.AscendKeys(userWatchPattern(user), func(_, value string) bool {
			var record watchRecord
			if err := json.Unmarshal([]byte(value), &record); err != nil {
				decodeErr = fmt.Errorf("failed to unmarshal watch entry: %w", err)
				return false
			}
			records = append(records, record)
			return true
		})
		if err != nil {
			return fmt.Errorf("failed to iterate over watchlist: %w", err)
		}
		return decodeErr
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Seq < records[j].Seq })

	symbols := make([]core.Symbol, len(records))
	for i, record := range records {
		symbols[i] = record.Symbol
	}
	return symbols, nil
}

// RemoveWatch drops symbol from the user's watchlist
func (b *BuntStorage) RemoveWatch(user core.UserID, symbol core.Symbol) (bool, error) {
	if err := validSymbol(symbol); err != nil {
		return false, err
	}

	unlock := b.lockUser(user)
	defer unlock()

	removed := false
	err := b.db.Update(func(tx *buntdb.Tx) error {
		_, err := remove(tx, watchKey(user, symbol))
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to delete watch entry: %w", err)
		}
		removed = true
		return nil
	})
	return removed, err
}

// Snapshot returns every pending alert of every user ordered by creation
func (b *BuntStorage) Snapshot() ([]core.Alert, error) {
	alerts := make([]core.Alert, 0)
	err := b.db.View(func(tx *buntdb.Tx) error {
		var decodeErr error
		err := tx.Ascend(alertIndex, func(key, value string) bool {
			alert, err := decodeAlert(key, value)
			if err != nil {
				decodeErr = err
				return false
			}
			alerts = append(alerts, alert)
			return true
		})
		if err != nil {
			return fmt.Errorf("failed to iterate over alerts: %w", err)
		}
		return decodeErr
	})
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

// TakeTriggered deletes the given alerts of (user, symbol). Keys outside that pair or
// already gone are skipped, so retiring twice is harmless.
func (b *BuntStorage) TakeTriggered(user core.UserID, symbol core.Symbol, keys []string) (int, error) {
	unlock := b.lockUser(user)
	defer unlock()

	return b.takeTriggered(user, symbol, keys)
}

func (b *BuntStorage) takeTriggered(user core.UserID, symbol core.Symbol, keys []string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	prefix := symbolAlertsPrefix(user, symbol)
	taken := 0
	err := b.db.Update(func(tx *buntdb.Tx) error {
		for _, key := range keys {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			_, err := remove(tx, key)
			if errors.Is(err, core.ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to retire alert: %w", err)
			}
			taken++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return taken, nil
}

// Settle runs fn over the live alerts of (user, symbol) and retires the keys it returns.
// The user's lock is held throughout, so no other mutation of that user interleaves.
func (b *BuntStorage) Settle(user core.UserID, symbol core.Symbol, fn core.SettleFunc) (int, error) {
	unlock := b.lockUser(user)
	defer unlock()

	var alerts []core.Alert
	err := b.db.View(func(tx *buntdb.Tx) error {
		var err error
		alerts, err = b.symbolAlerts(tx, user, symbol)
		return err
	})
	if err != nil {
		return 0, err
	}
	if len(alerts) == 0 {
		return 0, nil
	}

	return b.takeTriggered(user, symbol, fn(alerts))
}

// Language returns the user's language, or the default when none was chosen
func (b *BuntStorage) Language(user core.UserID) (core.Language, error) {
	lang := b.defaultLanguage
	err := b.db.View(func(tx *buntdb.Tx) error {
		value, err := get(tx, userKey(user))
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read user: %w", err)
		}

		var record userRecord
		if err := json.Unmarshal([]byte(value), &record); err != nil {
			return fmt.Errorf("failed to unmarshal user: %w", err)
		}
		if record.Language != "" {
			lang = record.Language
		}
		return nil
	})
	return lang, err
}

// SetLanguage stores the user's language
func (b *BuntStorage) SetLanguage(user core.UserID, lang core.Language) error {
	unlock := b.lockUser(user)
	defer unlock()

	return b.db.Update(func(tx *buntdb.Tx) error {
		record := userRecord{CreatedAt: time.Now()}
		value, err := get(tx, userKey(user))
		switch {
		case err == nil:
			if err := json.Unmarshal([]byte(value), &record); err != nil {
				return fmt.Errorf("failed to unmarshal user: %w", err)
			}
		case !errors.Is(err, core.ErrNotFound):
			return fmt.Errorf("failed to read user: %w", err)
		}

		record.Language = lang
		content, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}
		if _, _, err := tx.Set(userKey(user), string(content), nil); err != nil {
			return fmt.Errorf("failed to store user: %w", err)
		}
		return nil
	})
}

// Close closes the database connection
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// get reads key, reporting a miss as core.ErrNotFound
func get(tx *buntdb.Tx, key string) (string, error) {
	value, err := tx.Get(key)
	if errors.Is(err, buntdb.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", core.ErrNotFound, key)
	}
	return value, err
}

// remove deletes key, reporting a miss as core.ErrNotFound
func remove(tx *buntdb.Tx, key string) (string, error) {
	value, err := tx.Delete(key)
	if errors.Is(err, buntdb.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", core.ErrNotFound, key)
	}
	return value, err
}

func decodeAlert(key, value string) (core.Alert, error) {
	var alert core.Alert
	if err := json.Unmarshal([]byte(value), &alert); err != nil {
		return core.Alert{}, fmt.Errorf("failed to unmarshal alert %s: %w", key, err)
	}
	alert.Key = key
	return alert, nil
}
