package core

// SettleFunc receives the live alert list of one (user, symbol) pair and returns the keys
// of the alerts that must be retired. It runs while the user's collection is locked.
type SettleFunc func(alerts []Alert) (retire []string)

// AlertStorage owns every per-user alert, watchlist and language preference.
// All methods are safe for concurrent use.
type AlertStorage interface {
	// EnsureUser creates the user's empty collections if needed and reports whether it did.
	EnsureUser(user UserID) (created bool, err error)
	// HasUser reports whether the user's collections exist, even if they are empty.
	HasUser(user UserID) (bool, error)

	AddAlert(user UserID, symbol Symbol, cond Condition) (Alert, error)
	ListAlerts(user UserID) (map[Symbol][]Condition, error)
	RemoveAlertsForSymbol(user UserID, symbol Symbol) (removed bool, err error)

	AddWatch(user UserID, symbol Symbol) (alreadyPresent bool, err error)
	ListWatch(user UserID) ([]Symbol, error)
	RemoveWatch(user UserID, symbol Symbol) (removed bool, err error)

	// Snapshot returns every pending alert, ordered by creation.
	Snapshot() ([]Alert, error)
	// TakeTriggered atomically deletes the given alerts of one (user, symbol) pair.
	// Keys that no longer exist are ignored.
	TakeTriggered(user UserID, symbol Symbol, keys []string) (taken int, err error)
	// Settle reads the live alerts of (user, symbol), hands them to fn and retires what fn
	// returns, all while holding the user's lock.
	Settle(user UserID, symbol Symbol, fn SettleFunc) (taken int, err error)

	Language(user UserID) (Language, error)
	SetLanguage(user UserID, lang Language) error
}
