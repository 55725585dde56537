// Package scheduler runs the periodic alert evaluation loop.
package scheduler

//go:generate mockgen -package=scheduler -destination=mock_core_test.go -source=../core/core.go QuoteSource,Notifier

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/StudioSol/set"
	"github.com/google/uuid"
	"github.com/jpillora/backoff"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/raykavin/coinalert/pkg/core"
	"github.com/raykavin/coinalert/pkg/evaluator"
	"github.com/raykavin/coinalert/pkg/locale"
	"github.com/raykavin/coinalert/pkg/logger"
)

// Status is the state of the evaluation loop
type Status int32

const (
	Idle Status = iota
	Evaluating
)

func (s Status) String() string {
	if s == Evaluating {
		return "evaluating"
	}
	return "idle"
}

// Report summarizes one tick
type Report struct {
	TickID      string
	Alerts      int // pending alerts in the snapshot
	Symbols     int // distinct symbols quoted
	Unavailable int // symbols skipped because their quote failed
	Triggered   int // satisfied conditions found
	Delivered   int // notifications sent and alerts retired
	Failed      int // notifications that could not be sent, alerts kept
	Deferred    int // (user, symbol) pairs skipped while the user is backing off
	Skipped     bool
}

// recipientBackoff remembers until when a failing recipient is left alone
type recipientBackoff struct {
	backoff *backoff.Backoff
	until   time.Time
}

// Scheduler evaluates every pending alert against live quotes on a fixed interval.
// Alerts are retired only after their notification was delivered, so a delivery failure
// leaves the alert pending and it fires again once the recipient is reachable.
type Scheduler struct {
	store    core.AlertStorage
	quotes   core.QuoteSource
	notifier core.Notifier
	catalog  *locale.Catalog
	log      logger.Logger
	clock    func() time.Time

	interval     time.Duration
	initialDelay time.Duration
	fetchTimeout time.Duration
	concurrency  int
	backoffMin   time.Duration
	backoffMax   time.Duration

	status atomic.Int32

	mu       sync.Mutex
	backoffs map[core.UserID]*recipientBackoff

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithInterval sets the time between two ticks
func WithInterval(interval time.Duration) Option {
	return func(s *Scheduler) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithInitialDelay sets the delay before the first tick
func WithInitialDelay(delay time.Duration) Option {
	return func(s *Scheduler) {
		if delay >= 0 {
			s.initialDelay = delay
		}
	}
}

// WithFetchTimeout bounds each quote lookup of a tick
func WithFetchTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) {
		if timeout > 0 {
			s.fetchTimeout = timeout
		}
	}
}

// WithFetchConcurrency sets how many quotes are fetched in parallel
func WithFetchConcurrency(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithDeliveryBackoff sets the pause range applied to a recipient after failed deliveries
func WithDeliveryBackoff(minWait, maxWait time.Duration) Option {
	return func(s *Scheduler) {
		if minWait > 0 {
			s.backoffMin = minWait
		}
		if maxWait >= s.backoffMin {
			s.backoffMax = maxWait
		}
	}
}

// WithClock overrides the time source
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// New creates a Scheduler with the default 60s interval and 10s initial delay
func New(store core.AlertStorage, quotes core.QuoteSource, notifier core.Notifier,
	catalog *locale.Catalog, log logger.Logger, options ...Option) *Scheduler {
	scheduler := &Scheduler{
		store:        store,
		quotes:       quotes,
		notifier:     notifier,
		catalog:      catalog,
		log:          log,
		clock:        time.Now,
		interval:     time.Minute,
		initialDelay: 10 * time.Second,
		fetchTimeout: 10 * time.Second,
		concurrency:  4,
		backoffMin:   time.Minute,
		backoffMax:   30 * time.Minute,
		backoffs:     make(map[core.UserID]*recipientBackoff),
	}
	for _, option := range options {
		option(scheduler)
	}
	return scheduler
}

// Status reports whether a tick is in progress
func (s *Scheduler) Status() Status {
	return Status(s.status.Load())
}

// Start runs the loop in the background until ctx is done or Stop is called
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()

	s.log.WithFields(map[string]any{
		"interval":      s.interval.String(),
		"initial_delay": s.initialDelay.String(),
	}).Info("alert scheduler started")
}

// Stop cancels the loop and waits for the running tick to return
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.log.Info("alert scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	timer := time.NewTimer(s.initialDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.Tick(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Tick runs one evaluation pass. A failure on one symbol or recipient never aborts the pass.
func (s *Scheduler) Tick(ctx context.Context) Report {
	report := Report{TickID: uuid.NewString()}
	log := s.log.WithField("tick_id", report.TickID)

	if !s.status.CompareAndSwap(int32(Idle), int32(Evaluating)) {
		log.Debug("tick skipped, previous tick still running")
		report.Skipped = true
		return report
	}
	defer s.status.Store(int32(Idle))

	started := s.clock()

	snapshot, err := s.store.Snapshot()
	if err != nil {
		log.WithError(err).Error("failed to snapshot alerts")
		return report
	}
	report.Alerts = len(snapshot)
	if len(snapshot) == 0 {
		log.Debug("no pending alerts")
		return report
	}

	// distinct symbols in first-seen order, and the users holding alerts on each
	symbols := set.NewLinkedHashSetString()
	for _, alert := range snapshot {
		symbols.Add(string(alert.Symbol))
	}
	usersBySymbol := lo.MapValues(
		lo.GroupBy(snapshot, func(a core.Alert) core.Symbol { return a.Symbol }),
		func(alerts []core.Alert, _ core.Symbol) []core.UserID {
			return lo.Uniq(lo.Map(alerts, func(a core.Alert, _ int) core.UserID { return a.User }))
		},
	)

	ordered := make([]core.Symbol, 0)
	for symbol := range symbols.Iter() {
		ordered = append(ordered, core.Symbol(symbol))
	}
	report.Symbols = len(ordered)

	quotes := s.fetchQuotes(ctx, log, ordered)

	for _, symbol := range ordered {
		if ctx.Err() != nil {
			log.Warn("tick interrupted")
			break
		}

		quote, ok := quotes[symbol]
		if !ok {
			report.Unavailable++
			continue
		}

		for _, user := range usersBySymbol[symbol] {
			s.settle(ctx, log, user, quote, &report)
		}
	}

	log.WithFields(map[string]any{
		"alerts":      report.Alerts,
		"symbols":     report.Symbols,
		"unavailable": report.Unavailable,
		"triggered":   report.Triggered,
		"delivered":   report.Delivered,
		"failed":      report.Failed,
		"deferred":    report.Deferred,
		"elapsed":     s.clock().Sub(started).String(),
	}).Debug("tick finished")

	return report
}

// fetchQuotes looks up every symbol without holding any store lock. Failed symbols are absent
// from the result.
func (s *Scheduler) fetchQuotes(ctx context.Context, log logger.Logger, symbols []core.Symbol) map[core.Symbol]core.Quote {
	var mu sync.Mutex
	quotes := make(map[core.Symbol]core.Quote, len(symbols))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)

	for _, symbol := range symbols {
		group.Go(func() error {
			quote, err := s.fetchQuote(groupCtx, symbol)
			if err != nil {
				log.WithError(err).WithField("symbol", symbol).Warn("quote unavailable, alerts deferred")
				return nil
			}

			mu.Lock()
			quotes[symbol] = quote
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	return quotes
}

func (s *Scheduler) fetchQuote(ctx context.Context, symbol core.Symbol) (quote core.Quote, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &core.QuoteError{Symbol: symbol, Source: s.quotes.Name(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	return s.quotes.FetchQuote(ctx, symbol)
}

// settle evaluates one user's alerts on quote.Symbol under the user's lock and retires
// the alerts whose notification went out
func (s *Scheduler) settle(ctx context.Context, log logger.Logger, user core.UserID, quote core.Quote, report *Report) {
	log = log.WithFields(map[string]any{"user": user, "symbol": quote.Symbol})

	if s.backingOff(user) {
		report.Deferred++
		return
	}

	lang, err := s.store.Language(user)
	if err != nil {
		log.WithError(err).Warn("failed to read language, using default")
		lang = core.DefaultLanguage
	}

	var deliveryErr error
	taken, err := s.store.Settle(user, quote.Symbol, func(alerts []core.Alert) []string {
		retire := make([]string, 0)
		for _, idx := range evaluator.EvaluateAlerts(quote.Price, alerts) {
			report.Triggered++
			if deliveryErr != nil {
				// the recipient just failed; keep the rest pending for the next attempt
				report.Failed++
				continue
			}

			alert := alerts[idx]
			if err := s.deliver(ctx, user, s.render(lang, alert, quote)); err != nil {
				deliveryErr = err
				report.Failed++
				continue
			}
			retire = append(retire, alert.Key)
		}
		return retire
	})
	if err != nil {
		log.WithError(err).Error("failed to settle alerts")
		return
	}
	report.Delivered += taken

	if deliveryErr != nil {
		wait := s.markFailed(user)
		log.WithError(deliveryErr).WithField("retry_in", wait.String()).Warn("alert notification failed, alert kept pending")
		return
	}
	if taken > 0 {
		s.markDelivered(user)
		log.WithField("alerts", taken).Info("alerts triggered")
	}
}

// deliver sends text and converts failures, panics included, into a *core.DeliveryError
func (s *Scheduler) deliver(ctx context.Context, user core.UserID, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &core.DeliveryError{To: user, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if err := s.notifier.Deliver(ctx, user, text); err != nil {
		return &core.DeliveryError{To: user, Err: err}
	}
	return nil
}

func (s *Scheduler) render(lang core.Language, alert core.Alert, quote core.Quote) string {
	return s.catalog.T(lang, locale.KeyAlertTriggered, locale.Args{
		"symbol":    string(alert.Symbol),
		"target":    s.catalog.Money(lang, alert.Condition.Target),
		"direction": s.catalog.Direction(lang, alert.Condition.Direction),
		"current":   s.catalog.Money(lang, quote.Price),
		"time":      s.catalog.Timestamp(s.clock()),
	})
}

func (s *Scheduler) backingOff(user core.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.backoffs[user]
	return ok && s.clock().Before(entry.until)
}

// markFailed extends the user's backoff and returns the pause applied
func (s *Scheduler) markFailed(user core.UserID) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.backoffs[user]
	if !ok {
		entry = &recipientBackoff{backoff: &backoff.Backoff{
			Min:    s.backoffMin,
			Max:    s.backoffMax,
			Factor: 2,
		}}
		s.backoffs[user] = entry
	}

	wait := entry.backoff.Duration()
	entry.until = s.clock().Add(wait)
	return wait
}

func (s *Scheduler) markDelivered(user core.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.backoffs, user)
}
