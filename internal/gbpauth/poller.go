// Package gbpauth tracks completion of an out-of-band Google Business
// Profile OAuth grant. The grant happens on the business owner's device,
// reached via a WhatsApp deep link; this side only polls the session
// status endpoint until a terminal state or a hard time ceiling.
package gbpauth

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tribly-hq/dashboard-cli/internal/apierr"
	"github.com/tribly-hq/dashboard-cli/internal/model"
	"github.com/tribly-hq/dashboard-cli/internal/store"
	"github.com/tribly-hq/dashboard-cli/pkg/tribly"
)

// SessionClient is the slice of the backend client the poller needs.
type SessionClient interface {
	CreateAuthSession(ctx context.Context, req tribly.CreateAuthSessionRequest) (string, error)
	AuthSessionStatus(ctx context.Context, sessionID string) (*model.AuthSession, error)
}

// Outcome is the terminal result of one watch.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeExpired   Outcome = "expired"
	OutcomeFailed    Outcome = "failed"
	OutcomeErrored   Outcome = "errored"
	// OutcomeTimeout means the poller gave up after the ceiling without a
	// terminal response from the server. Distinct from OutcomeExpired,
	// which is the server reporting session expiry.
	OutcomeTimeout   Outcome = "timeout"
	OutcomeCancelled Outcome = "cancelled"
)

// Result is delivered to the OnResult callback when a watch ends.
type Result struct {
	Outcome Outcome
	Session *model.AuthSession
	Message string
}

// Config tunes the poll loop. Zero values take the defaults below.
type Config struct {
	// Interval between status checks. Default 10s.
	Interval time.Duration
	// Ceiling is the hard limit on one watch, mirroring the server-side
	// session TTL. Default 30m.
	Ceiling time.Duration
	// AppBaseURL hosts the authorization page embedded in the deep link.
	AppBaseURL string
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 10 * time.Second
	}
	if c.Ceiling <= 0 {
		c.Ceiling = 30 * time.Minute
	}
	if c.AppBaseURL == "" {
		c.AppBaseURL = "https://app.tribly.ai"
	}
	return c
}

// watcher is one polling loop over one session. A Poller has at most one
// non-stopped watcher at a time.
type watcher struct {
	sessionID string
	business  Business
	stop      chan struct{}
	stopped   bool
}

// Poller drives the authorization polling state machine. All methods are
// safe for concurrent use.
type Poller struct {
	client SessionClient
	store  store.Store
	clock  Clock
	cfg    Config
	log    *zap.Logger

	onResult func(Result)

	mu     sync.Mutex
	active *watcher
	checks int
	last   *Result
}

// NewPoller wires a poller. A nil clock uses real time.
func NewPoller(client SessionClient, st store.Store, clock Clock, cfg Config) *Poller {
	if clock == nil {
		clock = NewRealClock()
	}
	return &Poller{
		client: client,
		store:  st,
		clock:  clock,
		cfg:    cfg.withDefaults(),
		log:    zap.L().With(zap.String("component", "gbpauth.poller")),
	}
}

// OnResult registers the terminal callback. Must be set before Start or
// Resume; the callback runs on the watch goroutine.
func (p *Poller) OnResult(fn func(Result)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onResult = fn
}

// Pending reports whether a watch is currently running.
func (p *Poller) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active != nil
}

// Checks returns how many status checks have run for the current or most
// recent watch. Observational only.
func (p *Poller) Checks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.checks
}

// LastResult returns the most recent terminal result, if any.
func (p *Poller) LastResult() *Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return nil
	}
	r := *p.last
	return &r
}

// Start creates a new authorization session for the business, persists
// its id for resume-on-restart, starts the watch, and returns the wa.me
// deep link to deliver. Any watch already running is stopped first so
// timers never overlap.
func (p *Poller) Start(ctx context.Context, b Business) (string, error) {
	p.stopActive()

	sessionID, err := p.client.CreateAuthSession(ctx, tribly.CreateAuthSessionRequest{
		BusinessName:  b.Name,
		BusinessPhone: b.Phone,
		PlaceID:       b.PlaceID,
	})
	if err != nil {
		return "", eris.Wrap(err, "gbpauth: create session")
	}

	if err := p.store.SaveAuthSession(ctx, b.Key(), sessionID); err != nil {
		return "", eris.Wrap(err, "gbpauth: persist session id")
	}

	p.log.Info("authorization session created",
		zap.String("business", b.Name),
		zap.String("session_id", sessionID),
	)

	p.watch(ctx, b, sessionID)
	return p.link(b, sessionID), nil
}

// Resume restarts watching a previously persisted session for the
// business. It never creates a new session. It returns false when there
// is nothing to resume: no persisted id, or the business is already
// connected.
func (p *Poller) Resume(ctx context.Context, b Business) (bool, error) {
	if _, connected, err := p.store.Connected(ctx, b.Key()); err != nil {
		return false, eris.Wrap(err, "gbpauth: read connected flag")
	} else if connected {
		return false, nil
	}

	sessionID, ok, err := p.store.AuthSessionID(ctx, b.Key())
	if err != nil {
		return false, eris.Wrap(err, "gbpauth: read persisted session")
	}
	if !ok {
		return false, nil
	}

	p.stopActive()
	p.log.Info("resuming authorization session",
		zap.String("business", b.Name),
		zap.String("session_id", sessionID),
	)
	p.watch(ctx, b, sessionID)
	return true, nil
}

// ResendLink regenerates the deep link for the in-flight session so the
// user can re-send it. Poll state is untouched.
func (p *Poller) ResendLink() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil {
		return "", eris.New("gbpauth: no pending session")
	}
	return p.link(p.active.business, p.active.sessionID), nil
}

// Cancel stops the watch, clears the persisted session id, and returns
// the poller to idle. Safe to call when nothing is running.
func (p *Poller) Cancel(ctx context.Context) error {
	p.mu.Lock()
	w := p.active
	var businessKey string
	if w != nil {
		businessKey = w.business.Key()
	}
	p.finishLocked(w, Result{
		Outcome: OutcomeCancelled,
		Message: "Authorization request cancelled.",
	})
	p.mu.Unlock()

	if businessKey == "" {
		return nil
	}
	if err := p.store.ClearAuthSession(ctx, businessKey); err != nil {
		return eris.Wrap(err, "gbpauth: clear session")
	}
	return nil
}

// Stop halts all timers without touching persisted state, so a later
// Resume can pick the session back up. The unmount path.
func (p *Poller) Stop() {
	p.stopActive()
}

func (p *Poller) link(b Business, sessionID string) string {
	return WhatsAppLink(b.Phone, b.Name, AuthLink(p.cfg.AppBaseURL, sessionID, b.Name))
}

func (p *Poller) stopActive() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != nil && !p.active.stopped {
		p.active.stopped = true
		close(p.active.stop)
	}
	p.active = nil
}

// watch launches the poll loop goroutine: one immediate check, then one
// check per interval tick until a terminal state, the ceiling, a cancel,
// or context cancellation.
func (p *Poller) watch(ctx context.Context, b Business, sessionID string) {
	w := &watcher{
		sessionID: sessionID,
		business:  b,
		stop:      make(chan struct{}),
	}

	p.mu.Lock()
	p.active = w
	p.checks = 0
	p.last = nil
	p.mu.Unlock()

	go p.run(ctx, w)
}

func (p *Poller) run(ctx context.Context, w *watcher) {
	ticker := p.clock.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	ceiling := p.clock.NewTimer(p.cfg.Ceiling)
	defer ceiling.Stop()

	// Immediate first check; a grant completed before the first interval
	// must not wait 10 seconds to be noticed.
	p.check(ctx, w)

	for {
		select {
		case <-ctx.Done():
			p.stopWatcher(w)
			return
		case <-w.stop:
			return
		case <-ceiling.C():
			p.finish(w, Result{
				Outcome: OutcomeTimeout,
				Message: "Timed out waiting for authorization. The request may still be pending; create a new one to retry.",
			}, false)
			return
		case <-ticker.C():
			p.check(ctx, w)
			if p.isStopped(w) {
				return
			}
		}
	}
}

// check performs one status poll. Transport and decode failures never
// stop the loop; only terminal application states do.
func (p *Poller) check(ctx context.Context, w *watcher) {
	if p.isStopped(w) {
		return
	}

	p.mu.Lock()
	p.checks++
	n := p.checks
	p.mu.Unlock()

	session, err := p.client.AuthSessionStatus(ctx, w.sessionID)
	if err != nil {
		if apierr.IsTransient(err) {
			p.log.Debug("status check failed, will retry",
				zap.String("session_id", w.sessionID),
				zap.Int("checks", n),
				zap.Error(err),
			)
		} else {
			p.log.Warn("status check error, will retry",
				zap.String("session_id", w.sessionID),
				zap.Int("checks", n),
				zap.Error(err),
			)
		}
		return
	}

	switch session.Status {
	case model.SessionPending:
		// Keep watching.
	case model.SessionCompleted:
		p.finish(w, Result{
			Outcome: OutcomeCompleted,
			Session: session,
			Message: "Google Business Profile connected.",
		}, true)
	case model.SessionExpired:
		p.finish(w, Result{
			Outcome: OutcomeExpired,
			Session: session,
			Message: "The authorization request expired. Create a new one to retry.",
		}, false)
	case model.SessionFailed:
		p.finish(w, Result{
			Outcome: OutcomeFailed,
			Session: session,
			Message: "Authorization failed. Create a new request to retry.",
		}, false)
	case model.SessionError:
		message := session.ErrorMessage
		if message == "" {
			message = "Something went wrong during authorization. Create a new request to retry."
		}
		p.finish(w, Result{
			Outcome: OutcomeErrored,
			Session: session,
			Message: message,
		}, false)
	}
}

func (p *Poller) isStopped(w *watcher) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return w.stopped
}

func (p *Poller) stopWatcher(w *watcher) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !w.stopped {
		w.stopped = true
		close(w.stop)
	}
	if p.active == w {
		p.active = nil
	}
}

// finish records a terminal result exactly once, applies the store side
// effects, and invokes the callback. Late responses after a stop are
// dropped by the stopped check.
func (p *Poller) finish(w *watcher, res Result, connected bool) {
	p.mu.Lock()
	applied := p.finishLocked(w, res)
	cb := p.onResult
	p.mu.Unlock()

	if !applied {
		return
	}

	key := w.business.Key()
	ctx := context.Background()
	if connected && res.Session != nil {
		if err := p.store.SetConnected(ctx, key, store.ConnectedInfo{
			ReviewURL:   res.Session.BusinessReviewURL,
			Email:       res.Session.BusinessEmail,
			ConnectedAt: p.clock.Now(),
		}); err != nil {
			p.log.Error("persist connected flag", zap.String("business_key", key), zap.Error(err))
		}
	}
	switch res.Outcome {
	case OutcomeCompleted, OutcomeExpired, OutcomeFailed, OutcomeErrored:
		if err := p.store.ClearAuthSession(ctx, key); err != nil {
			p.log.Error("clear session id", zap.String("business_key", key), zap.Error(err))
		}
	}

	p.log.Info("authorization watch finished",
		zap.String("business_key", key),
		zap.String("outcome", string(res.Outcome)),
	)

	if cb != nil {
		cb(res)
	}
}

// finishLocked performs the state transition under p.mu. A watcher that
// already stopped keeps its first result; subsequent calls are no-ops.
func (p *Poller) finishLocked(w *watcher, res Result) bool {
	if w == nil || w.stopped {
		return false
	}
	w.stopped = true
	close(w.stop)
	if p.active == w {
		p.active = nil
	}
	p.last = &res
	return true
}
