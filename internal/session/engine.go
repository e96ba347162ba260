// Package session implements the focus session engine: the active-session
// state machine, elapsed-time accounting, page-visit history accumulation, and
// session-history archival.
//
// States are NoSession, Active, and Paused. Ending a session is not a resting
// state; it archives the session as a history entry and returns to NoSession.
// The engine owns the in-memory session exclusively and writes the full
// snapshot through to storage on every mutation. Public operations never
// return collaborator failures: storage and notification errors are logged
// and swallowed.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pabu-app/focusd/internal/metrics"
	"github.com/pabu-app/focusd/internal/notify"
	"github.com/pabu-app/focusd/internal/settings"
	"github.com/pabu-app/focusd/internal/storage"
	"github.com/rs/zerolog"
)

// DefaultIdlePauseTimeout is how long a session must stay continuously paused
// before the engine raises the advisory flag inviting termination.
const DefaultIdlePauseTimeout = 5 * time.Minute

// Config holds engine configuration.
type Config struct {
	IdlePauseTimeout time.Duration
}

// Engine owns the active-session state machine. All operations are safe for
// concurrent use; transitions run one at a time under the engine mutex.
type Engine struct {
	sessions storage.SessionStore
	settings *settings.Service
	notifier notify.Notifier
	clock    Clock
	logger   zerolog.Logger

	idleTimeout time.Duration

	mu           sync.Mutex
	current      *storage.Session
	trackedURL   string
	trackedTitle string
	trackStart   time.Time
	tracking     bool
	idleTimer    *time.Timer
	idleAdvisory bool
	tickStop     chan struct{}
}

// NewEngine creates a session engine and restores any persisted active
// session.
func NewEngine(sessions storage.SessionStore, settingsSvc *settings.Service, notifier notify.Notifier, clock Clock, cfg Config, logger zerolog.Logger) *Engine {
	if cfg.IdlePauseTimeout == 0 {
		cfg.IdlePauseTimeout = DefaultIdlePauseTimeout
	}
	if clock == nil {
		clock = RealClock{}
	}

	e := &Engine{
		sessions:    sessions,
		settings:    settingsSvc,
		notifier:    notifier,
		clock:       clock,
		logger:      logger.With().Str("component", "session-engine").Logger(),
		idleTimeout: cfg.IdlePauseTimeout,
	}

	e.restore()
	return e
}

// restore adopts a persisted active session, if any. Visit tracking resumes
// on the next reported location.
func (e *Engine) restore() {
	saved, err := e.sessions.GetActive(context.Background())
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			e.logger.Warn().Err(err).Msg("Failed to restore active session, starting without one")
		}
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.current = saved
	if saved.Status == storage.StatusActive {
		e.startTickerLocked()
	}

	e.logger.Info().
		Str("session_id", saved.ID).
		Str("project", saved.ProjectName).
		Str("status", string(saved.Status)).
		Msg("Restored active session")
}

// Start begins a session for the given project, tracking url/title as the
// first visit when provided. A session already in progress is ended first.
func (e *Engine) Start(project storage.Project, url, title string) storage.Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current != nil {
		e.endLocked()
	}

	now := e.clock.Now()
	e.current = &storage.Session{
		ID:                      uuid.NewString(),
		ProjectID:               project.ID,
		ProjectName:             project.Title,
		StartTime:               now,
		Status:                  storage.StatusActive,
		TotalPauseDuration:      0,
		URLHistory:              []storage.VisitEntry{},
		ProjectShortDescription: project.ShortDescription,
		ProjectLongDescription:  project.LongDescription,
	}
	e.idleAdvisory = false
	e.tracking = false
	e.trackedURL = ""
	e.trackedTitle = ""

	if url != "" {
		e.beginVisitLocked(url, title, now)
	}

	e.persistLocked()
	e.startTickerLocked()
	metrics.SessionsStarted.Inc()

	e.logger.Info().
		Str("session_id", e.current.ID).
		Str("project", project.Title).
		Msg("Session started")

	return e.snapshotLocked()
}

// ReportLocation records a navigation. It is the presentation layer's
// explicit entry point; the engine has no implicit observation of the
// environment. Ignored unless the session is active, and a no-op when the
// URL has not changed.
func (e *Engine) ReportLocation(url, title string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil || e.current.Status != storage.StatusActive || url == "" {
		return
	}
	if e.tracking && url == e.trackedURL {
		return
	}

	now := e.clock.Now()
	e.finalizeVisitLocked(now)
	e.beginVisitLocked(url, title, now)
	e.persistLocked()
}

// Pause freezes the session. No-op unless the current state is exactly
// Active. After the idle timeout elapses without a resume, the advisory flag
// is raised; it never auto-ends the session.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil || e.current.Status != storage.StatusActive {
		return
	}

	now := e.clock.Now()
	e.finalizeVisitLocked(now)
	e.tracking = false

	e.current.Status = storage.StatusPaused
	pausedAt := now
	e.current.PausedAt = &pausedAt
	e.persistLocked()

	e.stopTickerLocked()
	e.armIdleTimerLocked()
	metrics.SessionPauses.Inc()

	e.logger.Info().Str("session_id", e.current.ID).Msg("Session paused")
}

// Resume reactivates a paused session. No-op unless the current state is
// exactly Paused. The tracked URL is reopened as a new visit entry; durations
// are never merged across a pause boundary.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil || e.current.Status != storage.StatusPaused {
		return
	}

	now := e.clock.Now()
	if e.current.PausedAt != nil {
		e.current.TotalPauseDuration += now.Sub(*e.current.PausedAt).Milliseconds()
	}
	e.current.PausedAt = nil
	e.current.Status = storage.StatusActive

	e.cancelIdleTimerLocked()
	e.idleAdvisory = false

	if e.trackedURL != "" {
		e.beginVisitLocked(e.trackedURL, e.trackedTitle, now)
	}

	e.persistLocked()
	e.startTickerLocked()

	e.logger.Info().Str("session_id", e.current.ID).Msg("Session resumed")
}

// End closes the session and archives it as a history entry. No-op when no
// session exists. The summary notification is dispatched on a detached
// goroutine; its outcome is only logged.
func (e *Engine) End() *storage.SessionHistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.endLocked()
}

func (e *Engine) endLocked() *storage.SessionHistoryEntry {
	if e.current == nil {
		return nil
	}

	now := e.clock.Now()
	if e.tracking {
		e.finalizeVisitLocked(now)
		e.tracking = false
	}

	session := e.current
	duration := now.Sub(session.StartTime).Milliseconds() - session.TotalPauseDuration

	urls := make([]storage.VisitEntry, len(session.URLHistory))
	copy(urls, session.URLHistory)

	entry := storage.SessionHistoryEntry{
		ID:          session.ID,
		ProjectID:   session.ProjectID,
		ProjectName: session.ProjectName,
		StartTime:   session.StartTime,
		EndTime:     now,
		Duration:    duration,
		URLsViewed:  urls,
		Summary:     Summarize(urls),
	}

	if err := e.sessions.AppendHistory(context.Background(), entry); err != nil {
		e.logger.Error().Err(err).Str("session_id", entry.ID).Msg("Failed to archive session history entry")
	}

	e.current = nil
	e.trackedURL = ""
	e.trackedTitle = ""
	e.cancelIdleTimerLocked()
	e.idleAdvisory = false
	e.stopTickerLocked()

	if err := e.sessions.ClearActive(context.Background()); err != nil {
		e.logger.Error().Err(err).Msg("Failed to clear active session snapshot")
	}

	metrics.SessionsEnded.Inc()
	metrics.SessionDuration.Observe(float64(duration) / 1000)
	metrics.SessionElapsedSeconds.Set(0)

	// Best-effort, fire-and-forget. Failures must never prevent the session
	// from ending or corrupt history.
	go e.sendSummaryNotification(entry)

	e.logger.Info().
		Str("session_id", entry.ID).
		Str("project", entry.ProjectName).
		Int64("duration_ms", entry.Duration).
		Int("pages", len(entry.URLsViewed)).
		Msg("Session ended")

	return &entry
}

func (e *Engine) sendSummaryNotification(entry storage.SessionHistoryEntry) {
	if e.notifier == nil || e.settings == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	email, frequency := e.settings.EmailSettings(ctx)
	if frequency != storage.FrequencyAfterEachSession {
		return
	}
	if !notify.IsValidEmail(email) {
		e.logger.Debug().Str("email", email).Msg("Skipping summary email, invalid address")
		return
	}

	childName := e.settings.Load(ctx).ChildName
	if ok := e.notifier.SendSummary(ctx, entry, email, childName); !ok {
		e.logger.Warn().Str("session_id", entry.ID).Msg("Summary notification failed")
	}
}

// Snapshot returns a copy of the current session, or nil when none exists.
func (e *Engine) Snapshot() *storage.Session {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return nil
	}
	snapshot := e.snapshotLocked()
	return &snapshot
}

func (e *Engine) snapshotLocked() storage.Session {
	snapshot := *e.current
	snapshot.URLHistory = make([]storage.VisitEntry, len(e.current.URLHistory))
	copy(snapshot.URLHistory, e.current.URLHistory)
	if e.current.PausedAt != nil {
		pausedAt := *e.current.PausedAt
		snapshot.PausedAt = &pausedAt
	}
	return snapshot
}

// Elapsed returns the active time of the current session, pauses excluded.
// Frozen while paused, zero when no session exists.
func (e *Engine) Elapsed() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.elapsedLocked()
}

func (e *Engine) elapsedLocked() time.Duration {
	if e.current == nil {
		return 0
	}

	pause := time.Duration(e.current.TotalPauseDuration) * time.Millisecond
	switch e.current.Status {
	case storage.StatusPaused:
		if e.current.PausedAt != nil {
			return e.current.PausedAt.Sub(e.current.StartTime) - pause
		}
		return e.clock.Now().Sub(e.current.StartTime) - pause
	default:
		return e.clock.Now().Sub(e.current.StartTime) - pause
	}
}

// IdleAdvisory reports whether the session has been paused for at least the
// idle timeout. Purely advisory; the caller may offer to end the session.
func (e *Engine) IdleAdvisory() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.idleAdvisory
}

// History returns the archived sessions, newest first.
func (e *Engine) History(ctx context.Context) ([]storage.SessionHistoryEntry, error) {
	return e.sessions.History(ctx)
}

// beginVisitLocked appends a new visit entry and starts tracking it.
func (e *Engine) beginVisitLocked(url, title string, now time.Time) {
	e.current.URLHistory = append(e.current.URLHistory, storage.VisitEntry{
		URL:       url,
		Title:     title,
		Timestamp: now,
		Duration:  0,
	})
	e.trackedURL = url
	e.trackedTitle = title
	e.trackStart = now
	e.tracking = true
	metrics.PagesVisited.Inc()
}

// finalizeVisitLocked attributes the elapsed wall-clock time since tracking
// began to the last history entry, provided it matches the tracked URL. Once
// superseded an entry's duration never changes again.
func (e *Engine) finalizeVisitLocked(now time.Time) {
	if !e.tracking || len(e.current.URLHistory) == 0 {
		return
	}
	last := &e.current.URLHistory[len(e.current.URLHistory)-1]
	if last.URL != e.trackedURL {
		return
	}
	last.Duration += now.Sub(e.trackStart).Milliseconds()
}

// persistLocked writes the full session snapshot through to storage. Storage
// failures are logged, never propagated.
func (e *Engine) persistLocked() {
	if e.current == nil {
		return
	}
	if err := e.sessions.PutActive(context.Background(), *e.current); err != nil {
		e.logger.Error().Err(err).Str("session_id", e.current.ID).Msg("Failed to persist session snapshot")
	}
}

func (e *Engine) armIdleTimerLocked() {
	e.cancelIdleTimerLocked()
	sessionID := e.current.ID
	e.idleTimer = time.AfterFunc(e.idleTimeout, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.current == nil || e.current.ID != sessionID || e.current.Status != storage.StatusPaused {
			return
		}
		e.idleAdvisory = true
		e.logger.Info().
			Str("session_id", sessionID).
			Dur("paused_for", e.idleTimeout).
			Msg("Session idle while paused, advising termination")
	})
}

func (e *Engine) cancelIdleTimerLocked() {
	if e.idleTimer != nil {
		e.idleTimer.Stop()
		e.idleTimer = nil
	}
}

// startTickerLocked begins the once-per-second elapsed refresh. It runs only
// while the session is Active and feeds the elapsed-time gauge.
func (e *Engine) startTickerLocked() {
	if e.tickStop != nil {
		return
	}
	stop := make(chan struct{})
	e.tickStop = stop

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				e.mu.Lock()
				metrics.SessionElapsedSeconds.Set(e.elapsedLocked().Seconds())
				e.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

func (e *Engine) stopTickerLocked() {
	if e.tickStop != nil {
		close(e.tickStop)
		e.tickStop = nil
	}
}
