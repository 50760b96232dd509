// Package engine runs resumable batch dispatches, at most one per user.
//
// A run pops rows from the user's session queue, sends them through the
// dispatch port, checkpoints the backup after every row and sleeps between
// batches. Pause, resume and cancel flip session flags and wake the run.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"dispatchbot/internal/dispatch"
	"dispatchbot/internal/eventbus"
	"dispatchbot/internal/model"
	"dispatchbot/internal/report"
	"dispatchbot/internal/runtime/supervisor"
	"dispatchbot/internal/session"
	logx "dispatchbot/pkg/logx"
)

var (
	ErrRunActive = errors.New("engine: run already active")
	ErrStopped   = errors.New("engine: stopped")
)

type BackupStore interface {
	Save(ctx context.Context, snap model.Snapshot) error
	Load(ctx context.Context) (*model.Snapshot, error)
	Clear(ctx context.Context) error
}

type TemplateSource interface {
	Get(ctx context.Context, name string) (model.Template, bool, error)
}

type LoopSource interface {
	Get(ctx context.Context, userID int64) (model.LoopConfig, bool, error)
}

type ReportWriter interface {
	Generate(rows []model.Row, userID int64) (string, report.Summary, error)
}

type Deps struct {
	Sessions  session.Store
	Backups   BackupStore
	Templates TemplateSource
	Loops     LoopSource
	Port      dispatch.Port
	Reports   ReportWriter
	Notifier  Notifier
	Bus       eventbus.Bus
	Log       logx.Logger
}

// Timing scales configured minutes and bounds the paused wait.
type Timing struct {
	// Unit is the length of one configured "minute". Default time.Minute.
	Unit time.Duration
	// PausePoll bounds how long a paused run sleeps between flag checks. Default 5s.
	PausePoll time.Duration
}

func (t Timing) withDefaults() Timing {
	if t.Unit <= 0 {
		t.Unit = time.Minute
	}
	if t.PausePoll <= 0 {
		t.PausePoll = 5 * time.Second
	}
	return t
}

type StartOptions struct {
	// Processed seeds the processed list, used when resuming from a backup.
	Processed []model.Row
}

type run struct {
	id     string
	userID int64
	// wake is buffered(1); a pending signal is never lost.
	wake      chan struct{}
	done      chan struct{}
	processed []model.Row
}

func (r *run) signal() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

type Service struct {
	d   Deps
	log logx.Logger
	sup *supervisor.Supervisor

	mu      sync.Mutex
	runs    map[int64]*run
	stopped bool
	timing  Timing
}

func New(parent context.Context, d Deps, t Timing) *Service {
	log := d.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	log = log.With(logx.String("comp", "engine"))
	if d.Notifier == nil {
		d.Notifier = NotifierFunc(func(context.Context, Notice) error { return nil })
	}
	return &Service{
		d:      d,
		log:    log,
		sup:    supervisor.New(parent, supervisor.WithLogger(log)),
		runs:   map[int64]*run{},
		timing: t.withDefaults(),
	}
}

func (s *Service) SetTiming(t Timing) {
	s.mu.Lock()
	s.timing = t.withDefaults()
	s.mu.Unlock()
}

func (s *Service) currentTiming() Timing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timing
}

func (s *Service) minutes(n int) time.Duration {
	return time.Duration(n) * s.currentTiming().Unit
}

// Start registers and launches a run for userID. It marks the session as
// sending and writes an initial checkpoint.
func (s *Service) Start(userID int64, opts StartOptions) (string, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return "", ErrStopped
	}
	if _, ok := s.runs[userID]; ok {
		s.mu.Unlock()
		return "", ErrRunActive
	}
	r := &run{
		id:        uuid.NewString(),
		userID:    userID,
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
		processed: model.CloneRows(opts.Processed),
	}
	s.runs[userID] = r
	s.mu.Unlock()

	sess := s.d.Sessions.Update(userID, func(ss *session.Session) {
		ss.SendingActive = true
		ss.SendingPaused = false
		ss.State = session.StateSending
	})
	s.checkpoint(s.sup.Context(), sess, r.processed)

	s.log.Info("run started",
		logx.String("run_id", r.id),
		logx.Int64("user_id", userID),
		logx.Int("queued", len(sess.Queue)),
		logx.Int("batch_size", sess.Config.BatchSize),
		logx.Int("interval", sess.Config.IntervalMinutes),
	)
	s.publish(eventbus.RunStarted, eventbus.RunData{RunID: r.id, UserID: userID, Remaining: len(sess.Queue)})

	s.sup.Go0("run:"+r.id, func(ctx context.Context) {
		defer s.unregister(r)
		s.loop(ctx, r)
	})
	return r.id, nil
}

func (s *Service) unregister(r *run) {
	s.mu.Lock()
	if cur, ok := s.runs[r.userID]; ok && cur == r {
		delete(s.runs, r.userID)
	}
	s.mu.Unlock()
	close(r.done)
}

func (s *Service) lookup(userID int64) *run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[userID]
}

// Active reports whether a run is registered for userID.
func (s *Service) Active(userID int64) bool { return s.lookup(userID) != nil }

func (s *Service) Pause(userID int64) {
	s.d.Sessions.Update(userID, func(ss *session.Session) {
		if ss.SendingActive {
			ss.SendingPaused = true
		}
	})
	if r := s.lookup(userID); r != nil {
		r.signal()
	}
}

func (s *Service) Resume(userID int64) {
	s.d.Sessions.Update(userID, func(ss *session.Session) { ss.SendingPaused = false })
	if r := s.lookup(userID); r != nil {
		r.signal()
	}
}

// Cancel stops the user's run at its next checkpoint. The backup is kept.
func (s *Service) Cancel(userID int64) {
	s.d.Sessions.Update(userID, func(ss *session.Session) {
		ss.SendingActive = false
		ss.SendingPaused = false
	})
	if r := s.lookup(userID); r != nil {
		r.signal()
	}
}

// Wait blocks until the user's current run exits or ctx is done.
func (s *Service) Wait(ctx context.Context, userID int64) error {
	r := s.lookup(userID)
	if r == nil {
		return nil
	}
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels every run and waits for them. Session flags and backups are
// left intact so the runs can be resumed after a restart.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	n := len(s.runs)
	s.mu.Unlock()
	if n > 0 {
		s.log.Info("stopping runs", logx.Int("count", n))
	}
	return s.sup.Stop(ctx)
}

func (s *Service) notify(ctx context.Context, n Notice) {
	if err := s.d.Notifier.Notify(context.WithoutCancel(ctx), n); err != nil {
		s.log.Debug("notify failed", logx.String("kind", n.Kind.String()), logx.Int64("user_id", n.UserID), logx.Err(err))
	}
}

func (s *Service) publish(typ string, data eventbus.RunData) {
	if s.d.Bus == nil {
		return
	}
	s.d.Bus.Publish(eventbus.Event{Type: typ, Data: data})
}

// checkpoint persists the session's in-flight state. Failures are logged only.
func (s *Service) checkpoint(ctx context.Context, sess session.Session, processed []model.Row) {
	if s.d.Backups == nil {
		return
	}
	snap := model.Snapshot{
		OwnerUserID:      sess.UserID,
		Queue:            sess.Queue,
		Processed:        processed,
		Config:           sess.Config,
		Timestamp:        time.Now(),
		SelectedTemplate: sess.SelectedTemplate,
		Original:         sess.Original,
	}
	if err := s.d.Backups.Save(context.WithoutCancel(ctx), snap); err != nil {
		s.log.Warn("checkpoint failed", logx.Int64("user_id", sess.UserID), logx.Err(err))
	}
}
