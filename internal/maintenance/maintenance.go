// Package maintenance runs periodic housekeeping on cron schedules: old
// reports, leftover downloads and template photos nobody references.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	logx "dispatchbot/pkg/logx"
)

// Job is one named housekeeping task.
type Job struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Run     func(ctx context.Context) (removed int, err error)
}

type Service struct {
	log    logx.Logger
	parser cron.Parser
	loc    *time.Location

	mu   sync.Mutex
	c    *cron.Cron
	ctx  context.Context
	stop context.CancelFunc
	jobs []Job
}

// New returns a stopped service. An empty or unknown timezone means local time.
func New(timezone string, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	loc := time.Local
	if tz := strings.TrimSpace(timezone); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		} else {
			log.Warn("unknown timezone, using local", logx.String("tz", tz), logx.Err(err))
		}
	}
	return &Service{
		log: log.With(logx.String("comp", "maintenance")),
		// SecondOptional allows both 5-field and 6-field (with seconds) specs.
		parser: cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		loc:    loc,
	}
}

// NormalizeSpec accepts cron expressions, descriptors ("@daily") and plain
// durations ("6h", taken as "@every 6h").
func NormalizeSpec(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", errors.New("schedule required")
	}
	if strings.ContainsAny(s, " \t") || strings.HasPrefix(s, "@") {
		return s, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return "", fmt.Errorf("invalid schedule %q: %w", raw, err)
	}
	if d <= 0 {
		return "", fmt.Errorf("invalid schedule %q: must be positive", raw)
	}
	return "@every " + d.String(), nil
}

// Validate parses spec without registering anything.
func (s *Service) Validate(spec string) error {
	norm, err := NormalizeSpec(spec)
	if err != nil {
		return err
	}
	_, err = s.parser.Parse(norm)
	return err
}

// Add registers job. Jobs added after Start are scheduled immediately.
func (s *Service) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return errors.New("job name and func required")
	}
	if err := s.Validate(job.Spec); err != nil {
		return fmt.Errorf("job %s: %w", job.Name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	if s.c != nil {
		return s.scheduleLocked(job)
	}
	return nil
}

func (s *Service) scheduleLocked(job Job) error {
	norm, _ := NormalizeSpec(job.Spec)
	sched, err := s.parser.Parse(norm)
	if err != nil {
		return err
	}
	ctx := s.ctx
	s.c.Schedule(sched, cron.FuncJob(func() { s.run(ctx, job) }))
	return nil
}

func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return
	}
	s.ctx, s.stop = context.WithCancel(ctx)
	s.c = cron.New(
		cron.WithParser(s.parser),
		cron.WithLocation(s.loc),
		cron.WithChain(cron.Recover(cronLogger{s.log}), cron.SkipIfStillRunning(cronLogger{s.log})),
	)
	for _, j := range s.jobs {
		if err := s.scheduleLocked(j); err != nil {
			s.log.Warn("job not scheduled", logx.String("job", j.Name), logx.Err(err))
		}
	}
	s.c.Start()
	s.log.Info("service started", logx.String("tz", s.loc.String()), logx.Int("jobs", len(s.jobs)))
}

// Stop cancels running jobs and waits for them or ctx.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	c, stop := s.c, s.stop
	s.c, s.stop = nil, nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	stop()
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
	s.log.Info("service stopped")
}

// RunNow runs every job once, synchronously, in registration order.
func (s *Service) RunNow(ctx context.Context) {
	s.mu.Lock()
	jobs := append([]Job(nil), s.jobs...)
	s.mu.Unlock()
	for _, j := range jobs {
		s.run(ctx, j)
	}
}

func (s *Service) run(ctx context.Context, job Job) {
	if ctx == nil || ctx.Err() != nil {
		return
	}
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}
	start := time.Now()
	n, err := job.Run(ctx)
	fields := []logx.Field{logx.String("job", job.Name), logx.Int("removed", n), logx.Duration("took", time.Since(start))}
	switch {
	case err != nil:
		s.log.Warn("job failed", append(fields, logx.Err(err))...)
	case n > 0:
		s.log.Info("job done", fields...)
	default:
		s.log.Debug("job done", fields...)
	}
}

// cronLogger adapts logx to cron.Logger.
type cronLogger struct{ log logx.Logger }

func (l cronLogger) Info(msg string, kv ...any) {
	l.log.Debug("cron: "+msg, kvFields(kv)...)
}

func (l cronLogger) Error(err error, msg string, kv ...any) {
	l.log.Error("cron: "+msg, append(kvFields(kv), logx.Err(err))...)
}

func kvFields(kv []any) []logx.Field {
	out := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, logx.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return out
}
