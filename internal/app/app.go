// Package app wires the bot together: config, logging, stores, the dispatch
// engine, the conversation machine and the Telegram transport.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dispatchbot/internal/bot"
	"dispatchbot/internal/config"
	"dispatchbot/internal/conversation"
	"dispatchbot/internal/dispatch"
	"dispatchbot/internal/engine"
	"dispatchbot/internal/eventbus"
	"dispatchbot/internal/i18n"
	"dispatchbot/internal/maintenance"
	"dispatchbot/internal/report"
	"dispatchbot/internal/runtime/supervisor"
	"dispatchbot/internal/session"
	"dispatchbot/internal/sheet"
	"dispatchbot/internal/storage"
	kit "dispatchbot/internal/transport"
	telegram "dispatchbot/internal/transport/telegram/adapter"
	logx "dispatchbot/pkg/logx"
)

const maintenanceTimeout = 2 * time.Minute

type App struct {
	cfgm *config.ConfigManager
	sup  *supervisor.Supervisor

	log  logx.Logger
	logs *logx.Service
	bus  *eventbus.MemBus
	tr   *i18n.Translator

	adapter *telegram.Adapter
	stores  *storage.Stores
	paths   paths

	sessions *session.MemoryStore
	reports  *report.Writer
	engine   *engine.Service
	machine  *conversation.Machine
	router   *bot.Router
	maint    *maintenance.Service

	updates chan kit.Update
}

// New loads cfgPath (plus .env files next to it) and builds every component.
// Nothing runs until Start.
func New(cfgPath string) (*App, error) {
	if err := config.LoadDotEnv(config.DotEnvPaths(cfgPath)...); err != nil {
		return nil, err
	}
	cfgm := config.NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	durs, err := cfg.Durations()
	if err != nil {
		return nil, err
	}

	bootLog := logx.NewConsole("INFO").With(logx.String("comp", "telegram"))
	ad, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: durs.PollTimeout,
	}, bootLog)
	if err != nil {
		return nil, err
	}

	// The admin target must be set before Apply enables the admin sink.
	logCfg := mapLogConfig(cfg)
	bootCfg := logCfg
	bootCfg.Admin.Enabled = false
	logSvc, root := logx.New(bootCfg, ad)
	logSvc.SetAdminTarget(cfg.Telegram.AdminUserID)
	logSvc.Apply(logCfg)
	log := root.With(logx.String("comp", "app"))

	p := mapPaths(cfg)
	for _, dir := range []string{p.Data, p.Media, p.Downloads, p.Reports} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	stores, err := storage.Open(mapStorageConfig(cfg), root.With(logx.String("comp", "storage")))
	if err != nil {
		return nil, err
	}

	bus := eventbus.New()
	tr := cfg.Translator()
	sessions := session.NewMemoryStore(sessionDefaults(cfgm.Get))
	reports := report.NewWriter(p.Reports, cfg.Reports.Format)

	port := dispatch.NewTelegram(dispatch.TelegramConfig{
		Timeout:    durs.SendTimeout,
		RatePerSec: cfg.Sending.RatePerSec,
	}, root.With(logx.String("comp", "dispatch")))

	eng := engine.New(context.Background(), engine.Deps{
		Sessions:  sessions,
		Backups:   stores.Backups,
		Templates: stores.Templates,
		Loops:     stores.Loops,
		Port:      port,
		Reports:   reports,
		Notifier:  bot.NewNotifier(ad, sessions, tr, root),
		Bus:       bus,
		Log:       root,
	}, mapTiming(cfg))

	machine := conversation.New(mapAccessConfig(cfg), conversation.Deps{
		Sessions:  sessions,
		Backups:   stores.Backups,
		Templates: stores.Templates,
		Loops:     stores.Loops,
		Engine:    eng,
		Files:     bot.NewFiles(ad, p.Downloads, p.Media, 0),
		Parse:     sheet.Parse,
		I18n:      tr,
		Log:       root,
	})

	return &App{
		cfgm:     cfgm,
		log:      log,
		logs:     logSvc,
		bus:      bus,
		tr:       tr,
		adapter:  ad,
		stores:   stores,
		paths:    p,
		sessions: sessions,
		reports:  reports,
		engine:   eng,
		machine:  machine,
		router:   bot.NewRouter(bot.Config{}, ad, machine, root),
		maint:    maintenance.New("", root),
		updates:  make(chan kit.Update, 256),
	}, nil
}

// Done is closed when the app supervisor context is canceled (fatal error or Stop).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor.
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))
	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))

	a.logPendingBackup(ctx)

	if err := a.adapter.Start(a.sup.Context(), a.updates); err != nil {
		return err
	}
	mctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := a.adapter.UpdateMenuCommands(mctx, bot.MenuCommands(a.tr, a.tr.Default())); err != nil {
		a.log.Warn("publish command menu failed", logx.Err(err))
	}
	cancel()

	if err := a.scheduleMaintenance(a.cfgm.Get()); err != nil {
		return err
	}
	a.maint.Start(a.sup.Context())

	a.sup.Go("telegram.dispatch", func(c context.Context) error {
		return a.router.DispatchLoop(c, a.updates)
	})

	events, unsub := a.bus.Subscribe(128)
	a.sup.Go0("eventbus.runs", func(c context.Context) {
		defer unsub()
		for {
			select {
			case <-c.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				a.onEvent(c, e)
			}
		}
	})

	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		last := a.cfgm.Get()
		for {
			select {
			case <-c.Done():
				return
			case next, ok := <-sub:
				if !ok {
					return
				}
				a.applyConfig(last, next)
				last = next
			}
		}
	})
	a.sup.Go("config.watch", a.cfgm.Watch)

	a.log.Info("app started",
		logx.String("config", a.cfgm.Path()),
		logx.String("data_dir", a.paths.Data),
		logx.String("reports_dir", a.paths.Reports),
	)
	return nil
}

func (a *App) logPendingBackup(ctx context.Context) {
	snap, err := a.stores.Backups.Load(ctx)
	switch {
	case err != nil:
		a.log.Warn("backup unreadable; treating as absent", logx.Err(err))
	case snap != nil:
		a.log.Info("unfinished run found; owner can resume with /start",
			logx.Int64("owner", snap.OwnerUserID),
			logx.Int("remaining", len(snap.Queue)),
			logx.Int("processed", len(snap.Processed)),
			logx.Time("saved_at", snap.Timestamp),
		)
	}
}

func (a *App) scheduleMaintenance(cfg *config.Config) error {
	durs, err := cfg.Durations()
	if err != nil {
		return err
	}
	spec := cfg.SweepSchedule()
	jobs := []maintenance.Job{
		{Name: "reports.sweep", Spec: spec, Timeout: maintenanceTimeout,
			Run: maintenance.SweepReports(a.reports, durs.Retention, nil)},
		{Name: "downloads.sweep", Spec: spec, Timeout: maintenanceTimeout,
			Run: maintenance.SweepDir(a.paths.Downloads, durs.Retention, nil, nil)},
		{Name: "media.sweep", Spec: spec, Timeout: maintenanceTimeout,
			Run: maintenance.SweepDir(a.paths.Media, durs.Retention, maintenance.KeepReferenced(a.stores.Templates), nil)},
	}
	for _, j := range jobs {
		if err := a.maint.Add(j); err != nil {
			return fmt.Errorf("maintenance %s: %w", j.Name, err)
		}
	}
	return nil
}

func (a *App) onEvent(ctx context.Context, e eventbus.Event) {
	rd, ok := e.Data.(eventbus.RunData)
	if !ok {
		a.log.Debug("event", logx.String("type", e.Type), logx.Time("time", e.Time))
		return
	}
	a.log.Info("run event",
		logx.String("type", e.Type),
		logx.String("run_id", rd.RunID),
		logx.Int64("user_id", rd.UserID),
		logx.Int("sent", rd.Sent),
		logx.Int("failed", rd.Failed),
		logx.Int("remaining", rd.Remaining),
	)

	admin := a.cfgm.Get().Telegram.AdminUserID
	if admin == 0 || admin == rd.UserID {
		return
	}
	lang := a.tr.Default()
	user := strconv.FormatInt(rd.UserID, 10)
	var text string
	switch e.Type {
	case eventbus.RunFinished:
		text = a.tr.T(lang, "admin_run_finished", "user", user,
			"sent", strconv.Itoa(rd.Sent), "failed", strconv.Itoa(rd.Failed))
	case eventbus.RunCancelled:
		text = a.tr.T(lang, "admin_run_cancelled", "user", user, "remaining", strconv.Itoa(rd.Remaining))
	default:
		return
	}
	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := a.adapter.SendText(sctx, kit.ChatTarget{ChatID: admin}, text, nil); err != nil {
		a.log.Debug("admin notice failed", logx.Err(err))
	}
}

// applyConfig pushes a validated reload into the live components. Sections
// that are only read at startup are reported as needing a restart.
func (a *App) applyConfig(prev, next *config.Config) {
	sections, attrs := config.SummarizeConfigChange(prev, next)
	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}

	a.logs.SetAdminTarget(next.Telegram.AdminUserID)
	a.logs.Apply(mapLogConfig(next))
	a.machine.SetConfig(mapAccessConfig(next))
	a.engine.SetTiming(mapTiming(next))

	var restart []string
	for _, s := range sections {
		switch s {
		case "storage", "languages", "reports":
			restart = append(restart, s)
		case "telegram":
			if prev.Telegram.Token != next.Telegram.Token || prev.Telegram.PollTimeout != next.Telegram.PollTimeout {
				restart = append(restart, s)
			}
		case "sending":
			if prev.Sending.SendTimeout != next.Sending.SendTimeout || prev.Sending.RatePerSec != next.Sending.RatePerSec {
				restart = append(restart, s)
			}
		}
	}
	if len(restart) > 0 {
		a.log.Warn("config sections changed; restart required for them to take effect",
			logx.String("sections", strings.Join(restart, ",")))
	}

	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Info("config reloaded", fields...)
}

// Stop shuts components down in dependency order, each step bounded. Runs are
// interrupted without touching their backups so they can be resumed.
func (a *App) Stop(ctx context.Context, reason StopReason) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping", logx.String("reason", string(reason)))
	a.sup.Cancel()

	var errs []error
	step := func(name string, limit time.Duration, fn func(context.Context) error) {
		start := time.Now()
		stepCtx := ctx
		if dl, ok := ctx.Deadline(); ok && time.Until(dl) < limit {
			limit = time.Until(dl)
		}
		if limit > 0 {
			var cancel context.CancelFunc
			stepCtx, cancel = context.WithTimeout(ctx, limit)
			defer cancel()
		}

		done := make(chan error, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("panic in stop step %s: %v", name, r)
				}
			}()
			done <- fn(stepCtx)
		}()

		select {
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
			a.log.Debug("stop step end", logx.String("name", name), logx.Duration("took", time.Since(start)))
		case <-stepCtx.Done():
			a.log.Warn("stop step deadline reached (continuing)",
				logx.String("name", name),
				logx.Duration("elapsed", time.Since(start)),
			)
		}
	}

	step("engine", 5*time.Second, a.engine.Stop)
	step("maintenance", 2*time.Second, func(c context.Context) error { a.maint.Stop(c); return nil })
	step("adapter", 2*time.Second, a.adapter.Stop)
	step("supervisor", 3*time.Second, a.sup.Wait)

	gc := a.sup.Counters()
	a.log.Info("stopped",
		logx.Int("sessions", a.sessions.Len()),
		logx.Uint64("goroutines_started", gc.Started),
		logx.Int64("goroutines_leftover", gc.Active),
	)
	if err := a.logs.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
