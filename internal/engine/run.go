package engine

import (
	"context"
	"os"
	"time"

	"dispatchbot/internal/dispatch"
	"dispatchbot/internal/eventbus"
	"dispatchbot/internal/model"
	"dispatchbot/internal/session"
	logx "dispatchbot/pkg/logx"
)

func (s *Service) loop(ctx context.Context, r *run) {
	uid := r.userID
	log := s.log.With(logx.String("run_id", r.id), logx.Int64("user_id", uid))
	processed := r.processed
	batchOverride := 0

	for {
		if ctx.Err() != nil {
			log.Info("run interrupted by shutdown", logx.Int("processed", len(processed)))
			return
		}
		sess := s.d.Sessions.View(uid)
		if !sess.SendingActive {
			sent, failed := model.CountStatus(processed)
			log.Info("run cancelled", logx.Int("sent", sent), logx.Int("failed", failed), logx.Int("remaining", len(sess.Queue)))
			s.publish(eventbus.RunCancelled, eventbus.RunData{RunID: r.id, UserID: uid, Sent: sent, Failed: failed, Remaining: len(sess.Queue)})
			return
		}
		if sess.SendingPaused {
			s.sleep(ctx, r, s.currentTiming().PausePoll, true)
			continue
		}

		limit := sess.Config.BatchSize
		if batchOverride > 0 {
			limit = batchOverride
		}
		if limit <= 0 {
			limit = 1
		}

		halted := false
		for n := 0; n < limit; n++ {
			if ctx.Err() != nil {
				halted = true
				break
			}
			row, tplName, got, stop := s.pop(uid)
			if stop {
				halted = true
				break
			}
			if !got {
				break
			}
			// In-flight sends finish even on shutdown; the port bounds them.
			res := s.deliver(context.WithoutCancel(ctx), row, tplName)
			dispatch.Apply(&row, res)
			processed = append(processed, row)

			after := s.d.Sessions.View(uid)
			s.checkpoint(ctx, after, processed)

			kind := NoticeRowSent
			if row.Status == model.StatusFailed {
				kind = NoticeRowFailed
				log.Warn("row failed", logx.String("destination", row.Destination), logx.String("error", row.Error))
			}
			s.notify(ctx, Notice{Kind: kind, UserID: uid, RunID: r.id, Row: row, Remaining: len(after.Queue)})
		}
		if halted {
			continue
		}

		sess = s.d.Sessions.View(uid)
		if !sess.SendingActive {
			continue
		}
		if len(sess.Queue) == 0 {
			cfg, ok := s.restartCycle(ctx, r, processed)
			if !ok {
				s.Finalize(ctx, uid, processed)
				return
			}
			processed = nil
			batchOverride = cfg.MessagesPerCycle
			wait := cfg.IntervalMinutes
			if wait <= 0 {
				wait = sess.Config.IntervalMinutes
			}
			s.sleep(ctx, r, s.minutes(wait), false)
			continue
		}

		if sess.SendingPaused {
			continue
		}
		d := s.minutes(sess.Config.IntervalMinutes)
		s.notify(ctx, Notice{Kind: NoticeWaiting, UserID: uid, RunID: r.id, Remaining: len(sess.Queue), Wait: d, Minutes: sess.Config.IntervalMinutes})
		s.sleep(ctx, r, d, false)
	}
}

// pop removes the head of the queue under the session lock. stop is true when
// the flags no longer allow sending.
func (s *Service) pop(userID int64) (row model.Row, tplName string, got, stop bool) {
	s.d.Sessions.Update(userID, func(ss *session.Session) {
		if !ss.SendingActive || ss.SendingPaused {
			stop = true
			return
		}
		if len(ss.Queue) == 0 {
			return
		}
		row = ss.Queue[0]
		ss.Queue = ss.Queue[1:]
		tplName = ss.SelectedTemplate
		got = true
	})
	return row, tplName, got, stop
}

// deliver sends the selected template when it still exists, else the row body.
func (s *Service) deliver(ctx context.Context, row model.Row, tplName string) dispatch.Result {
	if tplName != "" && s.d.Templates != nil {
		tpl, ok, err := s.d.Templates.Get(ctx, tplName)
		switch {
		case err != nil:
			s.log.Warn("template lookup failed", logx.String("template", tplName), logx.Err(err))
		case ok && !tpl.Empty():
			return s.d.Port.SendTemplate(ctx, row.Credential, row.Destination, tpl)
		}
	}
	return s.d.Port.SendPlain(ctx, row.Credential, row.Destination, row.Body)
}

// sleep waits d. Signals end the wait when wakeOnSignal is set; otherwise only
// a cancel (active flag cleared) does.
func (s *Service) sleep(ctx context.Context, r *run, d time.Duration, wakeOnSignal bool) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			return
		case <-r.wake:
			if wakeOnSignal || !s.d.Sessions.View(r.userID).SendingActive {
				return
			}
		}
	}
}

// restartCycle refills the queue from the original rows when loop mode asks
// for it. A report for the finished cycle is written first.
func (s *Service) restartCycle(ctx context.Context, r *run, processed []model.Row) (model.LoopConfig, bool) {
	if s.d.Loops == nil {
		return model.LoopConfig{}, false
	}
	cfg, ok, err := s.d.Loops.Get(ctx, r.userID)
	if err != nil {
		s.log.Warn("loop config read failed", logx.Int64("user_id", r.userID), logx.Err(err))
		return model.LoopConfig{}, false
	}
	if !ok || !cfg.Restarts() {
		return cfg, false
	}
	if len(s.d.Sessions.View(r.userID).Original) == 0 {
		return cfg, false
	}

	n := Notice{Kind: NoticeLoopRestart, UserID: r.userID, RunID: r.id, Minutes: cfg.IntervalMinutes}
	if s.d.Reports != nil {
		path, sum, err := s.d.Reports.Generate(processed, r.userID)
		if err != nil {
			s.log.Warn("cycle report failed", logx.Int64("user_id", r.userID), logx.Err(err))
		} else if fileExists(path) {
			n.ReportPath = path
		}
		n.Summary = sum
	}

	sess := s.d.Sessions.Update(r.userID, func(ss *session.Session) {
		ss.Queue = model.ResetRows(ss.Original)
		if cfg.TemplateName != "" {
			ss.SelectedTemplate = cfg.TemplateName
		}
	})
	s.checkpoint(ctx, sess, nil)

	n.Remaining = len(sess.Queue)
	n.Wait = s.minutes(cfg.IntervalMinutes)
	s.notify(ctx, n)
	s.publish(eventbus.RunCycle, eventbus.RunData{
		RunID: r.id, UserID: r.userID, Sent: n.Summary.Sent, Failed: n.Summary.Failed,
		Remaining: len(sess.Queue), ReportPath: n.ReportPath,
	})
	s.log.Info("loop cycle restarted", logx.String("run_id", r.id), logx.Int64("user_id", r.userID), logx.Int("queued", len(sess.Queue)))
	return cfg, true
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
