package engine

import (
	"context"

	"dispatchbot/internal/eventbus"
	"dispatchbot/internal/model"
	"dispatchbot/internal/report"
	"dispatchbot/internal/session"
	logx "dispatchbot/pkg/logx"
)

// Finalize closes a drained run: report, completion notices, session reset,
// backup removal. It returns false without side effects beyond clearing the
// sending flags when no backup exists, so a second call is a no-op.
// fallback is used when the backup cannot be read or belongs to another
// user's run; that backup is left in place.
func (s *Service) Finalize(ctx context.Context, userID int64, fallback []model.Row) bool {
	ctx = context.WithoutCancel(ctx)
	var rows []model.Row
	clearBackup := false
	if s.d.Backups != nil {
		snap, err := s.d.Backups.Load(ctx)
		switch {
		case err != nil:
			s.log.Warn("backup read failed during finalize, using in-memory rows", logx.Int64("user_id", userID), logx.Err(err))
			rows = fallback
			clearBackup = true
		case snap == nil:
			s.resetFlags(userID)
			return false
		case snap.OwnerUserID != userID:
			// Already finalized, or never started: nothing of ours to close.
			if !s.d.Sessions.View(userID).SendingActive {
				return false
			}
			s.log.Info("backup held by another run, using in-memory rows",
				logx.Int64("user_id", userID), logx.Int64("backup_owner", snap.OwnerUserID))
			rows = fallback
		default:
			rows = snap.Processed
			clearBackup = true
		}
	} else {
		rows = fallback
	}

	sum := report.Summarize(rows)
	path := ""
	if s.d.Reports != nil {
		p, sm, err := s.d.Reports.Generate(rows, userID)
		if err != nil {
			s.log.Error("report failed", logx.Int64("user_id", userID), logx.Err(err))
		} else {
			path, sum = p, sm
		}
	}

	runID := ""
	if r := s.lookup(userID); r != nil {
		runID = r.id
	}
	s.notify(ctx, Notice{Kind: NoticeCompleted, UserID: userID, RunID: runID, Summary: sum})
	if fileExists(path) {
		s.notify(ctx, Notice{Kind: NoticeReport, UserID: userID, RunID: runID, Summary: sum, ReportPath: path})
	}
	s.notify(ctx, Notice{Kind: NoticeNewSheet, UserID: userID, RunID: runID})

	s.d.Sessions.Update(userID, func(ss *session.Session) {
		ss.SendingActive = false
		ss.SendingPaused = false
		ss.Queue = nil
		ss.State = session.StateCompleted
	})
	if clearBackup {
		if err := s.d.Backups.Clear(ctx); err != nil {
			s.log.Warn("backup clear failed", logx.Int64("user_id", userID), logx.Err(err))
		}
	}

	s.log.Info("run finished",
		logx.String("run_id", runID),
		logx.Int64("user_id", userID),
		logx.Int("total", sum.Total),
		logx.Int("sent", sum.Sent),
		logx.Int("failed", sum.Failed),
	)
	s.publish(eventbus.RunFinished, eventbus.RunData{
		RunID: runID, UserID: userID, Sent: sum.Sent, Failed: sum.Failed, ReportPath: path,
	})
	return true
}

func (s *Service) resetFlags(userID int64) {
	s.d.Sessions.Update(userID, func(ss *session.Session) {
		ss.SendingActive = false
		ss.SendingPaused = false
	})
}
