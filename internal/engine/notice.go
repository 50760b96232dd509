package engine

import (
	"context"
	"time"

	"dispatchbot/internal/model"
	"dispatchbot/internal/report"
)

type NoticeKind uint8

const (
	NoticeRowSent NoticeKind = iota + 1
	NoticeRowFailed
	// NoticeWaiting: a batch finished and the run sleeps Wait before the next one.
	NoticeWaiting
	// NoticeLoopRestart: the queue drained and was refilled from the original rows.
	NoticeLoopRestart
	NoticeCompleted
	// NoticeReport carries ReportPath; emitted only when the file exists.
	NoticeReport
	NoticeNewSheet
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeRowSent:
		return "row_sent"
	case NoticeRowFailed:
		return "row_failed"
	case NoticeWaiting:
		return "waiting"
	case NoticeLoopRestart:
		return "loop_restart"
	case NoticeCompleted:
		return "completed"
	case NoticeReport:
		return "report"
	case NoticeNewSheet:
		return "new_sheet"
	default:
		return "unknown"
	}
}

// Notice is one user-facing progress event of a run.
type Notice struct {
	Kind   NoticeKind
	UserID int64
	RunID  string

	Row        model.Row
	Remaining  int
	Wait       time.Duration
	Minutes    int
	Summary    report.Summary
	ReportPath string
}

// Notifier delivers notices to the operator. Errors are logged and otherwise ignored.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

type NotifierFunc func(ctx context.Context, n Notice) error

func (f NotifierFunc) Notify(ctx context.Context, n Notice) error { return f(ctx, n) }
