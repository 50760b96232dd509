// Package dispatch sends one row through the messaging API.
//
// Port methods never return errors: every failure, including timeouts and panics,
// comes back as a Result with Success=false.
package dispatch

import (
	"context"
	"time"

	"dispatchbot/internal/model"
)

type Result struct {
	Success   bool
	MessageID string
	Error     string
	Timestamp time.Time
}

type Port interface {
	SendPlain(ctx context.Context, credential, destination, body string) Result
	SendTemplate(ctx context.Context, credential, destination string, tpl model.Template) Result
}

// Apply records r on row.
func Apply(row *model.Row, r Result) {
	at := r.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	if r.Success {
		row.MarkSent(r.MessageID, at)
		return
	}
	row.MarkFailed(r.Error, at)
}
