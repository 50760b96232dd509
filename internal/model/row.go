package model

import (
	"strings"
	"time"
)

type SendStatus string

const (
	StatusPending SendStatus = "pending"
	StatusSent    SendStatus = "sent"
	StatusFailed  SendStatus = "failed"
)

// Row is one spreadsheet line: who sends (Credential), where (Destination) and what (Body).
//
// JSON tags keep the column names operators already use in their sheets.
type Row struct {
	Credential  string     `json:"api_key"`
	Destination string     `json:"chat_id"`
	Body        string     `json:"mensagem"`
	Status      SendStatus `json:"status"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	MessageID   string     `json:"message_id,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// NewRow trims the fields and returns a pending row. ok is false when any field is empty.
func NewRow(credential, destination, body string) (Row, bool) {
	r := Row{
		Credential:  strings.TrimSpace(credential),
		Destination: strings.TrimSpace(destination),
		Body:        strings.TrimSpace(body),
		Status:      StatusPending,
	}
	return r, r.Valid()
}

func (r Row) Valid() bool {
	return r.Credential != "" && r.Destination != "" && r.Body != ""
}

func (r *Row) MarkSent(messageID string, at time.Time) {
	t := at
	r.Status = StatusSent
	r.SentAt = &t
	r.MessageID = messageID
	r.Error = ""
}

func (r *Row) MarkFailed(reason string, at time.Time) {
	t := at
	r.Status = StatusFailed
	r.SentAt = &t
	r.MessageID = ""
	r.Error = strings.TrimSpace(reason)
	if r.Error == "" {
		r.Error = "unknown error"
	}
}

// Reset returns a pending copy of the row (used when replaying the original set).
func (r Row) Reset() Row {
	return Row{Credential: r.Credential, Destination: r.Destination, Body: r.Body, Status: StatusPending}
}

// CloneRows deep-copies rows (SentAt pointers included).
func CloneRows(in []Row) []Row {
	if in == nil {
		return nil
	}
	out := make([]Row, len(in))
	for i, r := range in {
		if r.SentAt != nil {
			t := *r.SentAt
			r.SentAt = &t
		}
		out[i] = r
	}
	return out
}

// ResetRows returns pending copies of rows in the same order.
func ResetRows(in []Row) []Row {
	out := make([]Row, 0, len(in))
	for _, r := range in {
		out = append(out, r.Reset())
	}
	return out
}

// CountStatus returns how many rows were sent and how many failed.
func CountStatus(rows []Row) (sent, failed int) {
	for _, r := range rows {
		switch r.Status {
		case StatusSent:
			sent++
		case StatusFailed:
			failed++
		}
	}
	return sent, failed
}

// MaskCredential hides the secret part of a bot token ("123456:ABC...") for logs and reports.
func MaskCredential(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		secret := s[i+1:]
		if len(secret) <= 4 {
			return s[:i+1] + "****"
		}
		return s[:i+1] + secret[:2] + "****" + secret[len(secret)-2:]
	}
	if len(s) <= 6 {
		return "****"
	}
	return s[:2] + "****" + s[len(s)-2:]
}
