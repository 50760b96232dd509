package conversation

import (
	"context"

	"dispatchbot/internal/engine"
	"dispatchbot/internal/model"
)

type EventKind uint8

const (
	// EventStart is /start, /menu or /help; Command holds which.
	EventStart EventKind = iota + 1
	EventLanguage
	EventText
	EventDocument
	EventPhoto
	EventCallback
)

// File is an inbound attachment reference.
type File struct {
	ID   string
	Name string
	Size int64
}

type Event struct {
	Kind     EventKind
	UserID   int64
	ChatID   int64
	LangCode string

	Command string
	Text    string
	// Data is the callback payload.
	Data string
	File *File
}

// Button is either a callback button (Data) or a link (URL).
type Button struct {
	Text string
	Data string
	URL  string
}

// Reply is one outbound message. Text is HTML.
type Reply struct {
	Text     string
	Keyboard [][]Button
	// Edit replaces the message the callback came from instead of sending a new one.
	Edit bool
	// Photo, when set, sends a photo with Text as caption.
	Photo string
	// Document, when set, sends the file at this path with Text as caption.
	Document string
}

type BackupStore interface {
	Load(ctx context.Context) (*model.Snapshot, error)
	Clear(ctx context.Context) error
}

type TemplateStore interface {
	Get(ctx context.Context, name string) (model.Template, bool, error)
	List(ctx context.Context) ([]model.Template, error)
	Save(ctx context.Context, t model.Template) (model.Template, error)
	Delete(ctx context.Context, name string) error
}

type LoopStore interface {
	Get(ctx context.Context, userID int64) (model.LoopConfig, bool, error)
	Update(ctx context.Context, userID int64, fn func(c *model.LoopConfig)) (model.LoopConfig, error)
}

type Engine interface {
	Start(userID int64, opts engine.StartOptions) (string, error)
	Pause(userID int64)
	Resume(userID int64)
	Cancel(userID int64)
	Active(userID int64) bool
}

// FileFetcher stores inbound attachments locally and returns their paths.
type FileFetcher interface {
	FetchDocument(ctx context.Context, f File) (string, error)
	FetchPhoto(ctx context.Context, f File) (string, error)
}

// SheetParser turns an uploaded file into rows.
type SheetParser func(path string) ([]model.Row, error)
