package transport

import "context"

type UpdateKind string

const (
	UpdateMessage  UpdateKind = "message"
	UpdateCallback UpdateKind = "callback"
)

type Update struct {
	Kind     UpdateKind
	Message  *Message
	Callback *Callback
}

// UserID returns the sender of the update (0 when unknown).
func (u Update) UserID() int64 {
	switch {
	case u.Message != nil:
		return u.Message.FromID
	case u.Callback != nil:
		return u.Callback.FromID
	}
	return 0
}

type Message struct {
	ID           int
	ChatID       int64
	FromID       int64
	FromUsername string
	LangCode     string
	Text         string
	IsPrivate    bool

	// Document or Photo is set for file messages; Text then holds the caption.
	Document *File
	Photo    *File
}

// File references an attachment on the platform side.
type File struct {
	ID   string
	Name string
	Size int64
}

type Callback struct {
	ID        string
	FromID    int64
	LangCode  string
	ChatID    int64
	MessageID int
	Data      string
}

type ChatTarget struct {
	ChatID int64
}

type MessageRef struct {
	ChatID    int64
	MessageID int
}

type SendOptions struct {
	ParseMode          string
	DisablePreview     bool
	ReplyMarkupAdapter any // adapter-specific markup (Telegram: *telebot.ReplyMarkup)
}

type Adapter interface {
	Start(ctx context.Context, out chan<- Update) error
	Stop(ctx context.Context) error

	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
	EditText(ctx context.Context, ref MessageRef, text string, opt *SendOptions) error
	AnswerCallback(ctx context.Context, callbackID string, text string) error

	// SendPhoto sends an image by local path, http(s) URL or platform file id.
	SendPhoto(ctx context.Context, to ChatTarget, photo, caption string, opt *SendOptions) (MessageRef, error)
	SendDocument(ctx context.Context, to ChatTarget, path, caption string, opt *SendOptions) (MessageRef, error)
	// Download stores the attachment fileID at dst.
	Download(ctx context.Context, fileID, dst string) error
}

type BotCommand struct {
	Command     string
	Description string
}

// CommandMenuUpdater is implemented by adapters that can publish a command menu.
type CommandMenuUpdater interface {
	UpdateMenuCommands(ctx context.Context, cmds []BotCommand) error
}
