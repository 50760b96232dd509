package bot

import (
	"context"
	"strconv"

	"dispatchbot/internal/conversation"
	"dispatchbot/internal/engine"
	"dispatchbot/internal/i18n"
	"dispatchbot/internal/session"
	kit "dispatchbot/internal/transport"
	logx "dispatchbot/pkg/logx"
)

// Notifier renders run notices in the operator's language and sends them to
// the operator's private chat.
type Notifier struct {
	render   *Renderer
	sessions session.Store
	tr       *i18n.Translator
	log      logx.Logger
}

func NewNotifier(ad kit.Adapter, sessions session.Store, tr *i18n.Translator, log logx.Logger) *Notifier {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Notifier{render: NewRenderer(ad, log), sessions: sessions, tr: tr, log: log.With(logx.String("comp", "notifier"))}
}

func (n *Notifier) Notify(ctx context.Context, nt engine.Notice) error {
	replies := n.replies(nt)
	if len(replies) == 0 {
		return nil
	}
	// Private chat id equals the user id.
	return n.render.Render(ctx, kit.ChatTarget{ChatID: nt.UserID}, nil, replies)
}

func (n *Notifier) replies(nt engine.Notice) []conversation.Reply {
	lang := n.tr.Resolve(n.sessions.View(nt.UserID).Language)
	t := func(key string, kv ...string) string { return n.tr.T(lang, key, kv...) }

	switch nt.Kind {
	case engine.NoticeRowSent:
		return []conversation.Reply{{Text: t("send_success", "chat_id", nt.Row.Destination)}}
	case engine.NoticeRowFailed:
		return []conversation.Reply{{Text: t("send_error", "chat_id", nt.Row.Destination)}}
	case engine.NoticeWaiting:
		return []conversation.Reply{{Text: t("status_waiting")}}
	case engine.NoticeLoopRestart:
		return []conversation.Reply{{Text: t("loop_finished_restart", "interval", strconv.Itoa(nt.Minutes))}}
	case engine.NoticeCompleted:
		return []conversation.Reply{{Text: t("completion_success") + "\n\n" + t("completion_summary",
			"total", strconv.Itoa(nt.Summary.Total),
			"sent", strconv.Itoa(nt.Summary.Sent),
			"failed", strconv.Itoa(nt.Summary.Failed),
		)}}
	case engine.NoticeReport:
		if nt.ReportPath == "" {
			return nil
		}
		return []conversation.Reply{{Text: t("completion_report"), Document: nt.ReportPath}}
	case engine.NoticeNewSheet:
		return []conversation.Reply{{
			Text:     t("completion_new_sheet"),
			Keyboard: [][]conversation.Button{{{Text: t("btn_upload"), Data: conversation.UploadCallbackData}}},
		}}
	default:
		n.log.Debug("unhandled notice", logx.String("kind", nt.Kind.String()))
		return nil
	}
}
