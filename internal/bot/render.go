package bot

import (
	"context"
	"errors"

	tele "gopkg.in/telebot.v4"

	"dispatchbot/internal/conversation"
	kit "dispatchbot/internal/transport"
	logx "dispatchbot/pkg/logx"
	"dispatchbot/pkg/tgui"
)

// Renderer sends conversation replies through the adapter.
type Renderer struct {
	ad  kit.Adapter
	log logx.Logger
}

func NewRenderer(ad kit.Adapter, log logx.Logger) *Renderer {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Renderer{ad: ad, log: log}
}

// Render sends replies in order. At most one reply edits source; when the edit
// fails the reply is sent as a new message. Every reply is attempted.
func (r *Renderer) Render(ctx context.Context, to kit.ChatTarget, source *kit.MessageRef, replies []conversation.Reply) error {
	var errs []error
	for _, rep := range replies {
		if err := r.one(ctx, to, &source, rep); err != nil {
			r.log.Warn("reply failed", logx.Int64("chat_id", to.ChatID), logx.Err(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Renderer) one(ctx context.Context, to kit.ChatTarget, source **kit.MessageRef, rep conversation.Reply) error {
	opt := &kit.SendOptions{ParseMode: tele.ModeHTML, DisablePreview: true}
	if rm := r.markup(rep.Keyboard); rm != nil {
		opt.ReplyMarkupAdapter = rm
	}

	switch {
	case rep.Photo != "":
		_, err := r.ad.SendPhoto(ctx, to, rep.Photo, rep.Text, opt)
		return err
	case rep.Document != "":
		_, err := r.ad.SendDocument(ctx, to, rep.Document, rep.Text, opt)
		return err
	}

	if rep.Edit && *source != nil {
		ref := **source
		*source = nil
		err := r.ad.EditText(ctx, ref, rep.Text, opt)
		if err == nil {
			return nil
		}
		r.log.Debug("edit failed, sending instead", logx.Err(err))
	}
	if rep.Text == "" {
		return nil
	}
	_, err := r.ad.SendText(ctx, to, rep.Text, opt)
	return err
}

// markup converts keyboard rows. Buttons whose callback data would be rejected
// by Telegram are dropped.
func (r *Renderer) markup(rows [][]conversation.Button) *tele.ReplyMarkup {
	kb := tgui.NewInline()
	for _, row := range rows {
		btns := make([]tele.Btn, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				btns = append(btns, tgui.URLBtn(b.Text, b.URL))
				continue
			}
			if err := tgui.CheckCallbackData(b.Data); err != nil {
				r.log.Warn("button dropped", logx.String("data", b.Data), logx.Err(err))
				continue
			}
			btns = append(btns, tgui.Btn(b.Text, b.Data))
		}
		kb.Row(btns...)
	}
	return kb.Markup()
}
