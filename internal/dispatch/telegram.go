package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	"dispatchbot/internal/model"
	logx "dispatchbot/pkg/logx"
	"dispatchbot/pkg/tgui"
)

type TelegramConfig struct {
	// Timeout bounds one send call (HTTP included). Default 30s.
	Timeout time.Duration
	// RatePerSec limits sends per credential. Default 20.
	RatePerSec int
	// APIURL overrides the Bot API endpoint (tests, local bot API servers).
	APIURL string
}

// Telegram sends rows through the Bot API, using the row's own bot token.
type Telegram struct {
	cfg    TelegramConfig
	log    logx.Logger
	client *http.Client

	mu   sync.Mutex
	bots map[string]*credentialBot
}

type credentialBot struct {
	bot     *tele.Bot
	limiter *rate.Limiter
}

func NewTelegram(cfg TelegramConfig, log logx.Logger) *Telegram {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 20
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Telegram{
		cfg:    cfg,
		log:    log,
		client: &http.Client{Timeout: cfg.Timeout},
		bots:   map[string]*credentialBot{},
	}
}

// chatRef addresses a chat by numeric id or @username, as written in the sheet.
type chatRef string

func (c chatRef) Recipient() string { return string(c) }

func (t *Telegram) botFor(credential string) (*credentialBot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cb, ok := t.bots[credential]; ok {
		return cb, nil
	}
	b, err := tele.NewBot(tele.Settings{
		Token:   credential,
		URL:     t.cfg.APIURL,
		Client:  t.client,
		Offline: true,
	})
	if err != nil {
		return nil, err
	}
	cb := &credentialBot{bot: b, limiter: rate.NewLimiter(rate.Limit(t.cfg.RatePerSec), t.cfg.RatePerSec)}
	t.bots[credential] = cb
	return cb, nil
}

func (t *Telegram) SendPlain(ctx context.Context, credential, destination, body string) Result {
	return t.send(ctx, credential, destination, func(b *tele.Bot, to chatRef) (*tele.Message, error) {
		return b.Send(to, body, &tele.SendOptions{ParseMode: tele.ModeHTML})
	})
}

func (t *Telegram) SendTemplate(ctx context.Context, credential, destination string, tpl model.Template) Result {
	return t.send(ctx, credential, destination, func(b *tele.Bot, to chatRef) (*tele.Message, error) {
		opts := &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: buttonsMarkup(tpl.Buttons)}
		photo := strings.TrimSpace(tpl.Photo)
		if photo == "" {
			return b.Send(to, tpl.Text, opts)
		}
		if utf8.RuneCountInString(tpl.Text) <= tgui.MaxCaptionLen {
			return b.Send(to, &tele.Photo{File: photoFile(photo), Caption: tpl.Text}, opts)
		}
		// Caption too long: photo first, then the text carrying the buttons.
		if _, err := b.Send(to, &tele.Photo{File: photoFile(photo)}); err != nil {
			return nil, err
		}
		return b.Send(to, tpl.Text, opts)
	})
}

func (t *Telegram) send(ctx context.Context, credential, destination string, fn func(*tele.Bot, chatRef) (*tele.Message, error)) (res Result) {
	// Transport errors quote the request URL, which embeds the token.
	defer func() {
		if !res.Success {
			res.Error = redact(res.Error, credential)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("send panicked", logx.String("credential", model.MaskCredential(credential)), logx.Any("panic", r))
			res = failure(fmt.Sprintf("internal error: %v", r))
		}
	}()

	credential = strings.TrimSpace(credential)
	destination = strings.TrimSpace(destination)
	if credential == "" || destination == "" {
		return failure("missing credential or destination")
	}

	cb, err := t.botFor(credential)
	if err != nil {
		return failure(err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()
	if err := cb.limiter.Wait(ctx); err != nil {
		return failure(describe(err, t.cfg.Timeout))
	}

	type outcome struct {
		msg *tele.Message
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("internal error: %v", r)}
			}
		}()
		m, err := fn(cb.bot, chatRef(destination))
		done <- outcome{msg: m, err: err}
	}()

	select {
	case <-ctx.Done():
		return failure(describe(ctx.Err(), t.cfg.Timeout))
	case o := <-done:
		if o.err != nil {
			return failure(describe(o.err, t.cfg.Timeout))
		}
		id := ""
		if o.msg != nil {
			id = fmt.Sprint(o.msg.ID)
		}
		return Result{Success: true, MessageID: id, Timestamp: time.Now()}
	}
}

func failure(reason string) Result {
	return Result{Success: false, Error: reason, Timestamp: time.Now()}
}

func redact(msg, credential string) string {
	if credential == "" || msg == "" {
		return msg
	}
	return strings.ReplaceAll(msg, credential, model.MaskCredential(credential))
}

func describe(err error, timeout time.Duration) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("timeout after %s", timeout)
	}
	if errors.Is(err, context.Canceled) {
		return "cancelled"
	}
	return err.Error()
}

func photoFile(ref string) tele.File {
	low := strings.ToLower(ref)
	if strings.HasPrefix(low, "http://") || strings.HasPrefix(low, "https://") {
		return tele.FromURL(ref)
	}
	if _, err := os.Stat(ref); err == nil {
		return tele.FromDisk(ref)
	}
	return tele.File{FileID: ref}
}

func buttonsMarkup(buttons []model.Button) *tele.ReplyMarkup {
	if len(buttons) == 0 {
		return nil
	}
	kb := tgui.NewInline()
	for _, b := range buttons {
		kb.Row(tgui.URLBtn(b.Text, b.URL))
	}
	return kb.Markup()
}
