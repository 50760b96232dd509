// Package bot connects the Telegram adapter to the conversation machine:
// it routes updates to per-user ordered workers, renders replies and
// delivers run notices.
package bot

import (
	"context"
	"runtime"
	"strconv"
	"strings"
	"time"

	"dispatchbot/internal/conversation"
	"dispatchbot/internal/runtime/supervisor"
	kit "dispatchbot/internal/transport"
	logx "dispatchbot/pkg/logx"
)

type Config struct {
	// Workers is the number of shards. A user always lands on the same shard,
	// so one user's updates are handled in arrival order. Default NumCPU (min 2).
	Workers int
	// QueueSize bounds each shard's backlog. Default 64.
	QueueSize int
	// HandlerTimeout bounds one update, rendering included. Default 60s.
	HandlerTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = max(runtime.NumCPU(), 2)
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.HandlerTimeout <= 0 {
		c.HandlerTimeout = 60 * time.Second
	}
	return c
}

// Handler turns events into replies. *conversation.Machine implements it.
type Handler interface {
	Handle(ctx context.Context, ev conversation.Event) []conversation.Reply
}

type Router struct {
	cfg    Config
	log    logx.Logger
	ad     kit.Adapter
	h      Handler
	render *Renderer
	chain  HandlerFunc
}

func NewRouter(cfg Config, ad kit.Adapter, h Handler, log logx.Logger) *Router {
	if log.IsZero() {
		log = logx.Nop()
	}
	log = log.With(logx.String("comp", "telegram.router"))
	r := &Router{cfg: cfg.withDefaults(), log: log, ad: ad, h: h, render: NewRenderer(ad, log)}
	r.chain = Chain(r.serve,
		MWPanicRecover(log),
		MWRequestLog(log),
		MWTimeout(r.cfg.HandlerTimeout),
	)
	return r
}

func (r *Router) serve(ctx context.Context, req *Request) error {
	if req.Update.Kind == kit.UpdateCallback && req.Update.Callback != nil {
		if err := r.ad.AnswerCallback(ctx, req.Update.Callback.ID, ""); err != nil {
			req.Logger.Debug("answer callback failed", logx.Err(err))
		}
	}
	replies := r.h.Handle(ctx, req.Event)
	return r.render.Render(ctx, req.Chat, req.Source, replies)
}

// DispatchLoop consumes updates until ctx is done or updates is closed.
func (r *Router) DispatchLoop(ctx context.Context, updates <-chan kit.Update) error {
	sup := supervisor.New(ctx,
		supervisor.WithLogger(r.log),
		supervisor.WithCancelOnError(false),
	)
	shards := make([]chan *Request, r.cfg.Workers)
	for i := range shards {
		shards[i] = make(chan *Request, r.cfg.QueueSize)
	}
	r.log.Info("dispatcher started", logx.Int("workers", len(shards)), logx.Int("queue_cap", r.cfg.QueueSize))

	for i, jobs := range shards {
		idx := i
		sup.GoRestart("router.worker."+strconv.Itoa(idx), func(c context.Context) error {
			for {
				select {
				case <-c.Done():
					return nil
				case req, ok := <-jobs:
					if !ok {
						return nil
					}
					_ = r.chain(c, req)
				}
			}
		},
			supervisor.WithRestartBackoff(200*time.Millisecond, 5*time.Second),
			supervisor.WithStopOnCleanExit(true),
		)
	}

	defer func() {
		for _, jobs := range shards {
			close(jobs)
		}
		wctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		_ = sup.Wait(wctx)
		cancel()
		r.log.Info("dispatcher stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			req, ok := r.request(up)
			if !ok {
				continue
			}
			jobs := shards[shardFor(req.Event.UserID, len(shards))]
			select {
			case jobs <- req:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func shardFor(userID int64, n int) int {
	if userID < 0 {
		userID = -userID
	}
	return int(userID % int64(n))
}

// request maps an update onto a conversation event. Messages outside private
// chats are ignored.
func (r *Router) request(up kit.Update) (*Request, bool) {
	switch {
	case up.Kind == kit.UpdateCallback && up.Callback != nil:
		cb := up.Callback
		if cb.FromID == 0 {
			return nil, false
		}
		return &Request{
			Update: up,
			Chat:   kit.ChatTarget{ChatID: cb.ChatID},
			Source: &kit.MessageRef{ChatID: cb.ChatID, MessageID: cb.MessageID},
			Event: conversation.Event{
				Kind: conversation.EventCallback, UserID: cb.FromID, ChatID: cb.ChatID,
				LangCode: cb.LangCode, Data: cb.Data,
			},
			Logger: r.log.With(logx.Int64("user_id", cb.FromID)),
		}, true

	case up.Kind == kit.UpdateMessage && up.Message != nil:
		m := up.Message
		if !m.IsPrivate || m.FromID == 0 {
			return nil, false
		}
		ev := conversation.Event{UserID: m.FromID, ChatID: m.ChatID, LangCode: m.LangCode, Text: m.Text}
		switch {
		case m.Document != nil:
			ev.Kind = conversation.EventDocument
			ev.File = &conversation.File{ID: m.Document.ID, Name: m.Document.Name, Size: m.Document.Size}
		case m.Photo != nil:
			ev.Kind = conversation.EventPhoto
			ev.File = &conversation.File{ID: m.Photo.ID, Name: m.Photo.Name, Size: m.Photo.Size}
		default:
			ev.Kind = conversation.EventText
			if cmd, ok := parseCommand(m.Text); ok {
				switch cmd {
				case CmdStart, CmdMenu, CmdHelp:
					ev.Kind, ev.Command = conversation.EventStart, cmd
				case CmdLanguage:
					ev.Kind, ev.Command = conversation.EventLanguage, cmd
				}
			}
		}
		return &Request{
			Update: up,
			Chat:   kit.ChatTarget{ChatID: m.ChatID},
			Event:  ev,
			Logger: r.log.With(logx.Int64("user_id", m.FromID)),
		}, true
	}
	return nil, false
}

// parseCommand returns "start" for "/start", "/Start@my_bot args" and so on.
func parseCommand(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	word, _, _ := strings.Cut(text[1:], " ")
	word, _, _ = strings.Cut(word, "@")
	word = strings.ToLower(word)
	return word, word != ""
}
