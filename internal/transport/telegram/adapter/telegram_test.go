package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"

	kit "dispatchbot/internal/transport"
	logx "dispatchbot/pkg/logx"
	"dispatchbot/pkg/tgui"
)

type fakeAPI struct {
	mu    sync.Mutex
	calls []string
	texts []string
}

func (f *fakeAPI) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

func newTestAdapter(t *testing.T) (*Adapter, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		method := parts[len(parts)-1]
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		api.mu.Lock()
		api.calls = append(api.calls, method)
		if s, ok := body["text"].(string); ok {
			api.texts = append(api.texts, s)
		}
		api.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch method {
		case "getMe":
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"bot","username":"bot"}}`))
		case "setMyCommands", "answerCallbackQuery":
			_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
		default:
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":9,"date":1700000000,"chat":{"id":5,"type":"private"}}}`))
		}
	}))
	t.Cleanup(srv.Close)

	a, err := New(Config{Token: "1:test", APIURL: srv.URL, PollTimeout: time.Second}, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	return a, api
}

func TestNewRequiresToken(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{Token: " "}, logx.Nop()); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestUpdateMenuCommandsOnlyOnChange(t *testing.T) {
	t.Parallel()
	a, api := newTestAdapter(t)
	ctx := context.Background()
	cmds := []kit.BotCommand{{Command: "start", Description: "Start"}, {Command: "menu"}}

	if err := a.UpdateMenuCommands(ctx, cmds); err != nil {
		t.Fatal(err)
	}
	if err := a.UpdateMenuCommands(ctx, cmds); err != nil {
		t.Fatal(err)
	}
	if n := api.count("setMyCommands"); n != 1 {
		t.Fatalf("setMyCommands calls = %d, want 1", n)
	}
	if err := a.UpdateMenuCommands(ctx, cmds[:1]); err != nil {
		t.Fatal(err)
	}
	if n := api.count("setMyCommands"); n != 2 {
		t.Fatalf("setMyCommands calls = %d, want 2", n)
	}
}

func TestSendTextSplitsLongMessages(t *testing.T) {
	t.Parallel()
	a, api := newTestAdapter(t)
	text := strings.Repeat("a", tgui.MaxTextLen) + "\n" + "tail"

	ref, err := a.SendText(context.Background(), kit.ChatTarget{ChatID: 5}, text, &kit.SendOptions{ParseMode: tele.ModeHTML})
	if err != nil {
		t.Fatal(err)
	}
	if ref.MessageID != 9 || ref.ChatID != 5 {
		t.Fatalf("ref = %+v", ref)
	}
	if n := api.count("sendMessage"); n != 2 {
		t.Fatalf("sendMessage calls = %d, want 2", n)
	}
}

func TestSendUpdateDropsWhenFull(t *testing.T) {
	t.Parallel()
	a, _ := newTestAdapter(t)
	out := make(chan kit.Update, 1)
	a.out.Store((chan<- kit.Update)(out))

	a.sendUpdate(kit.Update{Kind: kit.UpdateMessage})
	a.sendUpdate(kit.Update{Kind: kit.UpdateMessage})
	if got := a.droppedUpdates.Load(); got != 1 {
		t.Fatalf("dropped = %d, want 1", got)
	}
}

func TestMessageConversion(t *testing.T) {
	t.Parallel()
	a, _ := newTestAdapter(t)
	m := a.message(&tele.Message{
		ID:     3,
		Text:   "/start",
		Chat:   &tele.Chat{ID: 5, Type: tele.ChatPrivate},
		Sender: &tele.User{ID: 7, Username: "ana", LanguageCode: "pt-br"},
	})
	if m.ChatID != 5 || m.FromID != 7 || !m.IsPrivate || m.LangCode != "pt-br" || m.Text != "/start" {
		t.Fatalf("message = %+v", m)
	}
}

func TestFileRef(t *testing.T) {
	t.Parallel()
	if f := fileRef("https://x.com/a.jpg"); f.FileURL != "https://x.com/a.jpg" {
		t.Fatalf("url ref = %+v", f)
	}
	if f := fileRef("AgACAgQ"); f.FileID != "AgACAgQ" {
		t.Fatalf("id ref = %+v", f)
	}
}
