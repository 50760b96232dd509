package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	kit "dispatchbot/internal/transport"
)

// adminSink is a zerolog.LevelWriter that forwards records to a chat.
// Write never blocks: records past the limiter or a full queue are dropped.
type adminSink struct {
	sender kit.Adapter
	queue  chan string

	mu       sync.Mutex
	chatID   int64
	minLevel zerolog.Level
	limiter  *rate.Limiter

	startOnce sync.Once
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	dropped atomic.Uint64
}

func newAdminSink(sender kit.Adapter) *adminSink {
	return &adminSink{sender: sender, queue: make(chan string, 128), minLevel: zerolog.WarnLevel}
}

func (a *adminSink) configure(min zerolog.Level, lim *rate.Limiter) {
	a.mu.Lock()
	a.minLevel = min
	a.limiter = lim
	a.mu.Unlock()
	a.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		a.mu.Lock()
		a.cancel = cancel
		a.mu.Unlock()
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.run(ctx)
		}()
	})
}

func (a *adminSink) setSender(sender kit.Adapter) {
	a.mu.Lock()
	a.sender = sender
	a.mu.Unlock()
}

func (a *adminSink) setTarget(chatID int64) {
	a.mu.Lock()
	a.chatID = chatID
	a.mu.Unlock()
}

func (a *adminSink) stop() {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
		a.wg.Wait()
	}
}

func (a *adminSink) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-a.queue:
			a.mu.Lock()
			chatID, sender := a.chatID, a.sender
			a.mu.Unlock()
			if chatID == 0 || sender == nil {
				continue
			}
			_, _ = sender.SendText(ctx, kit.ChatTarget{ChatID: chatID}, msg, &kit.SendOptions{DisablePreview: true})
		}
	}
}

func (a *adminSink) Write(p []byte) (int, error) { return a.WriteLevel(zerolog.InfoLevel, p) }

func (a *adminSink) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	a.mu.Lock()
	chatID, min, lim := a.chatID, a.minLevel, a.limiter
	a.mu.Unlock()

	if chatID == 0 || lim == nil || level < min || !lim.Allow() {
		return len(p), nil
	}
	msg := formatAdminRecord(p)
	if msg == "" {
		return len(p), nil
	}
	select {
	case a.queue <- msg:
	default:
		a.dropped.Add(1)
	}
	return len(p), nil
}

// formatAdminRecord renders a zerolog JSON line as "[LEVEL] message" plus sorted key=value lines.
func formatAdminRecord(p []byte) string {
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(p), &m); err != nil {
		return truncate(strings.TrimSpace(string(p)), 3500)
	}

	lvl, _ := m["level"].(string)
	msg, _ := m["message"].(string)

	var b strings.Builder
	if lvl != "" {
		b.WriteString("[" + strings.ToUpper(lvl) + "] ")
	}
	b.WriteString(msg)

	keys := make([]string, 0, len(m))
	for k := range m {
		switch k {
		case "time", "level", "message":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("\n- " + k + "=")
		b.WriteString(truncate(fmt.Sprint(m[k]), 600))
	}
	return truncate(b.String(), 3500)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n < 10 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
