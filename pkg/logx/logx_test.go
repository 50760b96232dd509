package logx

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	kit "dispatchbot/internal/transport"
)

type recordingAdapter struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingAdapter) Start(context.Context, chan<- kit.Update) error { return nil }
func (r *recordingAdapter) Stop(context.Context) error                    { return nil }
func (r *recordingAdapter) SendText(_ context.Context, _ kit.ChatTarget, text string, _ *kit.SendOptions) (kit.MessageRef, error) {
	r.mu.Lock()
	r.sent = append(r.sent, text)
	r.mu.Unlock()
	return kit.MessageRef{}, nil
}
func (r *recordingAdapter) EditText(context.Context, kit.MessageRef, string, *kit.SendOptions) error {
	return nil
}
func (r *recordingAdapter) AnswerCallback(context.Context, string, string) error { return nil }
func (r *recordingAdapter) SendPhoto(context.Context, kit.ChatTarget, string, string, *kit.SendOptions) (kit.MessageRef, error) {
	return kit.MessageRef{}, nil
}
func (r *recordingAdapter) SendDocument(context.Context, kit.ChatTarget, string, string, *kit.SendOptions) (kit.MessageRef, error) {
	return kit.MessageRef{}, nil
}
func (r *recordingAdapter) Download(context.Context, string, string) error { return nil }

func (r *recordingAdapter) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

func TestZeroLoggerIsNoop(t *testing.T) {
	var l Logger
	if !l.IsZero() {
		t.Fatal("zero Logger should report IsZero")
	}
	l.Info("discarded", String("k", "v"))
	if Nop().IsZero() {
		t.Fatal("Nop() should not be zero")
	}
}

func TestFormatAdminRecord(t *testing.T) {
	got := formatAdminRecord([]byte(`{"level":"warn","message":"send failed","time":"x","user_id":7,"comp":"engine"}` + "\n"))
	want := "[WARN] send failed\n- comp=engine\n- user_id=7"
	if got != want {
		t.Fatalf("formatAdminRecord = %q, want %q", got, want)
	}
	if got := formatAdminRecord([]byte("plain text\n")); got != "plain text" {
		t.Fatalf("non-JSON record = %q", got)
	}
}

func TestAdminSinkForwardsAboveMinLevel(t *testing.T) {
	ad := &recordingAdapter{}
	svc, log := New(Config{
		Level: "debug",
		Admin: AdminConfig{Enabled: true, MinLevel: "error", RatePerSec: 50},
	}, ad)
	defer svc.Close()
	svc.SetAdminTarget(99)

	log.Warn("below threshold")
	log.Error("run crashed", Int64("user_id", 7))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if msgs := ad.messages(); len(msgs) > 0 {
			if len(msgs) != 1 || !strings.HasPrefix(msgs[0], "[ERROR] run crashed") {
				t.Fatalf("admin messages = %q", msgs)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("admin sink never delivered the error record")
}

func TestValidLevel(t *testing.T) {
	for _, s := range []string{"", "debug", "INFO", "warning", "error"} {
		if !ValidLevel(s) {
			t.Fatalf("ValidLevel(%q) = false", s)
		}
	}
	if ValidLevel("loud") {
		t.Fatal("ValidLevel(loud) = true")
	}
}
