package session

import (
	"sync"
	"testing"

	"dispatchbot/internal/model"
)

func TestMemoryStoreGetOrCreate(t *testing.T) {
	t.Parallel()
	st := NewMemoryStore(func(userID int64) Session {
		return Session{Config: model.RunConfig{IntervalMinutes: 5, BatchSize: 10}}
	})

	s := st.View(7)
	if s.UserID != 7 || s.State != StateLogin || s.Config.BatchSize != 10 {
		t.Fatalf("fresh session = %+v", s)
	}

	st.Update(7, func(s *Session) { s.LoginAttempts = 3 })
	if got := st.View(7).LoginAttempts; got != 3 {
		t.Fatalf("LoginAttempts = %d, want 3", got)
	}

	st.Delete(7)
	if got := st.View(7).LoginAttempts; got != 0 {
		t.Fatalf("after Delete LoginAttempts = %d, want 0", got)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	t.Parallel()
	st := NewMemoryStore(nil)
	row, _ := model.NewRow("tok", "1", "hi")
	st.Update(1, func(s *Session) {
		s.Queue = []model.Row{row}
		s.Draft = &model.Template{Text: "draft"}
	})

	v := st.View(1)
	v.Queue[0].Body = "mutated"
	v.Draft.Text = "mutated"

	again := st.View(1)
	if again.Queue[0].Body != "hi" || again.Draft.Text != "draft" {
		t.Fatalf("stored session was mutated through a copy: %+v", again)
	}
}

func TestMemoryStoreConcurrentUpdates(t *testing.T) {
	t.Parallel()
	st := NewMemoryStore(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Update(9, func(s *Session) { s.LoginAttempts++ })
		}()
	}
	wg.Wait()
	if got := st.View(9).LoginAttempts; got != 50 {
		t.Fatalf("LoginAttempts = %d, want 50", got)
	}
	if st.Len() != 1 {
		t.Fatalf("Len = %d", st.Len())
	}
}

func TestStateValid(t *testing.T) {
	t.Parallel()
	for s := StateLogin; s < stateCount; s++ {
		if !s.Valid() || s.String() == "" || s.String() == "invalid" {
			t.Fatalf("state %d has no name", s)
		}
	}
	if State(200).Valid() || State(200).String() != "invalid" {
		t.Fatal("State(200) should be invalid")
	}
}
