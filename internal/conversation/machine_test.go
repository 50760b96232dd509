package conversation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"dispatchbot/internal/engine"
	"dispatchbot/internal/i18n"
	"dispatchbot/internal/model"
	"dispatchbot/internal/session"
	"dispatchbot/internal/storage"
	logx "dispatchbot/pkg/logx"
)

const user int64 = 1001

type fakeEngine struct {
	mu     sync.Mutex
	starts []engine.StartOptions
	active map[int64]bool
	pauses int
	resume int
	cancel int
}

func (e *fakeEngine) Start(uid int64, opts engine.StartOptions) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active[uid] {
		return "", engine.ErrRunActive
	}
	e.active[uid] = true
	e.starts = append(e.starts, opts)
	return "run-1", nil
}

func (e *fakeEngine) Pause(int64)  { e.mu.Lock(); e.pauses++; e.mu.Unlock() }
func (e *fakeEngine) Resume(int64) { e.mu.Lock(); e.resume++; e.mu.Unlock() }
func (e *fakeEngine) Cancel(uid int64) {
	e.mu.Lock()
	e.cancel++
	delete(e.active, uid)
	e.mu.Unlock()
}

func (e *fakeEngine) Active(uid int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active[uid]
}

type fakeFiles struct {
	dir string
}

func (f fakeFiles) FetchDocument(_ context.Context, file File) (string, error) {
	if file.ID == "broken" {
		return "", errors.New("download failed")
	}
	src := filepath.Join(f.dir, file.ID)
	raw, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(f.dir, "dl-"+file.Name)
	return dst, os.WriteFile(dst, raw, 0o600)
}

func (f fakeFiles) FetchPhoto(_ context.Context, file File) (string, error) {
	return filepath.Join(f.dir, "media", file.ID+".jpg"), nil
}

type fixture struct {
	m         *Machine
	sessions  *session.MemoryStore
	backups   *storage.BackupStore
	templates *storage.TemplateStore
	loops     *storage.LoopStore
	engine    *fakeEngine
	tr        *i18n.Translator
	dir       string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	tpls, err := storage.OpenTemplateStore(filepath.Join(dir, "templates.json"), logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	loops, err := storage.OpenLoopStore(filepath.Join(dir, "loops.json"), logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		sessions:  session.NewMemoryStore(nil),
		backups:   storage.NewBackupStore(filepath.Join(dir, "backup.json"), logx.Nop()),
		templates: tpls,
		loops:     loops,
		engine:    &fakeEngine{active: map[int64]bool{}},
		tr:        i18n.New(i18n.EN, nil),
		dir:       dir,
	}
	f.m = New(Config{Password: "s3cret", MaxLoginAttempts: 5}, Deps{
		Sessions:  f.sessions,
		Backups:   f.backups,
		Templates: f.templates,
		Loops:     f.loops,
		Engine:    f.engine,
		Files:     fakeFiles{dir: dir},
		I18n:      f.tr,
	})
	return f
}

func (f *fixture) text(s string) []Reply {
	return f.m.Handle(context.Background(), Event{Kind: EventText, UserID: user, Text: s})
}

func (f *fixture) press(data string) []Reply {
	return f.m.Handle(context.Background(), Event{Kind: EventCallback, UserID: user, Data: data})
}

func (f *fixture) start() []Reply {
	return f.m.Handle(context.Background(), Event{Kind: EventStart, UserID: user, Command: "start"})
}

func (f *fixture) upload(t *testing.T, name, content string) []Reply {
	t.Helper()
	if err := os.WriteFile(filepath.Join(f.dir, "src-"+name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return f.m.Handle(context.Background(), Event{Kind: EventDocument, UserID: user, File: &File{ID: "src-" + name, Name: name}})
}

func (f *fixture) state() session.State { return f.sessions.View(user).State }

func (f *fixture) login(t *testing.T) {
	t.Helper()
	f.start()
	f.text("s3cret")
	if !f.sessions.View(user).Authenticated {
		t.Fatal("login failed")
	}
}

func (f *fixture) say(key string, kv ...string) string { return f.tr.T(i18n.EN, key, kv...) }

func hasText(replies []Reply, want string) bool {
	for _, r := range replies {
		if strings.Contains(r.Text, want) {
			return true
		}
	}
	return false
}

func hasButton(replies []Reply, data string) bool {
	for _, r := range replies {
		for _, row := range r.Keyboard {
			for _, b := range row {
				if b.Data == data {
					return true
				}
			}
		}
	}
	return false
}

const threeRows = "api_key,chat_id,mensagem\n1:a,100,one\n1:a,200,two\n1:a,300,three\n"

func TestLoginLockout(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	if r := f.start(); !hasText(r, f.say("login_prompt")) {
		t.Fatalf("start replies = %+v", r)
	}
	for i := 1; i <= 4; i++ {
		r := f.text("wrong")
		if !hasText(r, f.say("login_incorrect")) {
			t.Fatalf("attempt %d replies = %+v", i, r)
		}
		s := f.sessions.View(user)
		if s.LoginAttempts != i || s.State != session.StateAwaitingPassword {
			t.Fatalf("after %d: attempts=%d state=%s", i, s.LoginAttempts, s.State)
		}
	}
	if r := f.text("wrong"); !hasText(r, f.say("login_blocked")) {
		t.Fatalf("fifth attempt replies = %+v", r)
	}
	if f.sessions.Len() != 0 {
		t.Fatalf("session should be cleared, have %d", f.sessions.Len())
	}

	f.start()
	if s := f.sessions.View(user); s.LoginAttempts != 0 || s.State != session.StateAwaitingPassword {
		t.Fatalf("fresh session = %+v", s)
	}
}

func TestLoginSuccessPromptsUpload(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.start()
	f.text("bad")
	r := f.text("  s3cret ")
	if !hasText(r, f.say("login_success")) || !hasText(r, f.say("upload_prompt")) {
		t.Fatalf("replies = %+v", r)
	}
	s := f.sessions.View(user)
	if !s.Authenticated || s.LoginAttempts != 0 || s.State != session.StateAwaitingFile {
		t.Fatalf("session = %+v", s)
	}
}

func TestUploadAndConfigureFlow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.login(t)

	r := f.upload(t, "list.csv", threeRows)
	if !hasText(r, f.say("upload_count", "count", "3")) {
		t.Fatalf("upload replies = %+v", r)
	}
	s := f.sessions.View(user)
	if len(s.Queue) != 3 || len(s.Original) != 3 || s.State != session.StateAwaitingInterval {
		t.Fatalf("after upload: queue=%d original=%d state=%s", len(s.Queue), len(s.Original), s.State)
	}
	if _, err := os.Stat(filepath.Join(f.dir, "dl-list.csv")); !os.IsNotExist(err) {
		t.Fatal("downloaded file should be removed after parsing")
	}

	for _, bad := range []string{"0", "1441", "abc", "-3", ""} {
		if r := f.text(bad); !hasText(r, f.say("error_invalid_number")) || f.state() != session.StateAwaitingInterval {
			t.Fatalf("interval %q accepted", bad)
		}
	}
	f.text("5")
	if f.state() != session.StateAwaitingBatchSize {
		t.Fatalf("state = %s", f.state())
	}
	for _, bad := range []string{"0", "101", "2.5"} {
		if r := f.text(bad); !hasText(r, f.say("error_invalid_number")) || f.state() != session.StateAwaitingBatchSize {
			t.Fatalf("batch %q accepted", bad)
		}
	}
	r = f.text("2")
	if f.state() != session.StateConfigSummary || !hasButton(r, cbStartSending) {
		t.Fatalf("summary replies = %+v state=%s", r, f.state())
	}
	if cfg := f.sessions.View(user).Config; cfg != (model.RunConfig{IntervalMinutes: 5, BatchSize: 2}) {
		t.Fatalf("config = %+v", cfg)
	}

	r = f.press(cbStartSending)
	if !hasText(r, f.say("send_started")) || !hasButton(r, cbPauseSending) {
		t.Fatalf("start replies = %+v", r)
	}
	if len(f.engine.starts) != 1 {
		t.Fatalf("engine starts = %d", len(f.engine.starts))
	}
	if r := f.press(cbStartSending); !hasText(r, f.say("send_busy")) || len(f.engine.starts) != 1 {
		t.Fatalf("second start replies = %+v", r)
	}
}

func TestUploadRejections(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	if r := f.upload(t, "list.csv", threeRows); !hasText(r, f.say("login_prompt")) {
		t.Fatalf("unauthenticated upload replies = %+v", r)
	}
	f.login(t)
	before := f.state()

	if r := f.upload(t, "list.pdf", "x"); !hasText(r, f.say("error_invalid_file")) || f.state() != before {
		t.Fatalf("pdf replies = %+v", r)
	}
	if r := f.upload(t, "old.xls", "x"); !hasText(r, f.say("error_legacy_xls")) || f.state() != before {
		t.Fatalf("xls replies = %+v", r)
	}
	if r := f.upload(t, "cols.csv", "a,b\n1,2\n"); !hasText(r, f.say("error_invalid_format")) || f.state() != before {
		t.Fatalf("bad columns replies = %+v", r)
	}
	if r := f.upload(t, "empty.csv", "api_key,chat_id,mensagem\n"); !hasText(r, f.say("error_invalid_format")) {
		t.Fatalf("empty replies = %+v", r)
	}
	r := f.m.Handle(context.Background(), Event{Kind: EventDocument, UserID: user, File: &File{ID: "broken", Name: "x.csv"}})
	if !hasText(r, f.say("upload_error")) {
		t.Fatalf("broken download replies = %+v", r)
	}

	f.engine.active[user] = true
	if r := f.upload(t, "list.csv", threeRows); !hasText(r, f.say("upload_busy")) {
		t.Fatalf("busy replies = %+v", r)
	}
}

func TestExistingQueueOffersChoices(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.login(t)
	f.upload(t, "list.csv", threeRows)

	r := f.press(cbUploadMenu)
	if !hasButton(r, cbUploadReplace) || !hasButton(r, cbUploadContinue) || !hasButton(r, cbUploadCancel) {
		t.Fatalf("replies = %+v", r)
	}
	f.press(cbUploadReplace)
	if f.state() != session.StateAwaitingFile {
		t.Fatalf("state = %s", f.state())
	}
	f.press(cbUploadContinue)
	if f.state() != session.StateAwaitingInterval {
		t.Fatalf("state = %s", f.state())
	}
}

func TestInvalidStateResetsToLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.login(t)
	f.sessions.Update(user, func(s *session.Session) { s.State = session.State(200) })

	if r := f.text("hello"); !hasText(r, f.say("login_prompt")) {
		t.Fatalf("replies = %+v", r)
	}
	if f.state() != session.StateAwaitingPassword {
		t.Fatalf("state = %s", f.state())
	}
}

func TestTextDuringRunShowsControls(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.login(t)
	f.sessions.Update(user, func(s *session.Session) { s.State = session.StateSending })
	f.engine.active[user] = true

	r := f.text("anything")
	if !hasButton(r, cbPauseSending) || !hasButton(r, cbCancelSending) {
		t.Fatalf("replies = %+v", r)
	}

	f.sessions.Update(user, func(s *session.Session) { s.SendingActive = true; s.SendingPaused = true })
	if r := f.press(cbResumeSending); f.engine.resume != 1 || !hasText(r, f.say("send_resumed")) {
		t.Fatalf("resume replies = %+v", r)
	}
	f.press(cbPauseSending)
	if f.engine.pauses != 1 {
		t.Fatalf("pauses = %d", f.engine.pauses)
	}
	r = f.press(cbCancelSending)
	if f.engine.cancel != 1 || !hasText(r, f.say("send_cancelled")) || f.state() != session.StateAuthenticated {
		t.Fatalf("cancel replies = %+v state=%s", r, f.state())
	}
}

func TestTemplateAuthoring(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.login(t)

	f.press(cbTplNew)
	if f.state() != session.StateCreatingTemplate {
		t.Fatalf("state = %s", f.state())
	}
	if r := f.press(cbTplSave); !hasText(r, f.say("template_empty")) {
		t.Fatalf("empty save replies = %+v", r)
	}

	f.press(cbTplText)
	if f.state() != session.StateEditingTemplateText {
		t.Fatalf("state = %s", f.state())
	}
	r := f.text("Hello <b>there</b>")
	if f.state() != session.StateCreatingTemplate || !hasText(r, "Hello <b>there</b>") {
		t.Fatalf("after text: state=%s replies=%+v", f.state(), r)
	}

	f.press(cbTplButton)
	if r := f.text("no url here"); !hasText(r, f.say("template_invalid_button")) || f.state() != session.StateEditingTemplateButtons {
		t.Fatalf("bad button accepted: state=%s", f.state())
	}
	f.text("Shop | https://example.com/shop")
	if d := f.sessions.View(user).Draft; d == nil || len(d.Buttons) != 1 || d.Buttons[0].URL != "https://example.com/shop" {
		t.Fatalf("draft = %+v", d)
	}

	f.press(cbTplPhoto)
	if r := f.text("ftp://nope"); !hasText(r, f.say("template_invalid_photo")) {
		t.Fatalf("bad photo replies = %+v", r)
	}
	f.m.Handle(context.Background(), Event{Kind: EventPhoto, UserID: user, File: &File{ID: "AgAD"}})
	if d := f.sessions.View(user).Draft; d == nil || !strings.HasSuffix(d.Photo, "AgAD.jpg") {
		t.Fatalf("draft photo = %+v", d)
	}

	f.press(cbTplSave)
	if f.state() != session.StateSavingTemplate {
		t.Fatalf("state = %s", f.state())
	}
	if r := f.text("bad:name"); !hasText(r, f.say("template_invalid_name")) {
		t.Fatalf("bad name replies = %+v", r)
	}
	r = f.text("promo")
	if !hasText(r, f.say("template_saved", "name", "promo")) || f.state() != session.StateAuthenticated {
		t.Fatalf("save replies = %+v state=%s", r, f.state())
	}
	got, ok, err := f.templates.Get(context.Background(), "promo")
	if err != nil || !ok || got.Text != "Hello <b>there</b>" || len(got.Buttons) != 1 {
		t.Fatalf("stored = %+v ok=%v err=%v", got, ok, err)
	}
	if f.sessions.View(user).Draft != nil {
		t.Fatal("draft should be cleared")
	}

	// Editing saves under the existing name without asking.
	f.press(cbTplEdit + "promo")
	f.press(cbTplClear)
	f.press(cbTplSave)
	got, _, _ = f.templates.Get(context.Background(), "promo")
	if len(got.Buttons) != 0 {
		t.Fatalf("edited template = %+v", got)
	}

	f.press(cbTplDelete + "promo")
	if _, ok, _ := f.templates.Get(context.Background(), "promo"); ok {
		t.Fatal("template should be deleted")
	}
	if r := f.press(cbTplView + "promo"); !hasText(r, f.say("template_not_found")) {
		t.Fatalf("view deleted replies = %+v", r)
	}
}

func TestTemplateSelectionAfterUpload(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	if _, err := f.templates.Save(context.Background(), model.Template{Name: "promo", Text: "hi"}); err != nil {
		t.Fatal(err)
	}
	f.login(t)

	r := f.upload(t, "list.csv", threeRows)
	if f.state() != session.StateTemplateSelection || !hasButton(r, cbTplPick+"promo") || !hasButton(r, cbTplNone) {
		t.Fatalf("state=%s replies=%+v", f.state(), r)
	}
	f.press(cbTplPick + "promo")
	s := f.sessions.View(user)
	if s.SelectedTemplate != "promo" || s.State != session.StateAwaitingInterval {
		t.Fatalf("session = %+v", s)
	}
}

func TestLoopSettings(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.login(t)
	f.sessions.Update(user, func(s *session.Session) { s.SelectedTemplate = "promo" })

	f.press(cbLoopOn)
	cfg, ok, _ := f.loops.Get(context.Background(), user)
	if !ok || !cfg.Restarts() || cfg.TemplateName != "promo" || cfg.IntervalMinutes != defaultLoopIntervalMinutes {
		t.Fatalf("loop = %+v", cfg)
	}

	f.press(cbLoopInterval)
	if f.state() != session.StateConfiguringLoopInterval {
		t.Fatalf("state = %s", f.state())
	}
	for _, bad := range []string{"0", "1441", "x"} {
		if r := f.text(bad); !hasText(r, f.say("error_invalid_number")) || f.state() != session.StateConfiguringLoopInterval {
			t.Fatalf("loop interval %q accepted", bad)
		}
	}
	f.text("30")
	cfg, _, _ = f.loops.Get(context.Background(), user)
	if cfg.IntervalMinutes != 30 || f.state() != session.StateAuthenticated {
		t.Fatalf("loop = %+v state=%s", cfg, f.state())
	}

	f.press(cbLoopFinish)
	cfg, _, _ = f.loops.Get(context.Background(), user)
	if !cfg.Enabled || cfg.RestartWhenFinished {
		t.Fatalf("after finish: %+v", cfg)
	}
	f.press(cbLoopOff)
	cfg, _, _ = f.loops.Get(context.Background(), user)
	if cfg.Enabled {
		t.Fatalf("after off: %+v", cfg)
	}
}

func TestBackupResume(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	rows := []model.Row{
		{Credential: "1:a", Destination: "100", Body: "one", Status: model.StatusSent},
		{Credential: "1:a", Destination: "200", Body: "two", Status: model.StatusPending},
		{Credential: "1:a", Destination: "300", Body: "three", Status: model.StatusPending},
	}
	err := f.backups.Save(context.Background(), model.Snapshot{
		OwnerUserID: user,
		Queue:       rows[1:],
		Processed:   rows[:1],
		Config:      model.RunConfig{IntervalMinutes: 3, BatchSize: 2},
	})
	if err != nil {
		t.Fatal(err)
	}

	r := f.start()
	if f.state() != session.StateBackupRecovery || !hasButton(r, cbBackupResume) {
		t.Fatalf("state=%s replies=%+v", f.state(), r)
	}
	f.press(cbBackupResume)
	s := f.sessions.View(user)
	if !s.Authenticated || len(s.Queue) != 2 || s.Queue[0].Destination != "200" || len(s.Original) != 3 {
		t.Fatalf("session = %+v", s)
	}
	if len(f.engine.starts) != 1 || len(f.engine.starts[0].Processed) != 1 {
		t.Fatalf("starts = %+v", f.engine.starts)
	}
}

func TestForeignBackupShowsLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	if err := f.backups.Save(context.Background(), model.Snapshot{OwnerUserID: 7}); err != nil {
		t.Fatal(err)
	}
	if r := f.start(); !hasText(r, f.say("login_prompt")) {
		t.Fatalf("replies = %+v", r)
	}
	if r := f.press(cbBackupResume); !hasText(r, f.say("backup_missing")) {
		t.Fatalf("resume replies = %+v", r)
	}
}

func TestBackupCancelClears(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	if err := f.backups.Save(context.Background(), model.Snapshot{OwnerUserID: user}); err != nil {
		t.Fatal(err)
	}
	f.start()
	f.press(cbBackupCancel)
	snap, err := f.backups.Load(context.Background())
	if err != nil || snap != nil {
		t.Fatalf("backup = %+v err=%v", snap, err)
	}
	if f.state() != session.StateAwaitingPassword {
		t.Fatalf("state = %s", f.state())
	}
}

func TestLanguage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.m.Handle(context.Background(), Event{Kind: EventStart, UserID: user, LangCode: "zh-hans"})
	if l := f.sessions.View(user).Language; l != i18n.ZH {
		t.Fatalf("language = %q", l)
	}
	f.m.Handle(context.Background(), Event{Kind: EventStart, UserID: user, LangCode: "pt-br"})
	if l := f.sessions.View(user).Language; l != i18n.ZH {
		t.Fatalf("language changed to %q", l)
	}

	r := f.m.Handle(context.Background(), Event{Kind: EventLanguage, UserID: user})
	if !hasButton(r, "lang_en") {
		t.Fatalf("picker = %+v", r)
	}
	f.press("lang_en")
	if l := f.sessions.View(user).Language; l != i18n.EN {
		t.Fatalf("language = %q", l)
	}
}

func TestCallbacksRequireLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	if r := f.press(cbTplMenu); !hasText(r, f.say("login_prompt")) {
		t.Fatalf("replies = %+v", r)
	}
}
