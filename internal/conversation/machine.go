// Package conversation is the per-user chat flow: login, spreadsheet upload,
// cadence setup, sending controls, template authoring and loop settings.
//
// Machine.Handle turns one inbound event into reply directives; rendering
// them is left to the transport layer. Events for one user must be handled
// in order.
package conversation

import (
	"context"
	"strings"
	"sync"

	"dispatchbot/internal/i18n"
	"dispatchbot/internal/session"
	"dispatchbot/internal/sheet"
	logx "dispatchbot/pkg/logx"
)

type Config struct {
	Password         string
	MaxLoginAttempts int
}

func (c Config) withDefaults() Config {
	if c.MaxLoginAttempts <= 0 {
		c.MaxLoginAttempts = 5
	}
	return c
}

type Deps struct {
	Sessions  session.Store
	Backups   BackupStore
	Templates TemplateStore
	Loops     LoopStore
	Engine    Engine
	Files     FileFetcher
	Parse     SheetParser
	I18n      *i18n.Translator
	Log       logx.Logger
}

type Machine struct {
	d   Deps
	log logx.Logger

	mu  sync.RWMutex
	cfg Config
}

func New(cfg Config, d Deps) *Machine {
	if d.Parse == nil {
		d.Parse = sheet.Parse
	}
	if d.I18n == nil {
		d.I18n = i18n.New(i18n.PT, nil)
	}
	log := d.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Machine{d: d, log: log.With(logx.String("comp", "conversation")), cfg: cfg.withDefaults()}
}

// SetConfig swaps access settings (hot reload).
func (m *Machine) SetConfig(cfg Config) {
	m.mu.Lock()
	m.cfg = cfg.withDefaults()
	m.mu.Unlock()
}

func (m *Machine) config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// turn carries the per-event context handlers share.
type turn struct {
	ctx  context.Context
	ev   Event
	uid  int64
	lang i18n.Lang
	// followup marks replies after the one that already edited the callback message.
	followup bool
}

func (t turn) edit() bool { return t.ev.Kind == EventCallback && !t.followup }

func (t turn) next() turn {
	t.followup = true
	return t
}

func (m *Machine) t(tn turn, key string, kv ...string) string {
	return m.d.I18n.T(tn.lang, key, kv...)
}

// Handle processes one event and returns the replies to send, in order.
func (m *Machine) Handle(ctx context.Context, ev Event) []Reply {
	if ev.UserID == 0 {
		return nil
	}
	tn := turn{ctx: ctx, ev: ev, uid: ev.UserID, lang: m.language(ev)}

	switch ev.Kind {
	case EventStart:
		return m.onStart(tn)
	case EventLanguage:
		return m.languageMenu(tn)
	case EventText:
		return m.onText(tn)
	case EventDocument:
		return m.onDocument(tn)
	case EventPhoto:
		return m.onPhoto(tn)
	case EventCallback:
		return m.onCallback(tn)
	default:
		m.log.Debug("unknown event kind", logx.Int("kind", int(ev.Kind)))
		return nil
	}
}

// language returns the session language, adopting the client's language on first contact.
func (m *Machine) language(ev Event) i18n.Lang {
	sess := m.d.Sessions.View(ev.UserID)
	if sess.Language != "" {
		return m.d.I18n.Resolve(sess.Language)
	}
	lang := m.d.I18n.Default()
	if ev.LangCode != "" {
		lang = m.d.I18n.Detect(ev.LangCode)
	}
	m.d.Sessions.Update(ev.UserID, func(s *session.Session) {
		if s.Language == "" {
			s.Language = lang
		}
	})
	return lang
}

func (m *Machine) setState(uid int64, st session.State) session.Session {
	return m.d.Sessions.Update(uid, func(s *session.Session) { s.State = st })
}

func (m *Machine) generalError(tn turn, what string, err error) []Reply {
	m.log.Error(what, logx.Int64("user_id", tn.uid), logx.Err(err))
	return []Reply{{Text: m.t(tn, "error_general")}}
}

func (m *Machine) onText(tn turn) []Reply {
	sess := m.d.Sessions.View(tn.uid)
	if !sess.State.Valid() {
		m.log.Warn("invalid session state, resetting", logx.Int64("user_id", tn.uid), logx.Int("state", int(sess.State)))
		return m.loginPrompt(tn)
	}

	switch sess.State {
	case session.StateAwaitingPassword:
		return m.onPassword(tn, sess)
	case session.StateAwaitingInterval:
		return m.onInterval(tn)
	case session.StateAwaitingBatchSize:
		return m.onBatchSize(tn)
	case session.StateEditingTemplateText:
		return m.onDraftText(tn, sess)
	case session.StateEditingTemplatePhoto:
		return m.onDraftPhotoURL(tn, sess)
	case session.StateEditingTemplateButtons:
		return m.onDraftButton(tn, sess)
	case session.StateSavingTemplate:
		return m.onDraftName(tn, sess)
	case session.StateConfiguringLoopInterval:
		return m.onLoopInterval(tn)
	case session.StateLogin,
		session.StateBackupRecovery,
		session.StateAuthenticated,
		session.StateAwaitingFile,
		session.StateFileUploaded,
		session.StateTemplateSelection,
		session.StateConfigSummary,
		session.StateSending,
		session.StateCompleted,
		session.StateCancelled,
		session.StateCreatingTemplate:
		if m.sendingActive(tn.uid, sess) {
			return m.sendingControls(tn, false)
		}
		return m.loginPrompt(tn)
	}
	return m.loginPrompt(tn)
}

func (m *Machine) sendingActive(uid int64, sess session.Session) bool {
	if m.d.Engine != nil && m.d.Engine.Active(uid) {
		return true
	}
	return sess.SendingActive
}

func (m *Machine) onCallback(tn turn) []Reply {
	data := tn.ev.Data

	// Reachable without a login.
	switch {
	case data == cbBackupResume:
		return m.resumeBackup(tn)
	case data == cbBackupCancel:
		return m.discardBackup(tn)
	case data == cbLangMenu:
		return m.languageMenu(tn)
	case strings.HasPrefix(data, cbLangPrefix):
		return m.chooseLanguage(tn, strings.TrimPrefix(data, cbLangPrefix))
	}

	sess := m.d.Sessions.View(tn.uid)
	if !sess.Authenticated {
		return m.loginPrompt(tn)
	}

	switch data {
	case cbMainMenu, cbBackToMenu, cbUploadCancel:
		return m.mainMenu(tn)
	case cbUploadMenu, cbCancelConfig:
		return m.uploadPrompt(tn)
	case cbUploadReplace:
		return m.awaitFile(tn)
	case cbUploadContinue, cbReconfigure:
		return m.intervalPrompt(tn)
	case cbStartSending:
		return m.startSending(tn)
	case cbPauseSending:
		return m.pauseSending(tn)
	case cbResumeSending:
		return m.resumeSending(tn)
	case cbCancelSending:
		return m.cancelSending(tn)

	case cbTplMenu:
		return m.templateMenu(tn)
	case cbTplNew:
		return m.newDraft(tn)
	case cbTplNone:
		return m.pickTemplate(tn, "")
	case cbTplText:
		return m.draftPrompt(tn, session.StateEditingTemplateText, "template_text_prompt")
	case cbTplPhoto:
		return m.draftPrompt(tn, session.StateEditingTemplatePhoto, "template_photo_prompt")
	case cbTplButton:
		return m.draftButtonPrompt(tn)
	case cbTplClear:
		return m.clearDraftButtons(tn)
	case cbTplSave:
		return m.saveDraft(tn)
	case cbTplDiscard:
		return m.discardDraft(tn)

	case cbLoopMenu:
		return m.loopMenu(tn)
	case cbLoopOn:
		return m.loopEnable(tn)
	case cbLoopOff:
		return m.loopDisable(tn)
	case cbLoopFinish:
		return m.loopFinish(tn)
	case cbLoopInterval:
		return m.loopIntervalPrompt(tn)
	}

	if name, ok := splitName(data, cbTplView); ok {
		return m.viewTemplate(tn, name)
	}
	if name, ok := splitName(data, cbTplEdit); ok {
		return m.editTemplate(tn, name)
	}
	if name, ok := splitName(data, cbTplDelete); ok {
		return m.deleteTemplate(tn, name)
	}
	if name, ok := splitName(data, cbTplPick); ok {
		return m.pickTemplate(tn, name)
	}

	m.log.Debug("unknown callback", logx.Int64("user_id", tn.uid), logx.String("data", data))
	return nil
}
