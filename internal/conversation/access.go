package conversation

import (
	"crypto/subtle"
	"strings"

	"dispatchbot/internal/engine"
	"dispatchbot/internal/i18n"
	"dispatchbot/internal/model"
	"dispatchbot/internal/session"
	logx "dispatchbot/pkg/logx"
)

func (m *Machine) onStart(tn turn) []Reply {
	var out []Reply
	if tn.ev.Command == "help" {
		out = append(out, Reply{Text: m.t(tn, "help")})
	}

	sess := m.d.Sessions.View(tn.uid)
	if sess.Authenticated && m.sendingActive(tn.uid, sess) {
		return append(out, m.sendingControls(tn, false)...)
	}
	if snap := m.ownBackup(tn); snap != nil {
		m.setState(tn.uid, session.StateBackupRecovery)
		return append(out, Reply{
			Text: m.t(tn, "backup_detected"),
			Keyboard: [][]Button{
				{{Text: m.t(tn, "backup_resume"), Data: cbBackupResume}},
				{{Text: m.t(tn, "backup_cancel"), Data: cbBackupCancel}},
			},
		})
	}
	if sess.Authenticated {
		return append(out, m.mainMenu(tn)...)
	}
	return append(out, m.loginPrompt(tn)...)
}

// ownBackup returns the backup when it belongs to the caller. Read errors count as no backup.
func (m *Machine) ownBackup(tn turn) *model.Snapshot {
	if m.d.Backups == nil {
		return nil
	}
	snap, err := m.d.Backups.Load(tn.ctx)
	if err != nil {
		m.log.Warn("backup read failed", logx.Int64("user_id", tn.uid), logx.Err(err))
		return nil
	}
	if snap == nil || snap.OwnerUserID != tn.uid {
		return nil
	}
	return snap
}

func (m *Machine) loginPrompt(tn turn) []Reply {
	m.setState(tn.uid, session.StateAwaitingPassword)
	return []Reply{{Text: m.t(tn, "login_prompt")}}
}

func (m *Machine) onPassword(tn turn, sess session.Session) []Reply {
	cfg := m.config()
	given := strings.TrimSpace(tn.ev.Text)
	if cfg.Password != "" && subtle.ConstantTimeCompare([]byte(given), []byte(cfg.Password)) == 1 {
		m.d.Sessions.Update(tn.uid, func(s *session.Session) {
			s.Authenticated = true
			s.LoginAttempts = 0
			s.State = session.StateAuthenticated
		})
		m.log.Info("login succeeded", logx.Int64("user_id", tn.uid))
		return append([]Reply{{Text: m.t(tn, "login_success")}}, m.uploadPrompt(tn)...)
	}

	after := m.d.Sessions.Update(tn.uid, func(s *session.Session) { s.LoginAttempts++ })
	if after.LoginAttempts >= cfg.MaxLoginAttempts {
		m.log.Warn("login blocked", logx.Int64("user_id", tn.uid), logx.Int("attempts", after.LoginAttempts))
		m.d.Sessions.Delete(tn.uid)
		return []Reply{{Text: m.t(tn, "login_blocked")}}
	}
	m.log.Info("login failed", logx.Int64("user_id", tn.uid), logx.Int("attempts", after.LoginAttempts))
	return []Reply{{Text: m.t(tn, "login_incorrect")}}
}

func (m *Machine) resumeBackup(tn turn) []Reply {
	if m.d.Engine != nil && m.d.Engine.Active(tn.uid) {
		return []Reply{{Text: m.t(tn, "send_busy"), Edit: true}}
	}
	snap := m.ownBackup(tn)
	if snap == nil {
		out := []Reply{{Text: m.t(tn, "backup_missing"), Edit: true}}
		if m.d.Sessions.View(tn.uid).Authenticated {
			return append(out, m.mainMenu(tn.next())...)
		}
		return append(out, m.loginPrompt(tn)...)
	}

	original := snap.Original
	if len(original) == 0 {
		original = append(model.ResetRows(snap.Processed), model.ResetRows(snap.Queue)...)
	}
	m.d.Sessions.Update(tn.uid, func(s *session.Session) {
		s.Authenticated = true
		s.LoginAttempts = 0
		s.Queue = model.CloneRows(snap.Queue)
		s.Original = model.CloneRows(original)
		s.Config = snap.Config
		s.SelectedTemplate = snap.SelectedTemplate
		s.State = session.StateSending
	})
	if _, err := m.d.Engine.Start(tn.uid, engine.StartOptions{Processed: snap.Processed}); err != nil {
		return m.startFailed(tn, err)
	}
	m.log.Info("resumed from backup", logx.Int64("user_id", tn.uid), logx.Int("queued", len(snap.Queue)), logx.Int("processed", len(snap.Processed)))
	return append([]Reply{{Text: m.t(tn, "send_resumed"), Edit: true}}, m.sendingControls(tn, false)...)
}

func (m *Machine) discardBackup(tn turn) []Reply {
	if m.ownBackup(tn) != nil {
		if err := m.d.Backups.Clear(tn.ctx); err != nil {
			return m.generalError(tn, "backup clear failed", err)
		}
	}
	out := []Reply{{Text: m.t(tn, "backup_cleared"), Edit: true}}
	if m.d.Sessions.View(tn.uid).Authenticated {
		return append(out, m.mainMenu(tn.next())...)
	}
	return append(out, m.loginPrompt(tn)...)
}

func (m *Machine) languageMenu(tn turn) []Reply {
	var rows [][]Button
	for _, l := range m.d.I18n.Supported() {
		rows = append(rows, []Button{{Text: l.Name(), Data: cbLangPrefix + string(l)}})
	}
	return []Reply{{Text: m.t(tn, "language_prompt"), Keyboard: rows}}
}

func (m *Machine) chooseLanguage(tn turn, code string) []Reply {
	l, ok := i18n.Parse(code)
	if !ok {
		return m.languageMenu(tn)
	}
	l = m.d.I18n.Resolve(l)
	sess := m.d.Sessions.Update(tn.uid, func(s *session.Session) { s.Language = l })
	tn.lang = l

	out := []Reply{{Text: m.t(tn, "language_set"), Edit: true}}
	switch {
	case !sess.Authenticated:
		return append(out, m.loginPrompt(tn)...)
	case m.sendingActive(tn.uid, sess):
		return append(out, m.sendingControls(tn, false)...)
	default:
		return append(out, m.mainMenu(tn.next())...)
	}
}

func (m *Machine) mainMenu(tn turn) []Reply {
	m.setState(tn.uid, session.StateAuthenticated)
	return []Reply{{
		Text: m.t(tn, "main_menu"),
		Edit: tn.edit(),
		Keyboard: [][]Button{
			{{Text: m.t(tn, "btn_upload"), Data: cbUploadMenu}},
			{{Text: m.t(tn, "btn_templates"), Data: cbTplMenu}, {Text: m.t(tn, "btn_loop"), Data: cbLoopMenu}},
			{{Text: m.t(tn, "btn_language"), Data: cbLangMenu}},
		},
	}}
}
