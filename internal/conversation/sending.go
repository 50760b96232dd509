package conversation

import (
	"errors"
	"os"
	"strconv"

	"dispatchbot/internal/engine"
	"dispatchbot/internal/model"
	"dispatchbot/internal/session"
	"dispatchbot/internal/sheet"
	logx "dispatchbot/pkg/logx"
)

func (m *Machine) uploadPrompt(tn turn) []Reply {
	sess := m.d.Sessions.View(tn.uid)
	if len(sess.Queue) > 0 {
		m.setState(tn.uid, session.StateFileUploaded)
		return []Reply{{
			Text: m.t(tn, "upload_existing"),
			Edit: tn.edit(),
			Keyboard: [][]Button{
				{{Text: m.t(tn, "upload_replace"), Data: cbUploadReplace}},
				{{Text: m.t(tn, "upload_continue"), Data: cbUploadContinue}},
				{{Text: m.t(tn, "upload_cancel"), Data: cbUploadCancel}},
			},
		}}
	}
	return m.awaitFile(tn)
}

func (m *Machine) awaitFile(tn turn) []Reply {
	m.setState(tn.uid, session.StateAwaitingFile)
	return []Reply{{Text: m.t(tn, "upload_prompt"), Edit: tn.edit()}}
}

func (m *Machine) onDocument(tn turn) []Reply {
	sess := m.d.Sessions.View(tn.uid)
	if !sess.Authenticated {
		return m.loginPrompt(tn)
	}
	if m.sendingActive(tn.uid, sess) {
		return []Reply{{Text: m.t(tn, "upload_busy")}}
	}
	f := tn.ev.File
	if f != nil && sheet.Legacy(f.Name) {
		return []Reply{{Text: m.t(tn, "error_legacy_xls")}}
	}
	if f == nil || !sheet.Supported(f.Name) {
		return []Reply{{Text: m.t(tn, "error_invalid_file")}}
	}
	if m.d.Files == nil {
		return m.generalError(tn, "no file fetcher configured", errors.New("nil FileFetcher"))
	}

	path, err := m.d.Files.FetchDocument(tn.ctx, *f)
	if err != nil {
		m.log.Warn("document download failed", logx.Int64("user_id", tn.uid), logx.String("file", f.Name), logx.Err(err))
		return []Reply{{Text: m.t(tn, "upload_error")}}
	}
	rows, err := m.d.Parse(path)
	_ = os.Remove(path)
	switch {
	case errors.Is(err, sheet.ErrUnsupported):
		return []Reply{{Text: m.t(tn, "error_invalid_file")}}
	case errors.Is(err, sheet.ErrMissingColumns), errors.Is(err, sheet.ErrNoRows):
		return []Reply{{Text: m.t(tn, "error_invalid_format")}}
	case err != nil:
		m.log.Warn("spreadsheet parse failed", logx.Int64("user_id", tn.uid), logx.String("file", f.Name), logx.Err(err))
		return []Reply{{Text: m.t(tn, "upload_error")}}
	}

	m.d.Sessions.Update(tn.uid, func(s *session.Session) {
		s.Queue = model.CloneRows(rows)
		s.Original = model.CloneRows(rows)
		s.SelectedTemplate = ""
		s.State = session.StateFileUploaded
	})
	m.log.Info("spreadsheet loaded", logx.Int64("user_id", tn.uid), logx.String("file", f.Name), logx.Int("rows", len(rows)))

	out := []Reply{{Text: m.t(tn, "upload_success") + "\n" + m.t(tn, "upload_count", "count", strconv.Itoa(len(rows)))}}
	if tpls, err := m.listTemplates(tn); err == nil && len(tpls) > 0 {
		return append(out, m.templateSelection(tn, tpls)...)
	}
	return append(out, m.intervalPrompt(tn)...)
}

func (m *Machine) intervalPrompt(tn turn) []Reply {
	m.setState(tn.uid, session.StateAwaitingInterval)
	return []Reply{{Text: m.t(tn, "config_interval")}}
}

func (m *Machine) onInterval(tn turn) []Reply {
	v, err := model.ParseInterval(tn.ev.Text)
	if err != nil {
		return []Reply{{Text: m.t(tn, "error_invalid_number") + "\n" + m.t(tn, "config_interval")}}
	}
	m.d.Sessions.Update(tn.uid, func(s *session.Session) {
		s.Config.IntervalMinutes = v
		s.State = session.StateAwaitingBatchSize
	})
	return []Reply{{Text: m.t(tn, "config_batch")}}
}

func (m *Machine) onBatchSize(tn turn) []Reply {
	v, err := model.ParseBatchSize(tn.ev.Text)
	if err != nil {
		return []Reply{{Text: m.t(tn, "error_invalid_number") + "\n" + m.t(tn, "config_batch")}}
	}
	sess := m.d.Sessions.Update(tn.uid, func(s *session.Session) {
		s.Config.BatchSize = v
		s.State = session.StateConfigSummary
	})
	return m.configSummary(tn, sess)
}

func (m *Machine) configSummary(tn turn, sess session.Session) []Reply {
	text := m.t(tn, "config_summary",
		"count", strconv.Itoa(len(sess.Queue)),
		"interval", strconv.Itoa(sess.Config.IntervalMinutes),
		"batch", strconv.Itoa(sess.Config.BatchSize),
	)
	name := m.t(tn, "loop_sheet")
	if sess.SelectedTemplate != "" {
		name = sess.SelectedTemplate
	}
	text += "\n" + m.t(tn, "config_template", "name", name)
	return []Reply{{
		Text: text,
		Keyboard: [][]Button{
			{{Text: m.t(tn, "config_start"), Data: cbStartSending}},
			{{Text: m.t(tn, "config_reconfigure"), Data: cbReconfigure}},
			{{Text: m.t(tn, "config_cancel"), Data: cbCancelConfig}},
		},
	}}
}

func (m *Machine) startSending(tn turn) []Reply {
	sess := m.d.Sessions.View(tn.uid)
	if m.sendingActive(tn.uid, sess) {
		return []Reply{{Text: m.t(tn, "send_busy")}}
	}
	if len(sess.Queue) == 0 {
		return []Reply{{Text: m.t(tn, "status_queue_empty"), Edit: true}}
	}
	if sess.Config.IntervalMinutes <= 0 || sess.Config.BatchSize <= 0 {
		return m.intervalPrompt(tn)
	}
	if _, err := m.d.Engine.Start(tn.uid, engine.StartOptions{}); err != nil {
		return m.startFailed(tn, err)
	}
	return append([]Reply{{Text: m.t(tn, "send_started"), Edit: true}}, m.sendingControls(tn.next(), false)...)
}

func (m *Machine) startFailed(tn turn, err error) []Reply {
	if errors.Is(err, engine.ErrRunActive) {
		return []Reply{{Text: m.t(tn, "send_busy")}}
	}
	return m.generalError(tn, "engine start failed", err)
}

// sendingControls renders the run's control panel.
func (m *Machine) sendingControls(tn turn, edit bool) []Reply {
	sess := m.setState(tn.uid, session.StateSending)
	toggle := Button{Text: m.t(tn, "btn_pause"), Data: cbPauseSending}
	if sess.SendingPaused {
		toggle = Button{Text: m.t(tn, "btn_resume"), Data: cbResumeSending}
	}
	return []Reply{{
		Text: m.t(tn, "send_controls", "count", strconv.Itoa(len(sess.Queue))),
		Edit: edit,
		Keyboard: [][]Button{
			{toggle},
			{{Text: m.t(tn, "btn_back"), Data: cbBackToMenu}},
			{{Text: m.t(tn, "btn_cancel"), Data: cbCancelSending}},
		},
	}}
}

func (m *Machine) pauseSending(tn turn) []Reply {
	if !m.sendingActive(tn.uid, m.d.Sessions.View(tn.uid)) {
		return m.mainMenu(tn)
	}
	m.d.Engine.Pause(tn.uid)
	return append([]Reply{{Text: m.t(tn, "send_paused")}}, m.sendingControls(tn, false)...)
}

func (m *Machine) resumeSending(tn turn) []Reply {
	if !m.sendingActive(tn.uid, m.d.Sessions.View(tn.uid)) {
		return m.mainMenu(tn)
	}
	m.d.Engine.Resume(tn.uid)
	return append([]Reply{{Text: m.t(tn, "send_resumed")}}, m.sendingControls(tn, false)...)
}

func (m *Machine) cancelSending(tn turn) []Reply {
	m.d.Engine.Cancel(tn.uid)
	m.log.Info("sending cancelled by user", logx.Int64("user_id", tn.uid))
	out := []Reply{{Text: m.t(tn, "send_cancelled"), Edit: true}}
	return append(out, m.mainMenu(tn.next())...)
}
