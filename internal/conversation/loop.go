package conversation

import (
	"strconv"

	"dispatchbot/internal/model"
	"dispatchbot/internal/session"
	logx "dispatchbot/pkg/logx"
)

const defaultLoopIntervalMinutes = 60

func (m *Machine) loopMenu(tn turn) []Reply {
	cfg, _, err := m.d.Loops.Get(tn.ctx, tn.uid)
	if err != nil {
		return m.generalError(tn, "loop config read failed", err)
	}
	m.setState(tn.uid, session.StateAuthenticated)

	status := m.t(tn, "loop_no")
	if cfg.Enabled {
		status = m.t(tn, "loop_yes")
	}
	interval := cfg.IntervalMinutes
	if interval <= 0 {
		interval = defaultLoopIntervalMinutes
	}
	tpl := m.t(tn, "loop_sheet")
	if cfg.TemplateName != "" {
		tpl = cfg.TemplateName
	}
	text := m.t(tn, "loop_menu") + "\n\n" + m.t(tn, "loop_status",
		"status", status,
		"interval", strconv.Itoa(interval),
		"template", tpl,
	)

	toggle := Button{Text: m.t(tn, "btn_loop_on"), Data: cbLoopOn}
	if cfg.Enabled {
		toggle = Button{Text: m.t(tn, "btn_loop_off"), Data: cbLoopOff}
	}
	rows := [][]Button{{toggle, {Text: m.t(tn, "btn_loop_interval"), Data: cbLoopInterval}}}
	if cfg.Restarts() {
		rows = append(rows, []Button{{Text: m.t(tn, "btn_loop_finish"), Data: cbLoopFinish}})
	}
	rows = append(rows, []Button{{Text: m.t(tn, "btn_back"), Data: cbMainMenu}})
	return []Reply{{Text: text, Keyboard: rows, Edit: tn.edit()}}
}

func (m *Machine) updateLoop(tn turn, key string, fn func(c *model.LoopConfig)) []Reply {
	cfg, err := m.d.Loops.Update(tn.ctx, tn.uid, fn)
	if err != nil {
		return m.generalError(tn, "loop config write failed", err)
	}
	m.log.Info("loop config updated",
		logx.Int64("user_id", tn.uid),
		logx.Bool("enabled", cfg.Enabled),
		logx.Bool("restart", cfg.RestartWhenFinished),
		logx.Int("interval", cfg.IntervalMinutes),
	)
	return append([]Reply{{Text: m.t(tn, key, "interval", strconv.Itoa(cfg.IntervalMinutes)), Edit: true}}, m.loopMenu(tn.next())...)
}

// loopEnable turns replay on and binds the currently selected template.
func (m *Machine) loopEnable(tn turn) []Reply {
	sess := m.d.Sessions.View(tn.uid)
	return m.updateLoop(tn, "loop_enabled", func(c *model.LoopConfig) {
		c.Enabled = true
		c.RestartWhenFinished = true
		c.TemplateName = sess.SelectedTemplate
		if c.IntervalMinutes <= 0 {
			c.IntervalMinutes = defaultLoopIntervalMinutes
		}
	})
}

func (m *Machine) loopDisable(tn turn) []Reply {
	return m.updateLoop(tn, "loop_disabled", func(c *model.LoopConfig) {
		c.Enabled = false
		c.RestartWhenFinished = false
	})
}

// loopFinish lets the current cycle finish and then finalizes the run.
func (m *Machine) loopFinish(tn turn) []Reply {
	return m.updateLoop(tn, "loop_finishing", func(c *model.LoopConfig) {
		c.RestartWhenFinished = false
	})
}

func (m *Machine) loopIntervalPrompt(tn turn) []Reply {
	m.setState(tn.uid, session.StateConfiguringLoopInterval)
	return []Reply{{Text: m.t(tn, "loop_interval_prompt")}}
}

func (m *Machine) onLoopInterval(tn turn) []Reply {
	v, err := model.ParseBounded(tn.ev.Text, model.MinIntervalMinutes, model.MaxIntervalMinutes)
	if err != nil {
		return []Reply{{Text: m.t(tn, "error_invalid_number") + "\n" + m.t(tn, "loop_interval_prompt")}}
	}
	cfg, err := m.d.Loops.Update(tn.ctx, tn.uid, func(c *model.LoopConfig) { c.IntervalMinutes = v })
	if err != nil {
		return m.generalError(tn, "loop config write failed", err)
	}
	m.setState(tn.uid, session.StateAuthenticated)
	return append([]Reply{{Text: m.t(tn, "loop_interval_saved", "interval", strconv.Itoa(cfg.IntervalMinutes))}}, m.loopMenu(tn.next())...)
}
