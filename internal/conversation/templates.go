package conversation

import (
	"errors"
	"html"
	"net/url"
	"strings"

	"dispatchbot/internal/model"
	"dispatchbot/internal/session"
	"dispatchbot/internal/storage"
	logx "dispatchbot/pkg/logx"
)

func (m *Machine) listTemplates(tn turn) ([]model.Template, error) {
	if m.d.Templates == nil {
		return nil, nil
	}
	return m.d.Templates.List(tn.ctx)
}

func (m *Machine) templateMenu(tn turn) []Reply {
	tpls, err := m.listTemplates(tn)
	if err != nil {
		return m.generalError(tn, "template list failed", err)
	}
	m.d.Sessions.Update(tn.uid, func(s *session.Session) {
		s.State = session.StateAuthenticated
		s.Draft = nil
		s.DraftName = ""
	})

	text := m.t(tn, "template_menu")
	if len(tpls) == 0 {
		text = m.t(tn, "no_templates")
	}
	var rows [][]Button
	for _, t := range tpls {
		rows = append(rows, []Button{{Text: "📝 " + t.Name, Data: cbTplView + t.Name}})
	}
	rows = append(rows,
		[]Button{{Text: m.t(tn, "btn_tpl_new"), Data: cbTplNew}},
		[]Button{{Text: m.t(tn, "btn_back"), Data: cbMainMenu}},
	)
	return []Reply{{Text: text, Keyboard: rows, Edit: tn.edit()}}
}

// templateSelection offers the saved templates for the next run.
func (m *Machine) templateSelection(tn turn, tpls []model.Template) []Reply {
	m.setState(tn.uid, session.StateTemplateSelection)
	var rows [][]Button
	for _, t := range tpls {
		rows = append(rows, []Button{{Text: "📝 " + t.Name, Data: cbTplPick + t.Name}})
	}
	rows = append(rows, []Button{{Text: m.t(tn, "no_template"), Data: cbTplNone}})
	return []Reply{{Text: m.t(tn, "template_selection_prompt"), Keyboard: rows}}
}

// preview renders t the way recipients will see it.
func (m *Machine) preview(tn turn, t model.Template) Reply {
	if t.Empty() {
		return Reply{Text: m.t(tn, "template_empty")}
	}
	var rows [][]Button
	for _, b := range t.Buttons {
		rows = append(rows, []Button{{Text: b.Text, URL: b.URL}})
	}
	return Reply{Text: t.Text, Photo: t.Photo, Keyboard: rows}
}

func (m *Machine) viewTemplate(tn turn, name string) []Reply {
	t, ok, err := m.d.Templates.Get(tn.ctx, name)
	if err != nil {
		return m.generalError(tn, "template read failed", err)
	}
	if !ok {
		return append([]Reply{{Text: m.t(tn, "template_not_found")}}, m.templateMenu(tn.next())...)
	}
	return []Reply{
		{Text: m.t(tn, "template_preview"), Edit: tn.edit()},
		m.preview(tn, t),
		{
			Text: "📝 <b>" + html.EscapeString(t.Name) + "</b>",
			Keyboard: [][]Button{
				{{Text: m.t(tn, "btn_tpl_edit"), Data: cbTplEdit + t.Name}, {Text: m.t(tn, "btn_tpl_delete"), Data: cbTplDelete + t.Name}},
				{{Text: m.t(tn, "btn_tpl_use"), Data: cbTplPick + t.Name}},
				{{Text: m.t(tn, "btn_back"), Data: cbTplMenu}},
			},
		},
	}
}

func (m *Machine) editorKeyboard(tn turn) [][]Button {
	return [][]Button{
		{{Text: m.t(tn, "btn_tpl_text"), Data: cbTplText}, {Text: m.t(tn, "btn_tpl_photo"), Data: cbTplPhoto}},
		{{Text: m.t(tn, "btn_tpl_button"), Data: cbTplButton}, {Text: m.t(tn, "btn_tpl_clear"), Data: cbTplClear}},
		{{Text: m.t(tn, "btn_tpl_save"), Data: cbTplSave}, {Text: m.t(tn, "btn_tpl_discard"), Data: cbTplDiscard}},
	}
}

// editor shows the draft preview followed by the editing actions.
func (m *Machine) editor(tn turn, sess session.Session) []Reply {
	header := m.t(tn, "create_template")
	if sess.DraftName != "" {
		header = m.t(tn, "edit_template", "name", sess.DraftName)
	}
	draft := model.Template{}
	if sess.Draft != nil {
		draft = *sess.Draft
	}
	return []Reply{
		m.preview(tn, draft),
		{Text: header, Keyboard: m.editorKeyboard(tn)},
	}
}

func (m *Machine) newDraft(tn turn) []Reply {
	sess := m.d.Sessions.Update(tn.uid, func(s *session.Session) {
		s.Draft = &model.Template{}
		s.DraftName = ""
		s.State = session.StateCreatingTemplate
	})
	return m.editor(tn, sess)
}

func (m *Machine) editTemplate(tn turn, name string) []Reply {
	t, ok, err := m.d.Templates.Get(tn.ctx, name)
	if err != nil {
		return m.generalError(tn, "template read failed", err)
	}
	if !ok {
		return append([]Reply{{Text: m.t(tn, "template_not_found")}}, m.templateMenu(tn.next())...)
	}
	sess := m.d.Sessions.Update(tn.uid, func(s *session.Session) {
		c := t.Clone()
		s.Draft = &c
		s.DraftName = t.Name
		s.State = session.StateCreatingTemplate
	})
	return m.editor(tn, sess)
}

func (m *Machine) deleteTemplate(tn turn, name string) []Reply {
	err := m.d.Templates.Delete(tn.ctx, name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return append([]Reply{{Text: m.t(tn, "template_not_found")}}, m.templateMenu(tn.next())...)
	case err != nil:
		return m.generalError(tn, "template delete failed", err)
	}
	m.log.Info("template deleted", logx.Int64("user_id", tn.uid), logx.String("template", name))
	return append([]Reply{{Text: m.t(tn, "template_deleted", "name", name), Edit: true}}, m.templateMenu(tn.next())...)
}

// pickTemplate selects name (empty: spreadsheet bodies) for the next run.
// In the upload flow it continues to the interval prompt.
func (m *Machine) pickTemplate(tn turn, name string) []Reply {
	if name != "" {
		if _, ok, err := m.d.Templates.Get(tn.ctx, name); err != nil {
			return m.generalError(tn, "template read failed", err)
		} else if !ok {
			return []Reply{{Text: m.t(tn, "template_not_found")}}
		}
	}
	before := m.d.Sessions.View(tn.uid)
	m.d.Sessions.Update(tn.uid, func(s *session.Session) { s.SelectedTemplate = name })

	msg := m.t(tn, "no_template_selected")
	if name != "" {
		msg = m.t(tn, "template_selected", "name", name)
	}
	out := []Reply{{Text: msg, Edit: true}}
	if before.State == session.StateTemplateSelection {
		return append(out, m.intervalPrompt(tn.next())...)
	}
	return append(out, m.mainMenu(tn.next())...)
}

// draft returns the session draft, or ok=false when there is none.
func (m *Machine) draft(tn turn) (session.Session, bool) {
	sess := m.d.Sessions.View(tn.uid)
	return sess, sess.Draft != nil
}

func (m *Machine) draftPrompt(tn turn, st session.State, key string) []Reply {
	if _, ok := m.draft(tn); !ok {
		return m.templateMenu(tn)
	}
	m.setState(tn.uid, st)
	return []Reply{{Text: m.t(tn, key)}}
}

func (m *Machine) draftButtonPrompt(tn turn) []Reply {
	sess, ok := m.draft(tn)
	if !ok {
		return m.templateMenu(tn)
	}
	if len(sess.Draft.Buttons) >= model.MaxTemplateButtons {
		return []Reply{{Text: m.t(tn, "template_too_many_buttons")}}
	}
	m.setState(tn.uid, session.StateEditingTemplateButtons)
	return []Reply{{Text: m.t(tn, "template_button_prompt")}}
}

// updateDraft applies fn to the draft, returns to the editor and re-renders it.
func (m *Machine) updateDraft(tn turn, fn func(t *model.Template)) []Reply {
	sess := m.d.Sessions.Update(tn.uid, func(s *session.Session) {
		if s.Draft == nil {
			return
		}
		fn(s.Draft)
		s.State = session.StateCreatingTemplate
	})
	if sess.Draft == nil {
		return m.templateMenu(tn)
	}
	return m.editor(tn, sess)
}

func (m *Machine) clearDraftButtons(tn turn) []Reply {
	return m.updateDraft(tn, func(t *model.Template) { t.Buttons = nil })
}

func (m *Machine) onDraftText(tn turn, sess session.Session) []Reply {
	if sess.Draft == nil {
		return m.templateMenu(tn)
	}
	text := strings.TrimSpace(tn.ev.Text)
	if text == "" {
		return []Reply{{Text: m.t(tn, "template_text_prompt")}}
	}
	return m.updateDraft(tn, func(t *model.Template) { t.Text = text })
}

func (m *Machine) onDraftPhotoURL(tn turn, sess session.Session) []Reply {
	if sess.Draft == nil {
		return m.templateMenu(tn)
	}
	raw := strings.TrimSpace(tn.ev.Text)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return []Reply{{Text: m.t(tn, "template_invalid_photo")}}
	}
	return m.updateDraft(tn, func(t *model.Template) { t.Photo = raw })
}

// onPhoto accepts an image only while a draft waits for one.
func (m *Machine) onPhoto(tn turn) []Reply {
	sess := m.d.Sessions.View(tn.uid)
	if !sess.Authenticated {
		return m.loginPrompt(tn)
	}
	if sess.State != session.StateEditingTemplatePhoto || sess.Draft == nil || tn.ev.File == nil {
		return nil
	}
	if m.d.Files == nil {
		return m.generalError(tn, "no file fetcher configured", errors.New("nil FileFetcher"))
	}
	path, err := m.d.Files.FetchPhoto(tn.ctx, *tn.ev.File)
	if err != nil {
		m.log.Warn("photo download failed", logx.Int64("user_id", tn.uid), logx.Err(err))
		return []Reply{{Text: m.t(tn, "template_invalid_photo")}}
	}
	return m.updateDraft(tn, func(t *model.Template) { t.Photo = path })
}

func (m *Machine) onDraftButton(tn turn, sess session.Session) []Reply {
	if sess.Draft == nil {
		return m.templateMenu(tn)
	}
	if len(sess.Draft.Buttons) >= model.MaxTemplateButtons {
		return m.updateDraft(tn, func(*model.Template) {})
	}
	b, err := model.ParseButton(tn.ev.Text)
	if err != nil {
		return []Reply{{Text: m.t(tn, "template_invalid_button")}}
	}
	return m.updateDraft(tn, func(t *model.Template) {
		if len(t.Buttons) < model.MaxTemplateButtons {
			t.Buttons = append(t.Buttons, b)
		}
	})
}

func (m *Machine) saveDraft(tn turn) []Reply {
	sess, ok := m.draft(tn)
	if !ok {
		return m.templateMenu(tn)
	}
	if sess.Draft.Empty() {
		return []Reply{{Text: m.t(tn, "template_empty")}}
	}
	if sess.DraftName != "" {
		return m.storeDraft(tn, sess, sess.DraftName)
	}
	m.setState(tn.uid, session.StateSavingTemplate)
	return []Reply{{Text: m.t(tn, "template_name_prompt")}}
}

func (m *Machine) onDraftName(tn turn, sess session.Session) []Reply {
	if sess.Draft == nil {
		return m.templateMenu(tn)
	}
	name, err := model.NormalizeTemplateName(tn.ev.Text)
	if err != nil {
		return []Reply{{Text: m.t(tn, "template_invalid_name")}}
	}
	return m.storeDraft(tn, sess, name)
}

func (m *Machine) storeDraft(tn turn, sess session.Session, name string) []Reply {
	t := sess.Draft.Clone()
	t.Name = name
	saved, err := m.d.Templates.Save(tn.ctx, t)
	if errors.Is(err, model.ErrInvalidName) {
		return []Reply{{Text: m.t(tn, "template_invalid_name")}}
	}
	if err != nil {
		return m.generalError(tn, "template save failed", err)
	}
	m.log.Info("template saved", logx.Int64("user_id", tn.uid), logx.String("template", saved.Name))
	return append([]Reply{{Text: m.t(tn, "template_saved", "name", saved.Name)}}, m.templateMenu(tn.next())...)
}

func (m *Machine) discardDraft(tn turn) []Reply {
	return m.templateMenu(tn)
}
