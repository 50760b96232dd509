package conversation

import "strings"

// Callback data values. Values with a trailing ':' take a template name.
const (
	cbBackupResume   = "backup_resume"
	cbBackupCancel   = "backup_cancel"
	cbUploadMenu     = "upload_menu"
	cbUploadReplace  = "upload_replace"
	cbUploadContinue = "upload_continue"
	cbUploadCancel   = "upload_cancel"
	cbStartSending   = "start_sending"
	cbReconfigure    = "reconfigure"
	cbCancelConfig   = "cancel_config"
	cbPauseSending   = "pause_sending"
	cbResumeSending  = "resume_sending"
	cbCancelSending  = "cancel_sending"
	cbBackToMenu     = "back_to_menu"
	cbMainMenu       = "main_menu"
	cbLangMenu       = "lang_menu"
	cbLangPrefix     = "lang_"

	cbTplMenu    = "tpl_menu"
	cbTplNew     = "tpl_new"
	cbTplView    = "tpl_view:"
	cbTplEdit    = "tpl_edit:"
	cbTplDelete  = "tpl_del:"
	cbTplPick    = "tpl_pick:"
	cbTplNone    = "tpl_none"
	cbTplText    = "tpl_text"
	cbTplPhoto   = "tpl_photo"
	cbTplButton  = "tpl_button"
	cbTplClear   = "tpl_clear"
	cbTplSave    = "tpl_save"
	cbTplDiscard = "tpl_discard"

	cbLoopMenu     = "loop_menu"
	cbLoopOn       = "loop_on"
	cbLoopOff      = "loop_off"
	cbLoopInterval = "loop_interval"
	cbLoopFinish   = "loop_finish"
)

// splitName returns the name following prefix in data.
func splitName(data, prefix string) (string, bool) {
	if !strings.HasPrefix(data, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(data, prefix)
	return name, name != ""
}

// UploadCallbackData opens the spreadsheet upload prompt. Notices attach it to
// the "send a new sheet" message.
const UploadCallbackData = cbUploadReplace
