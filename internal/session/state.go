package session

// State is the conversation position of one user.
//
// The set is closed: anything outside [StateLogin, stateCount) is invalid and
// handlers reset it to StateLogin.
type State uint8

const (
	StateLogin State = iota
	StateAwaitingPassword
	StateBackupRecovery
	StateAuthenticated
	StateAwaitingFile
	StateFileUploaded
	StateTemplateSelection
	StateAwaitingInterval
	StateAwaitingBatchSize
	StateConfigSummary
	StateSending
	StateCompleted
	StateCancelled
	StateCreatingTemplate
	StateEditingTemplateText
	StateEditingTemplatePhoto
	StateEditingTemplateButtons
	StateSavingTemplate
	StateConfiguringLoopInterval

	stateCount
)

var stateNames = [stateCount]string{
	StateLogin:                   "login",
	StateAwaitingPassword:        "awaiting_password",
	StateBackupRecovery:          "backup_recovery",
	StateAuthenticated:           "authenticated",
	StateAwaitingFile:            "awaiting_file",
	StateFileUploaded:            "file_uploaded",
	StateTemplateSelection:       "template_selection",
	StateAwaitingInterval:        "awaiting_interval",
	StateAwaitingBatchSize:       "awaiting_batch_size",
	StateConfigSummary:           "config_summary",
	StateSending:                 "sending",
	StateCompleted:               "completed",
	StateCancelled:               "cancelled",
	StateCreatingTemplate:        "creating_template",
	StateEditingTemplateText:     "editing_template_text",
	StateEditingTemplatePhoto:    "editing_template_photo",
	StateEditingTemplateButtons:  "editing_template_buttons",
	StateSavingTemplate:          "saving_template",
	StateConfiguringLoopInterval: "configuring_loop_interval",
}

func (s State) Valid() bool { return s < stateCount }

func (s State) String() string {
	if !s.Valid() {
		return "invalid"
	}
	return stateNames[s]
}
