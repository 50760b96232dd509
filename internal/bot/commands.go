package bot

import (
	"dispatchbot/internal/i18n"
	kit "dispatchbot/internal/transport"
)

const (
	CmdStart    = "start"
	CmdMenu     = "menu"
	CmdHelp     = "help"
	CmdLanguage = "language"
)

// MenuCommands is the command list published to Telegram, described in lang.
func MenuCommands(tr *i18n.Translator, lang i18n.Lang) []kit.BotCommand {
	return []kit.BotCommand{
		{Command: CmdStart, Description: tr.T(lang, "cmd_start")},
		{Command: CmdMenu, Description: tr.T(lang, "cmd_menu")},
		{Command: CmdHelp, Description: tr.T(lang, "cmd_help")},
		{Command: CmdLanguage, Description: tr.T(lang, "cmd_language")},
	}
}
