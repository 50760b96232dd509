// Package tgui holds small Telegram UI helpers shared by the bot and the dispatcher:
// inline keyboard building, HTML escaping and Telegram size limits.
package tgui
