// Package storage persists the bot's durable state as JSON files.
//
// It provides:
//   - BackupStore: the single-slot checkpoint of an in-progress run
//   - TemplateStore: named reusable messages
//   - LoopStore: per-user infinite-loop settings
//
// Every write replaces the whole file atomically (tmp + rename).
package storage
