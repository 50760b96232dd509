// Package logx configures dispatchbot's structured logging.
//
// A small wrapper (logx.Logger) over zerolog keeps:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - An optional admin chat sink (min-level + rate limiting)
package logx
