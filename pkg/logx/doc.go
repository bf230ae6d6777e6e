// Package logx is chorebot's structured logging layer.
//
// It wraps zerolog behind a small Logger value:
//   - console output with a short timestamp and file:line caller
//   - an optional JSON file sink
//   - an optional chat sink that forwards warnings to the household chat,
//     filtered by level and rate limited
//
// A Logger obtained from a Service follows every Service.Apply, so component
// loggers created at startup pick up level changes on config reload.
package logx
