// Package shell hosts the desktop-shell collaborators: git worktree
// management and external editor/terminal launching.
//
// Shell operations report failure through a Result value instead of an
// error return — callers must check Success explicitly. A failed
// worktree removal, for example, is logged and surfaced but never fatal
// to the operation that triggered it.
package shell

import "fmt"

// Result is the outcome of a shell action.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Ok returns a successful Result.
func Ok() Result {
	return Result{Success: true}
}

// Errf returns a failed Result with a formatted message.
func Errf(format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}
