package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klytics/slidetext/cmd/version"
)

// Exit codes for consistent error reporting.
const (
	ExitOK          = 0 // success
	ExitUserError   = 1 // bad flags, missing file, not a .pptx
	ExitSystemError = 2 // IO error, corrupt package
)

// ErrUsage marks errors caused by how the command was invoked.
var ErrUsage = errors.New("usage error")

// JSONResult is the standard JSON output envelope for all commands.
type JSONResult struct {
	OK      bool        `json:"ok"`
	Command string      `json:"command"`
	Version string      `json:"version"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    int         `json:"code,omitempty"`
}

// PrintJSON writes a standard success JSON result to stdout.
func PrintJSON(cmd string, data interface{}) error {
	return WriteJSON(os.Stdout, cmd, data)
}

// WriteJSON writes a standard success JSON result to w.
func WriteJSON(w io.Writer, cmd string, data interface{}) error {
	return encode(w, JSONResult{
		OK:      true,
		Command: cmd,
		Version: version.Version,
		Data:    data,
	})
}

// PrintJSONError writes a standard error JSON result to stdout.
func PrintJSONError(cmd string, err error) error {
	return WriteJSONError(os.Stdout, cmd, err)
}

// WriteJSONError writes a standard error JSON result to w.
func WriteJSONError(w io.Writer, cmd string, err error) error {
	result := JSONResult{
		OK:      false,
		Command: cmd,
		Version: version.Version,
		Error:   err.Error(),
		Code:    ExitCode(err),
	}
	if encErr := encode(w, result); encErr != nil {
		return fmt.Errorf("could not encode JSON error: %w", encErr)
	}
	return nil
}

// ExitCode picks the process exit code for err.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage), errors.Is(err, os.ErrNotExist):
		return ExitUserError
	}
	return ExitSystemError
}

func encode(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
