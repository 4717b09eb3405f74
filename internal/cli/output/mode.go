package output

import (
	"fmt"
	"strings"
)

// OutputMode selects how the renderer formats results.
type OutputMode string

// Output modes.
const (
	ModeAuto     OutputMode = "auto"     // TTY=text, otherwise markdown
	ModeText     OutputMode = "text"     // styled tables for terminals
	ModeMarkdown OutputMode = "markdown" // pipe-friendly markdown
	ModeJSON     OutputMode = "json"
	ModeYAML     OutputMode = "yaml"
)

// ParseMode converts a config value to an OutputMode.
// An empty value means ModeAuto.
func ParseMode(s string) (OutputMode, error) {
	switch m := OutputMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeText, ModeMarkdown, ModeJSON, ModeYAML:
		return m, nil
	default:
		return "", fmt.Errorf("unknown output mode %q", s)
	}
}

// IsMachine reports whether the mode produces structured data rather
// than prose for a person.
func (m OutputMode) IsMachine() bool {
	return m == ModeJSON || m == ModeYAML
}
