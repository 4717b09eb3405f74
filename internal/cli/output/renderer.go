// Package output renders phone book records for the terminal, for
// markdown consumers and as JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// TimeLayout is how timestamps are shown to people.
const TimeLayout = "2006-01-02 15:04"

// Renderer writes command output in the configured mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   OutputMode
	isTTY  bool
	styles Styles
	loc    *time.Location
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return NewRendererWithTTY(out, errOut, isTTY, mode)
}

// NewRendererWithTTY creates a renderer with an explicit TTY state.
// Colors are used only on a TTY and only when NO_COLOR is unset.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	styles := PlainStyles()
	if isTTY && !termenv.EnvNoColor() {
		styles = DefaultStyles()
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styles: styles,
		loc:    time.Local,
	}
}

// SetLocation sets the zone timestamps are displayed in.
func (r *Renderer) SetLocation(loc *time.Location) {
	if loc != nil {
		r.loc = loc
	}
}

// Mode returns the configured mode.
func (r *Renderer) Mode() OutputMode {
	return r.mode
}

// EffectiveMode resolves ModeAuto against the TTY state.
func (r *Renderer) EffectiveMode() OutputMode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// Styles returns the active style set.
func (r *Renderer) Styles() Styles {
	return r.styles
}

// Writer returns the standard output writer.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// ErrWriter returns the error output writer.
func (r *Renderer) ErrWriter() io.Writer {
	return r.errOut
}

// Println writes a line to standard output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted output to standard output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header writes a section header.
func (r *Renderer) Header(level int, text string) {
	switch r.EffectiveMode() {
	case ModeJSON, ModeYAML:
		return
	case ModeMarkdown:
		r.Println(FormatHeader(level, text))
		r.Println("")
	default:
		style := r.styles.Header2
		if level <= 1 {
			style = r.styles.Header1
		}
		r.Println(style.Render(text))
	}
}

// Success reports a completed action. Silent in machine modes.
func (r *Renderer) Success(msg string) {
	if r.EffectiveMode().IsMachine() {
		return
	}
	if r.EffectiveMode() == ModeText {
		r.Println(r.styles.Success.Render("✓ " + msg))
		return
	}
	r.Println(msg)
}

// Warning reports something the user should notice. Silent in machine modes.
func (r *Renderer) Warning(msg string) {
	if r.EffectiveMode().IsMachine() {
		return
	}
	if r.EffectiveMode() == ModeText {
		r.Println(r.styles.Warning.Render("! " + msg))
		return
	}
	r.Println(msg)
}

// Info writes a hint or instruction. Silent in machine modes.
func (r *Renderer) Info(msg string) {
	if r.EffectiveMode().IsMachine() {
		return
	}
	r.Println(r.styles.Info.Render(msg))
}

// Muted writes de-emphasized text. Silent in machine modes.
func (r *Renderer) Muted(msg string) {
	if r.EffectiveMode().IsMachine() {
		return
	}
	r.Println(r.styles.Muted.Render(msg))
}

// Error writes an error message to the error stream.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render("Error: "+msg))
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Data writes v in the active machine mode. It reports false when
// the mode is for people, leaving formatting to the caller.
func (r *Renderer) Data(v any) (bool, error) {
	switch r.EffectiveMode() {
	case ModeJSON:
		return true, r.JSON(v)
	case ModeYAML:
		return true, r.YAML(v)
	default:
		return false, nil
	}
}

// Time formats t in the renderer's zone.
func (r *Renderer) Time(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(r.loc).Format(TimeLayout)
}

// FormatHeader returns a markdown header of the given level.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue returns a markdown list item for a key and value.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s:** %s", key, value)
}
