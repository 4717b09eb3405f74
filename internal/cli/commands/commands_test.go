package commands

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leapstack-labs/phonebook/internal/book"
	"github.com/leapstack-labs/phonebook/internal/cli/config"
	"github.com/leapstack-labs/phonebook/internal/cli/output"
	"github.com/leapstack-labs/phonebook/internal/cli/testutil"
	"github.com/leapstack-labs/phonebook/internal/state"
	"github.com/leapstack-labs/phonebook/pkg/core"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContactCommand(t *testing.T) {
	cmd := NewContactCommand()

	assert.Equal(t, "contact", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	subcommands := map[string][]string{
		"add":        {"name", "phone", "email"},
		"list":       {"favorites", "sort"},
		"search":     nil,
		"edit":       {"name", "phone", "email"},
		"favorite":   nil,
		"delete":     nil,
		"delete-all": {"yes"},
	}
	for name, flags := range subcommands {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, "subcommand %q should exist", name)
		assert.Equal(t, name, sub.Name())
		for _, flag := range flags {
			assert.NotNil(t, sub.Flags().Lookup(flag), "flag %q should exist on %s", flag, name)
		}
	}
}

func TestNewMessageCommand(t *testing.T) {
	cmd := NewMessageCommand()

	assert.Equal(t, "message", cmd.Use)
	for _, name := range []string{"log", "conversation", "search"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	logCmd, _, err := cmd.Find([]string{"log"})
	require.NoError(t, err)
	assert.NotNil(t, logCmd.Flags().Lookup("direction"))
	assert.NotNil(t, logCmd.Flags().ShorthandLookup("d"))
}

func TestNewCallCommand(t *testing.T) {
	cmd := NewCallCommand()

	assert.Equal(t, "call", cmd.Use)

	logCmd, _, err := cmd.Find([]string{"log"})
	require.NoError(t, err)
	assert.NotNil(t, logCmd.Flags().Lookup("at"))
	assert.NotEmpty(t, logCmd.Example)

	filterCmd, _, err := cmd.Find([]string{"filter"})
	require.NoError(t, err)
	assert.NotNil(t, filterCmd.Flags().Lookup("type"))
	assert.NotNil(t, filterCmd.Flags().Lookup("date"))
}

func TestNewShellAndDoctorCommands(t *testing.T) {
	shellCmd := NewShellCommand()
	assert.Equal(t, "shell", shellCmd.Use)
	assert.NotEmpty(t, shellCmd.Long)

	doctorCmd := NewDoctorCommand()
	assert.Equal(t, "doctor", doctorCmd.Use)
	assert.NotEmpty(t, doctorCmd.Example)
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "1", want: 1},
		{in: " 42 ", want: 42},
		{in: "0", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseID(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, core.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsYes(t *testing.T) {
	for _, answer := range []string{"y", "Y", "yes", " YES \n"} {
		assert.True(t, isYes(answer), answer)
	}
	for _, answer := range []string{"", "n", "no", "yep", "1"} {
		assert.False(t, isYes(answer), answer)
	}
}

func TestFavoriteMessage(t *testing.T) {
	assert.Equal(t, "Alice has been added to favorites.", favoriteMessage("Alice", true))
	assert.Equal(t, "Alice has been removed from favorites.", favoriteMessage("Alice", false))
}

// withConfig returns a command whose context carries a validated config.
func withConfig(t *testing.T, cfg *config.Config) *cobra.Command {
	t.Helper()
	require.NoError(t, cfg.Validate())
	cmd := &cobra.Command{}
	cmd.SetContext(config.WithConfig(context.Background(), cfg))
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	return cmd
}

func TestNewCommandContext(t *testing.T) {
	cfg := config.Default()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "nested", "book.db")
	cfg.Timezone = "UTC"
	cfg.OutputFormat = "json"

	cmdCtx, cleanup, err := NewCommandContext(withConfig(t, cfg))
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, time.UTC, cmdCtx.Book.Location())
	assert.Equal(t, output.ModeJSON, cmdCtx.Renderer.Mode())

	version, err := cmdCtx.Store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestNewCommandContextWithoutStore(t *testing.T) {
	cfg := config.Default()
	cfg.OutputFormat = "yaml"

	cmdCtx := NewCommandContextWithoutStore(withConfig(t, cfg))
	assert.Nil(t, cmdCtx.Store)
	assert.Nil(t, cmdCtx.Book)
	assert.Equal(t, output.ModeYAML, cmdCtx.Renderer.Mode())
}

// scriptedReader answers prompts from a fixed list and records them.
type scriptedReader struct {
	answers []string
	errs    map[int]error
	prompts []string
}

func (r *scriptedReader) ReadLine(prompt string) (string, error) {
	i := len(r.prompts)
	r.prompts = append(r.prompts, prompt)
	if err, ok := r.errs[i]; ok {
		return "", err
	}
	if i >= len(r.answers) {
		return "", io.EOF
	}
	return r.answers[i], nil
}

func (r *scriptedReader) Close() error { return nil }

func setupShell(t *testing.T, in lineReader) (*shell, *testutil.TestRenderer) {
	t.Helper()
	store := state.NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.InitSchema(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	tr := testutil.NewTestRendererText()
	b := book.New(store, book.Options{
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC) },
	})
	return &shell{book: b, r: tr.Renderer, in: in, logger: config.GetLogger(context.Background())}, tr
}

func TestShellPrompts(t *testing.T) {
	in := &scriptedReader{answers: []string{
		"1", "Alice", "555-1000", "",
		"5", "1", "", "555-1111", "",
		"12", "1", "missed",
		"11", "n",
		"quit",
	}}
	s, tr := setupShell(t, in)

	require.NoError(t, s.run(context.Background()))

	assert.Contains(t, in.prompts, "New name [Alice]: ")
	assert.Contains(t, in.prompts, "New email [None]: ")
	assert.Contains(t, in.prompts, "Choose filter: ")
	assert.Contains(t, in.prompts, "View calls for a contact? (y/n): ")

	out := tr.Output()
	assert.Contains(t, out, "Contact updated successfully.")
	assert.Contains(t, out, "No calls found.")
	assert.Contains(t, out, "Goodbye.")

	c, err := s.book.GetContact(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", c.Name)
	assert.Equal(t, "555-1111", c.Phone)
}

func TestShellReportsUserErrorsAndContinues(t *testing.T) {
	in := &scriptedReader{answers: []string{
		"1", "", "555-1000", "",
		"7", "abc",
		"12", "3",
		"q",
	}}
	s, tr := setupShell(t, in)

	require.NoError(t, s.run(context.Background()))

	errOut := tr.ErrorOutput()
	assert.Contains(t, errOut, "Error: invalid name: must not be empty")
	assert.Contains(t, errOut, "Error: invalid id")
	assert.Contains(t, errOut, "Error: invalid filter")
	assert.Contains(t, tr.Output(), "Goodbye.")
}

func TestShellCancelAbandonsPrompt(t *testing.T) {
	in := &scriptedReader{
		answers: []string{"1", "", "2", "q"},
		errs:    map[int]error{1: errCanceled},
	}
	s, tr := setupShell(t, in)

	require.NoError(t, s.run(context.Background()))
	assert.Empty(t, tr.ErrorOutput())

	n, err := s.book.CountContacts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestShellDeleteAllNeedsConfirmation(t *testing.T) {
	in := &scriptedReader{answers: []string{
		"3",
		"1", "Alice", "555-1000", "",
		"3", "n",
		"3", "y",
		"q",
	}}
	s, tr := setupShell(t, in)

	require.NoError(t, s.run(context.Background()))

	out := tr.Output()
	assert.Contains(t, out, "No contacts to delete.")
	assert.Contains(t, out, "Nothing deleted.")
	assert.Contains(t, out, "All contacts deleted (1).")

	confirmations := 0
	for _, p := range in.prompts {
		if strings.HasPrefix(p, "Are you sure") {
			confirmations++
		}
	}
	assert.Equal(t, 2, confirmations, "an empty book is not asked to confirm")
}

func TestScanReader(t *testing.T) {
	var out bytes.Buffer
	r := &scanReader{scanner: bufio.NewScanner(strings.NewReader(" first \nsecond")), out: &out}

	line, err := r.ReadLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "first", line)

	line, err = r.ReadLine("> ")
	require.NoError(t, err)
	assert.Equal(t, "second", line)

	_, err = r.ReadLine("> ")
	assert.ErrorIs(t, err, io.EOF)
	assert.True(t, strings.HasPrefix(out.String(), "> > > "))
}

func TestNewLineReaderUsesScannerForPipes(t *testing.T) {
	r, err := newLineReader(strings.NewReader(""), new(bytes.Buffer), "", true)
	require.NoError(t, err)
	_, ok := r.(*scanReader)
	assert.True(t, ok)
	assert.NoError(t, r.Close())
}
