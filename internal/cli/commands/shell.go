package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/phonebook/internal/book"
	"github.com/leapstack-labs/phonebook/internal/cli/output"
	"github.com/leapstack-labs/phonebook/pkg/core"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// errCanceled abandons the current prompt sequence (Ctrl-C).
var errCanceled = errors.New("canceled")

const menuText = `
Contact Management
 1. Add new contact           8. View conversation by contact
 2. View all contacts         9. Search messages
 3. Delete all contacts      10. Log a call
 4. Search contacts          11. View call history
 5. Edit a contact           12. Filter calls
 6. Mark/unmark favorite     13. Delete a contact
 7. Log a message             q. Quit
`

// NewShellCommand creates the interactive shell command.
func NewShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive menu",
		Long: `Start the numbered interactive menu.

This is what runs when phonebook is started without a subcommand.
On a terminal the shell keeps a line history next to the database.
Piped input is read one answer per line, so sessions can be scripted.`,
		Example: `  phonebook
  printf '2\nq\n' | phonebook shell`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunShell(cmd)
		},
	}
}

// RunShell runs the menu loop until the user quits or input ends.
func RunShell(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	in, err := newLineReader(cmd.InOrStdin(), r.Writer(), cmdCtx.Cfg.HistoryFile, r.IsTTY())
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	s := &shell{
		book:   cmdCtx.Book,
		r:      r,
		in:     in,
		logger: cmdCtx.Logger,
	}
	return s.run(cmd.Context())
}

// lineReader prompts for and returns one line of input.
type lineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// newLineReader uses readline when both ends are terminals and a plain
// line scanner otherwise.
func newLineReader(in io.Reader, out io.Writer, historyFile string, outputTTY bool) (lineReader, error) {
	if f, ok := in.(*os.File); ok && outputTTY && term.IsTerminal(int(f.Fd())) {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "> ",
			HistoryFile:     historyFile,
			AutoComplete:    menuCompleter(),
			InterruptPrompt: "^C",
			EOFPrompt:       "q",
			Stdin:           f,
			Stdout:          out,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize shell: %w", err)
		}
		return &readlineReader{rl: rl}, nil
	}
	return &scanReader{scanner: bufio.NewScanner(in), out: out}, nil
}

func menuCompleter() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem("q"),
		readline.PcItem("quit"),
		readline.PcItem("exit"),
	}
	for _, t := range callTypeNames() {
		items = append(items, readline.PcItem(t))
	}
	return readline.NewPrefixCompleter(items...)
}

type readlineReader struct {
	rl *readline.Instance
}

func (r *readlineReader) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", errCanceled
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (r *readlineReader) Close() error {
	return r.rl.Close()
}

type scanReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (r *scanReader) ReadLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(r.out, prompt)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		_, _ = fmt.Fprintln(r.out)
		return "", io.EOF
	}
	return strings.TrimSpace(r.scanner.Text()), nil
}

func (r *scanReader) Close() error {
	return nil
}

type shell struct {
	book   *book.Book
	r      *output.Renderer
	in     lineReader
	logger *slog.Logger
}

func (s *shell) run(ctx context.Context) error {
	handlers := map[string]func(context.Context) error{
		"1":  s.addContact,
		"2":  s.listContacts,
		"3":  s.deleteAllContacts,
		"4":  s.searchContacts,
		"5":  s.editContact,
		"6":  s.toggleFavorite,
		"7":  s.logMessage,
		"8":  s.viewConversation,
		"9":  s.searchMessages,
		"10": s.logCall,
		"11": s.viewCallHistory,
		"12": s.filterCalls,
		"13": s.deleteContact,
	}

	for {
		s.r.Printf("%s\n", menuText)
		option, err := s.in.ReadLine("Choose an option: ")
		if errors.Is(err, errCanceled) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		option = strings.ToLower(option)
		switch option {
		case "":
			continue
		case "q", "quit", "exit":
			s.r.Println("Goodbye.")
			return nil
		}

		handler, ok := handlers[option]
		if !ok {
			s.r.Warning("Invalid option. Try again.")
			continue
		}

		err = handler(ctx)
		switch {
		case err == nil, errors.Is(err, errCanceled):
		case errors.Is(err, io.EOF):
			return nil
		case core.IsUserError(err):
			s.r.Error(err.Error())
		default:
			s.logger.Error("shell operation failed", slog.String("option", option), slog.Any("error", err))
			s.r.Error(err.Error())
		}
	}
}

// askID prompts for a record id and parses it.
func (s *shell) askID(prompt string) (int64, error) {
	answer, err := s.in.ReadLine(prompt)
	if err != nil {
		return 0, err
	}
	return parseID(answer)
}

// askContact prompts for a contact id and loads the contact.
func (s *shell) askContact(ctx context.Context, prompt string) (*core.Contact, error) {
	id, err := s.askID(prompt)
	if err != nil {
		return nil, err
	}
	return s.book.GetContact(ctx, id)
}

// ask prompts for each answer in turn, stopping at the first error.
func (s *shell) ask(prompts ...string) ([]string, error) {
	answers := make([]string, len(prompts))
	for i, p := range prompts {
		a, err := s.in.ReadLine(p)
		if err != nil {
			return nil, err
		}
		answers[i] = a
	}
	return answers, nil
}

func (s *shell) addContact(ctx context.Context) error {
	a, err := s.ask("Name: ", "Phone: ", "Email (optional): ")
	if err != nil {
		return err
	}
	c, err := s.book.CreateContact(ctx, book.ContactInput{Name: a[0], Phone: a[1], Email: a[2]})
	if err != nil {
		return err
	}
	s.r.Success(fmt.Sprintf("Saved contact %s (id %d)", c.Name, c.ID))
	return nil
}

func (s *shell) listContacts(ctx context.Context) error {
	contacts, err := s.book.ListContacts(ctx, book.ListOptions{})
	if err != nil {
		return err
	}
	return s.r.Contacts("Contacts", contacts)
}

func (s *shell) deleteAllContacts(ctx context.Context) error {
	count, err := s.book.CountContacts(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		s.r.Muted("No contacts to delete.")
		return nil
	}

	answer, err := s.in.ReadLine("Are you sure you want to delete all contacts? (y/n): ")
	if err != nil {
		return err
	}
	if !isYes(answer) {
		s.r.Muted("Nothing deleted.")
		return nil
	}
	n, err := s.book.DeleteAllContacts(ctx)
	if err != nil {
		return err
	}
	s.r.Success(fmt.Sprintf("All contacts deleted (%d).", n))
	return nil
}

func (s *shell) searchContacts(ctx context.Context) error {
	keyword, err := s.in.ReadLine("Search by name, phone, or email: ")
	if err != nil {
		return err
	}
	contacts, err := s.book.SearchContacts(ctx, keyword)
	if err != nil {
		return err
	}
	return s.r.Contacts(fmt.Sprintf("Contacts matching %q", keyword), contacts)
}

func (s *shell) editContact(ctx context.Context) error {
	c, err := s.askContact(ctx, "Enter contact ID to edit: ")
	if err != nil {
		return err
	}

	email := c.Email
	if !c.HasEmail() {
		email = "None"
	}
	a, err := s.ask(
		fmt.Sprintf("New name [%s]: ", c.Name),
		fmt.Sprintf("New phone [%s]: ", c.Phone),
		fmt.Sprintf("New email [%s]: ", email),
	)
	if err != nil {
		return err
	}

	if _, err := s.book.UpdateContact(ctx, c.ID, book.ContactPatch{Name: a[0], Phone: a[1], Email: a[2]}); err != nil {
		return err
	}
	s.r.Success("Contact updated successfully.")
	return nil
}

func (s *shell) toggleFavorite(ctx context.Context) error {
	id, err := s.askID("Enter contact ID to toggle favorite: ")
	if err != nil {
		return err
	}
	c, err := s.book.ToggleFavorite(ctx, id)
	if err != nil {
		return err
	}
	s.r.Success(favoriteMessage(c.Name, c.IsFavorite))
	return nil
}

func (s *shell) logMessage(ctx context.Context) error {
	c, err := s.askContact(ctx, "Enter contact ID: ")
	if err != nil {
		return err
	}
	a, err := s.ask("Enter message content: ", "Is this message Sent or Received? (s/r): ")
	if err != nil {
		return err
	}
	if a[0] == "" {
		return &core.ValidationError{Field: "content", Reason: "message can't be empty"}
	}
	dir, err := core.ParseDirection(a[1])
	if err != nil {
		return err
	}
	if _, err := s.book.LogMessage(ctx, c.ID, a[0], dir); err != nil {
		return err
	}
	s.r.Success("Message logged.")
	return nil
}

func (s *shell) viewConversation(ctx context.Context) error {
	c, err := s.askContact(ctx, "Enter contact ID: ")
	if err != nil {
		return err
	}
	messages, err := s.book.Conversation(ctx, c.ID)
	if err != nil {
		return err
	}
	return s.r.Conversation(c, messages)
}

func (s *shell) searchMessages(ctx context.Context) error {
	keyword, err := s.in.ReadLine("Enter keyword to search messages: ")
	if err != nil {
		return err
	}
	messages, err := s.book.SearchMessages(ctx, keyword)
	if err != nil {
		return err
	}
	return s.r.Messages(fmt.Sprintf("Messages matching %q", keyword), messages)
}

func (s *shell) logCall(ctx context.Context) error {
	c, err := s.askContact(ctx, "Enter contact ID: ")
	if err != nil {
		return err
	}
	s.r.Info("Call type options: " + strings.Join(callTypeNames(), " / "))
	a, err := s.ask("Enter call type: ", "Enter date and time (YYYY-MM-DD HH:MM) or press Enter for now: ")
	if err != nil {
		return err
	}
	if _, err := s.book.LogCall(ctx, book.CallInput{ContactID: c.ID, Type: a[0], At: a[1]}); err != nil {
		return err
	}
	s.r.Success("Call logged.")
	return nil
}

func (s *shell) viewCallHistory(ctx context.Context) error {
	answer, err := s.in.ReadLine("View calls for a contact? (y/n): ")
	if err != nil {
		return err
	}
	if !isYes(answer) {
		calls, err := s.book.CallHistory(ctx)
		if err != nil {
			return err
		}
		return s.r.Calls("Call history", calls)
	}

	c, err := s.askContact(ctx, "Enter contact ID: ")
	if err != nil {
		return err
	}
	calls, err := s.book.ContactCallHistory(ctx, c.ID)
	if err != nil {
		return err
	}
	return s.r.Calls("Calls with "+c.Name, calls)
}

func (s *shell) filterCalls(ctx context.Context) error {
	s.r.Info("Filter by:")
	s.r.Info("1. Type (" + strings.Join(callTypeNames(), "/") + ")")
	s.r.Info("2. Date (YYYY-MM-DD)")
	choice, err := s.in.ReadLine("Choose filter: ")
	if err != nil {
		return err
	}

	var (
		calls []*core.Call
		title string
	)
	switch choice {
	case "1":
		callType, err := s.in.ReadLine("Enter call type: ")
		if err != nil {
			return err
		}
		if calls, err = s.book.FilterCallsByType(ctx, callType); err != nil {
			return err
		}
		title = strings.ToLower(callType) + " calls"
	case "2":
		date, err := s.in.ReadLine("Enter date (YYYY-MM-DD): ")
		if err != nil {
			return err
		}
		if calls, err = s.book.FilterCallsByDate(ctx, date); err != nil {
			return err
		}
		title = "Calls on " + date
	default:
		return &core.ValidationError{Field: "filter", Reason: fmt.Sprintf("choose 1 or 2 (got %q)", choice)}
	}
	return s.r.Calls(title, calls)
}

func (s *shell) deleteContact(ctx context.Context) error {
	id, err := s.askID("Enter contact ID to delete: ")
	if err != nil {
		return err
	}
	if err := s.book.DeleteContact(ctx, id); err != nil {
		return err
	}
	s.r.Success(fmt.Sprintf("Contact %d deleted.", id))
	return nil
}
