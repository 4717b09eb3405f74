package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/leapstack-labs/phonebook/internal/book"
	"github.com/spf13/cobra"
)

// ContactAddOptions holds options for the contact add command.
type ContactAddOptions struct {
	Name  string
	Phone string
	Email string
}

// ContactListOptions holds options for the contact list command.
type ContactListOptions struct {
	Favorites bool
	Sort      string
}

// ContactEditOptions holds options for the contact edit command.
type ContactEditOptions struct {
	Name  string
	Phone string
	Email string
}

// NewContactCommand creates the contact command group.
func NewContactCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contact",
		Aliases: []string{"contacts", "c"},
		Short:   "Manage contacts",
		Long:    `Add, list, search, edit, favorite and delete contacts.`,
	}

	cmd.AddCommand(
		newContactAddCommand(),
		newContactListCommand(),
		newContactSearchCommand(),
		newContactEditCommand(),
		newContactFavoriteCommand(),
		newContactDeleteCommand(),
		newContactDeleteAllCommand(),
	)
	return cmd
}

func newContactAddCommand() *cobra.Command {
	opts := &ContactAddOptions{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new contact",
		Example: `  phonebook contact add --name Alice --phone 555-1000
  phonebook contact add --name Bob --phone 555-2000 --email bob@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runContactAdd(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Contact name (required)")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "Phone number (required)")
	cmd.Flags().StringVar(&opts.Email, "email", "", "Email address")
	return cmd
}

func runContactAdd(cmd *cobra.Command, opts *ContactAddOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	c, err := cmdCtx.Book.CreateContact(cmd.Context(), book.ContactInput{
		Name:  opts.Name,
		Phone: opts.Phone,
		Email: opts.Email,
	})
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	if ok, err := r.Data(c); ok {
		return err
	}
	r.Success(fmt.Sprintf("Saved contact %s (id %d)", c.Name, c.ID))
	return nil
}

func newContactListCommand() *cobra.Command {
	opts := &ContactListOptions{}
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List contacts",
		Example: `  phonebook contact list
  phonebook contact list --sort name --favorites
  phonebook contact list -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			contacts, err := cmdCtx.Book.ListContacts(cmd.Context(), book.ListOptions{
				Sort:          opts.Sort,
				FavoritesOnly: opts.Favorites,
			})
			if err != nil {
				return err
			}

			title := "Contacts"
			if opts.Favorites {
				title = "Favorites"
			}
			return cmdCtx.Renderer.Contacts(title, contacts)
		},
	}

	cmd.Flags().BoolVar(&opts.Favorites, "favorites", false, "Only show favorites")
	cmd.Flags().StringVar(&opts.Sort, "sort", "id", "Sort order: id, name")
	_ = cmd.RegisterFlagCompletionFunc("sort", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"id", "name"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func newContactSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "search <keyword>",
		Short:   "Search contacts by name, phone or email",
		Example: `  phonebook contact search ali`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			keyword := strings.Join(args, " ")
			contacts, err := cmdCtx.Book.SearchContacts(cmd.Context(), keyword)
			if err != nil {
				return err
			}
			return cmdCtx.Renderer.Contacts(fmt.Sprintf("Contacts matching %q", keyword), contacts)
		},
	}
}

func newContactEditCommand() *cobra.Command {
	opts := &ContactEditOptions{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a contact",
		Long: `Edit a contact's name, phone or email.

Fields that are not given keep their current value.`,
		Example: `  phonebook contact edit 3 --phone 555-9999`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			c, err := cmdCtx.Book.UpdateContact(cmd.Context(), id, book.ContactPatch{
				Name:  opts.Name,
				Phone: opts.Phone,
				Email: opts.Email,
			})
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if ok, err := r.Data(c); ok {
				return err
			}
			r.Success("Contact updated successfully.")
			return r.Contact(c)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "New name")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "New phone number")
	cmd.Flags().StringVar(&opts.Email, "email", "", "New email address")
	return cmd
}

func newContactFavoriteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "favorite <id>",
		Aliases: []string{"fav"},
		Short:   "Mark or unmark a contact as favorite",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			c, err := cmdCtx.Book.ToggleFavorite(cmd.Context(), id)
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if ok, err := r.Data(c); ok {
				return err
			}
			r.Success(favoriteMessage(c.Name, c.IsFavorite))
			return nil
		},
	}
}

func favoriteMessage(name string, isFavorite bool) string {
	if isFavorite {
		return name + " has been added to favorites."
	}
	return name + " has been removed from favorites."
}

func newContactDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a contact with its messages and calls",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cmdCtx.Book.DeleteContact(cmd.Context(), id); err != nil {
				return err
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("Contact %d deleted.", id))
			return nil
		},
	}
}

func newContactDeleteAllCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every contact, message and call",
		Long: `Delete every contact in the phone book.

Messages and calls logged against the contacts are deleted with them.
Asks for confirmation unless --yes is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			r := cmdCtx.Renderer
			count, err := cmdCtx.Book.CountContacts(cmd.Context())
			if err != nil {
				return err
			}
			if count == 0 {
				r.Muted("No contacts to delete.")
				return nil
			}

			if !yes {
				// The prompt goes to stderr so machine output on stdout stays parseable.
				_, _ = fmt.Fprint(r.ErrWriter(), "Are you sure you want to delete all contacts? (y/n): ")
				answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("failed to read confirmation: %w", err)
				}
				if !isYes(answer) {
					r.Warning("Nothing deleted.")
					return nil
				}
			}

			n, err := cmdCtx.Book.DeleteAllContacts(cmd.Context())
			if err != nil {
				return err
			}
			r.Success(fmt.Sprintf("All contacts deleted (%d).", n))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// isYes reports whether a prompt answer means yes.
func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
