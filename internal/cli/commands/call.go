package commands

import (
	"strings"

	"github.com/leapstack-labs/phonebook/internal/book"
	"github.com/leapstack-labs/phonebook/pkg/core"
	"github.com/spf13/cobra"
)

// CallFilterOptions holds options for the call filter command.
type CallFilterOptions struct {
	Type string
	Date string
}

// NewCallCommand creates the call command group.
func NewCallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "call",
		Aliases: []string{"calls"},
		Short:   "Log and review calls",
	}

	cmd.AddCommand(
		newCallLogCommand(),
		newCallHistoryCommand(),
		newCallFilterCommand(),
	)
	return cmd
}

// callTypeNames returns the call types for completion and help.
func callTypeNames() []string {
	types := core.CallTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}

func completeCallTypes(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return callTypeNames(), cobra.ShellCompDirectiveNoFileComp
}

func newCallLogCommand() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "log <contact-id> <incoming|outgoing|missed>",
		Short: "Log a call with a contact",
		Long: `Log a call with a contact.

The call is stamped with the current time unless --at gives one as
"YYYY-MM-DD HH:MM", read in the configured time zone.`,
		Example: `  phonebook call log 1 missed
  phonebook call log 2 outgoing --at "2024-03-15 09:30"`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 1 {
				return completeCallTypes(cmd, args, toComplete)
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			contactID, err := parseID(args[0])
			if err != nil {
				return err
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			c, err := cmdCtx.Book.LogCall(cmd.Context(), book.CallInput{
				ContactID: contactID,
				Type:      args[1],
				At:        at,
			})
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			r.Success("Call logged.")
			return r.Call(c)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", `Call time as "YYYY-MM-DD HH:MM" (default: now)`)
	return cmd
}

func newCallHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history [contact-id]",
		Short: "Show call history, newest first, or the calls of one contact",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var contactID int64
			if len(args) == 1 {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				contactID = id
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if contactID == 0 {
				calls, err := cmdCtx.Book.CallHistory(cmd.Context())
				if err != nil {
					return err
				}
				return cmdCtx.Renderer.Calls("Call history", calls)
			}

			contact, err := cmdCtx.Book.GetContact(cmd.Context(), contactID)
			if err != nil {
				return err
			}
			calls, err := cmdCtx.Book.ContactCallHistory(cmd.Context(), contactID)
			if err != nil {
				return err
			}
			return cmdCtx.Renderer.Calls("Calls with "+contact.Name, calls)
		},
	}
}

func newCallFilterCommand() *cobra.Command {
	opts := &CallFilterOptions{}
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter calls by type or by day",
		Example: `  phonebook call filter --type missed
  phonebook call filter --date 2024-03-15`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			var (
				calls []*core.Call
				title string
			)
			if cmd.Flags().Changed("type") {
				calls, err = cmdCtx.Book.FilterCallsByType(cmd.Context(), opts.Type)
				title = strings.ToLower(strings.TrimSpace(opts.Type)) + " calls"
			} else {
				calls, err = cmdCtx.Book.FilterCallsByDate(cmd.Context(), opts.Date)
				title = "Calls on " + strings.TrimSpace(opts.Date)
			}
			if err != nil {
				return err
			}
			return cmdCtx.Renderer.Calls(title, calls)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "Call type: "+strings.Join(callTypeNames(), ", "))
	cmd.Flags().StringVar(&opts.Date, "date", "", "Calendar day as YYYY-MM-DD")
	cmd.MarkFlagsMutuallyExclusive("type", "date")
	cmd.MarkFlagsOneRequired("type", "date")
	_ = cmd.RegisterFlagCompletionFunc("type", completeCallTypes)
	return cmd
}
