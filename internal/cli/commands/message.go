package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/phonebook/pkg/core"
	"github.com/spf13/cobra"
)

// NewMessageCommand creates the message command group.
func NewMessageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "message",
		Aliases: []string{"messages", "msg"},
		Short:   "Log and search messages",
	}

	cmd.AddCommand(
		newMessageLogCommand(),
		newMessageConversationCommand(),
		newMessageSearchCommand(),
	)
	return cmd
}

func newMessageLogCommand() *cobra.Command {
	var direction string
	cmd := &cobra.Command{
		Use:   "log <contact-id> <content>",
		Short: "Log a message sent to or received from a contact",
		Example: `  phonebook message log 1 "See you at noon" --direction sent
  phonebook message log 1 "On my way" -d r`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			contactID, err := parseID(args[0])
			if err != nil {
				return err
			}
			dir, err := core.ParseDirection(direction)
			if err != nil {
				return err
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			m, err := cmdCtx.Book.LogMessage(cmd.Context(), contactID, strings.Join(args[1:], " "), dir)
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			r.Success("Message logged.")
			return r.Message(m)
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "", "Message direction: sent (s) or received (r)")
	_ = cmd.MarkFlagRequired("direction")
	_ = cmd.RegisterFlagCompletionFunc("direction", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"sent", "received"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func newMessageConversationCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "conversation <contact-id>",
		Aliases: []string{"thread"},
		Short:   "Show every message with a contact in order",
		Args:    cobra.ExactArgs(1),
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

			contact, err := cmdCtx.Book.GetContact(cmd.Context(), contactID)
			if err != nil {
				return err
			}
			messages, err := cmdCtx.Book.Conversation(cmd.Context(), contactID)
			if err != nil {
				return err
			}
			return cmdCtx.Renderer.Conversation(contact, messages)
		},
	}
}

func newMessageSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search message content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			keyword := strings.Join(args, " ")
			messages, err := cmdCtx.Book.SearchMessages(cmd.Context(), keyword)
			if err != nil {
				return err
			}
			return cmdCtx.Renderer.Messages(fmt.Sprintf("Messages matching %q", keyword), messages)
		},
	}
}
