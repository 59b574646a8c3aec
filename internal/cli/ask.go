package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"litegpt/internal/app"
	"litegpt/internal/core"
)

func newAskCommand(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message through the chat pipeline and print the reply",
		Long: `Send one message through the same pipeline the HTTP gateway uses and print the reply.

Examples:
  litegpt ask "my name is alice"
  litegpt ask "What is the capital of France?"
  litegpt ask --model llama3 "Tell me a joke"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.New(app.Config{
				AppConfig: state.config,
				Logger:    state.logger,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			resp, err := application.Chat().Reply(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return describeError(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.Reply)
			return nil
		},
	}
}

// describeError turns a gateway error into the message shown on the terminal.
func describeError(err error) error {
	var gatewayErr *core.GatewayError
	if !errors.As(err, &gatewayErr) {
		return err
	}
	msg := gatewayErr.Message
	if gatewayErr.Type == core.ErrorTypeBackendUnavailable {
		msg += " " + color.YellowString("(is `ollama serve` running?)")
	}
	return errors.New(msg)
}
