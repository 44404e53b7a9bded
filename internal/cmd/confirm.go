package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
)

type confirmContextKey struct{}

// SetAutoApprove stores the --yes flag on the command context so Confirm
// can skip the prompt.
func SetAutoApprove(cmd *cobra.Command, approved bool) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, confirmContextKey{}, approved))
}

// AutoApproveEnabled reports whether the user opted to skip confirmation prompts.
func AutoApproveEnabled(helper Helper) bool {
	if helper == nil {
		return false
	}
	approved, _ := helper.GetContext().Value(confirmContextKey{}).(bool)
	return approved
}

// Confirm asks the user to type 'yes' before a destructive action on
// description. Any other answer, EOF, an interrupt or a cancelled context
// returns an ExecutionError.
func Confirm(helper Helper, action, description string) error {
	if AutoApproveEnabled(helper) {
		return nil
	}

	streams := helper.GetStreams()
	fmt.Fprintf(streams.Out, "\nYou are about to %s %s\n", action, description)
	fmt.Fprint(streams.Out, "\nDo you want to continue? Type 'yes' to confirm: ")

	input := streams.In
	if f, ok := input.(*os.File); ok && f.Fd() == os.Stdin.Fd() {
		if tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0); err == nil {
			defer tty.Close()
			input = tty
		}
	}

	lineCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func(r io.Reader) {
		line, err := bufio.NewReader(r).ReadString('\n')
		if err != nil && line == "" {
			errCh <- err
			return
		}
		lineCh <- line
	}(input)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	cancelled := PrepareExecutionErrorMsg(helper, action+" cancelled")
	select {
	case <-helper.GetContext().Done():
		return cancelled
	case <-sigCh:
		return cancelled
	case <-errCh:
		return cancelled
	case line := <-lineCh:
		if strings.ToLower(strings.TrimSpace(line)) != "yes" {
			return cancelled
		}
		return nil
	}
}
