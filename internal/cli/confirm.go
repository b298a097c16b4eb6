package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"todo-cli/internal/view"

	"github.com/spf13/cobra"
)

// confirmOnStdin asks the shared yes/no question on stderr and reads the
// answer from stdin. Anything but y/yes (or the confirm label) cancels.
func confirmOnStdin(cmd *cobra.Command, a view.Action) (bool, error) {
	c := view.NewConfirm()
	c.Open(a)
	p := c.Prompt()

	fmt.Fprintf(cmd.ErrOrStderr(), "%s\n%s\n[%s/%s] (y/N): ", p.Title, p.Body, p.ConfirmLabel, p.CancelLabel)

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		c.Dismiss()
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	confirmed := answer == "y" || answer == "yes" || answer == strings.ToLower(p.ConfirmLabel)

	_, ok := c.Resolve(confirmed)
	return ok, nil
}
