package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"orl-assistant/internal/dto"
	"orl-assistant/internal/xano"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	success = color.New(color.FgGreen, color.Bold)
	notice  = color.New(color.FgYellow)
	faint   = color.New(color.Faint)
)

// withSpinner shows progress on stderr while fn runs. The spinner stays
// silent when stderr is not a terminal.
func withSpinner(cmd *cobra.Command, label string, fn func() error) error {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " " + label
	_ = s.Color("cyan", "bold")
	s.Start()
	err := fn()
	s.Stop()
	return err
}

// describeError turns backend and validation failures into one readable line.
func describeError(err error) error {
	var vErr *dto.ValidationError
	if errors.As(err, &vErr) {
		return fmt.Errorf("%s %s", vErr.Field, vErr.Message)
	}
	if apiErr, ok := xano.AsAPIError(err); ok && apiErr.Field != "" {
		return fmt.Errorf("%w (field: %s)", err, apiErr.Field)
	}
	return err
}

// prompt reads one line for value when the flag was left empty.
func (a *app) prompt(cmd *cobra.Command, label string, value *string) error {
	if *value != "" {
		return nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", label)
	if a.in == nil {
		a.in = bufio.NewReader(cmd.InOrStdin())
	}
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	*value = strings.TrimRight(line, "\r\n")
	return nil
}
