package gatekeeper

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/reglet-dev/extcompat/artifact"
)

// TerminalPrompter asks for confirmation on the terminal.
type TerminalPrompter struct{}

// NewTerminalPrompter creates a TerminalPrompter.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{}
}

// IsInteractive reports whether stdin is a terminal.
func (p *TerminalPrompter) IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ConfirmUnverified asks whether res may be locked even though the host's
// capabilities are unknown.
func (p *TerminalPrompter) ConfirmUnverified(res *artifact.Resolution) (granted bool, always bool, err error) {
	sel := res.Outcome.Selected

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "\033[1;33mCapability check skipped\033[0m\n\n")
	fmt.Fprintf(os.Stderr, "  No capability list was found for host %s.\n", res.HostVersion)
	fmt.Fprintf(os.Stderr, "  %s %s was accepted without checking its %d requirement(s).\n",
		res.ID, sel.Record.Version, len(sel.Requirements))
	fmt.Fprintf(os.Stderr, "\n")

	const (
		OptionYes    = "Yes, lock this version"
		OptionAlways = "Always allow this artifact (save approval)"
		OptionNo     = "No, abort"
	)

	var selection string

	err = huh.NewSelect[string]().
		Title("Lock unverified version?").
		Description(fmt.Sprintf("%s %s", res.ID, sel.Record.Version)).
		Options(
			huh.NewOption(OptionYes, OptionYes),
			huh.NewOption(OptionAlways, OptionAlways),
			huh.NewOption(OptionNo, OptionNo),
		).
		Value(&selection).
		Run()
	if err != nil {
		return false, false, err
	}

	switch selection {
	case OptionYes:
		return true, false, nil
	case OptionAlways:
		return true, true, nil
	default:
		return false, false, nil
	}
}

// ConfirmWrite asks before overwriting an existing lockfile.
func (p *TerminalPrompter) ConfirmWrite(path string, count int) (bool, error) {
	confirmed := true
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Write %d artifact(s) to %s?", count, path)).
		Affirmative("Write").
		Negative("Cancel").
		Value(&confirmed).
		Run()
	if err != nil {
		return false, err
	}
	return confirmed, nil
}
