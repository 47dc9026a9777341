package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm prints question and reads a yes/no answer from in.
// Anything other than "y" or "yes" (case-insensitive) declines.
func Confirm(in io.Reader, out io.Writer, question string) bool {
	_, _ = fmt.Fprint(out, WarningTitleStyle.Render(fmt.Sprintf("%s  %s [y/N]: ", WarningMarker, question)))

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		_, _ = fmt.Fprintln(out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		_, _ = fmt.Fprintln(out, SubtitleStyle.Render("Cancelled."))
		return false
	}
}
