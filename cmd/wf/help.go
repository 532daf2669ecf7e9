package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/widgetfactory/internal/ui"
)

var (
	// "Widgets:", "Global Flags:"
	reSection = regexp.MustCompile(`^[A-Z][A-Za-z ]*:$`)
	// "  create-widget      Validate and store a new widget"
	reCommandRow = regexp.MustCompile(`^(  )([a-z][a-z0-9-]*)(\s{2,}\S.*)$`)
	// "--columns int", "--type strings"
	reFlagType = regexp.MustCompile(`(--[a-z-]+ )(stringArray|strings|string|int|duration)\b`)
	// (default "json"), (default 12)
	reDefault = regexp.MustCompile(`\(default ("[^"]*"|[^)\s]+)\)`)
	// Use "wf [command] --help" for more information about a command.
	reFooter = regexp.MustCompile(`^Use "wf .*"`)
)

// helpFunc prints the same text as cobra's default help, styled when stdout
// takes color.
func helpFunc(cmd *cobra.Command, _ []string) {
	var b strings.Builder
	if desc := strings.TrimRight(cmd.Long, " \n"); desc != "" {
		b.WriteString(desc + "\n\n")
	} else if cmd.Short != "" {
		b.WriteString(cmd.Short + "\n\n")
	}
	if cmd.Runnable() || cmd.HasSubCommands() {
		b.WriteString(cmd.UsageString())
	}

	text := b.String()
	if ui.ShouldUseColor() {
		text = colorizeHelpOutput(text)
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
}

// colorizeHelpOutput styles cobra's plain help one line at a time.
func colorizeHelpOutput(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = colorizeHelpLine(line)
	}
	return strings.Join(lines, "\n")
}

func colorizeHelpLine(line string) string {
	switch {
	case reSection.MatchString(line):
		return ui.RenderAccent(line)
	case reFooter.MatchString(line):
		return ui.RenderMuted(line)
	}
	if m := reCommandRow.FindStringSubmatch(line); m != nil {
		return m[1] + ui.RenderCommand(m[2]) + m[3]
	}
	line = reFlagType.ReplaceAllStringFunc(line, func(match string) string {
		m := reFlagType.FindStringSubmatch(match)
		return m[1] + ui.RenderMuted(m[2])
	})
	return reDefault.ReplaceAllStringFunc(line, ui.RenderMuted)
}
