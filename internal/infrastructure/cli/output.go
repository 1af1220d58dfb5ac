package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	"github.com/felixgeelhaar/hybridai/pkg/application"
	"github.com/felixgeelhaar/hybridai/pkg/domain/routing"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(1).
			PaddingRight(1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func approachLine(s routing.Summary) string {
	line := fmt.Sprintf("%s via %s", s.Approach, s.Primary)
	if s.Secondary != nil {
		line += fmt.Sprintf(" + %s", s.Secondary)
	}
	return line
}

// printDecision writes the short routing header shown before a run.
func printDecision(w io.Writer, plan *application.RoutingPlan) {
	fmt.Fprintf(w, "%s %s %s\n",
		headerStyle.Render("hybrid-ai"),
		labelStyle.Render(fmt.Sprintf("%d chars, %s complexity:", plan.TaskLength, plan.Complexity)),
		okStyle.Render(approachLine(plan.Decision)))
	for _, warning := range plan.Warnings {
		fmt.Fprintln(w, warnStyle.Render("! "+warning))
	}
}

// printPlan writes the full routing explanation for --explain.
func printPlan(w io.Writer, plan *application.RoutingPlan) {
	row := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-13s", label)), value)
	}
	fmt.Fprintln(w, headerStyle.Render("Routing plan"))
	row("Length", fmt.Sprintf("%d characters", plan.TaskLength))
	row("Complexity", fmt.Sprintf("%s (%s)", plan.Complexity, plan.ComplexityDescription))
	row("Approach", approachLine(plan.Decision))
	row("Reason", plan.Decision.Justification)
	row("Local", yesNo(plan.Capabilities.Local))
	row("Aggregator", yesNo(plan.Capabilities.Aggregator))
	row("Remote", yesNo(plan.Capabilities.Remote))
	source := plan.CredentialSource
	if plan.CredentialPath != "" {
		source += " (" + plan.CredentialPath + ")"
	}
	row("Credentials", source)
	for _, warning := range plan.Warnings {
		fmt.Fprintln(w, warnStyle.Render("! "+warning))
	}
}

func yesNo(ok bool) string {
	if ok {
		return okStyle.Render("configured")
	}
	return labelStyle.Render("not configured")
}

// printReport writes the report, rendered as markdown when render is set.
func printReport(w io.Writer, report string, render bool) {
	if render {
		if rendered, err := renderMarkdown(report, terminalWidth(w)); err == nil {
			fmt.Fprint(w, rendered)
			return
		}
	}
	fmt.Fprintln(w, report)
}

func renderMarkdown(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(f.Fd()); err == nil && width > 20 {
			return width - 2
		}
	}
	return 100
}

// printError writes err and its hint. Pipeline failures get a banner naming
// the phase that stopped the run.
func printError(w io.Writer, err error) {
	var cliErr *CLIError
	if !errors.As(err, &cliErr) {
		fmt.Fprintln(w, errStyle.Render("Error: ")+err.Error())
		return
	}
	if cliErr.Banner != "" {
		fmt.Fprintln(w, errStyle.Render(strings.Repeat("=", len(cliErr.Banner))))
		fmt.Fprintln(w, errStyle.Render(cliErr.Banner))
		fmt.Fprintln(w, errStyle.Render(strings.Repeat("=", len(cliErr.Banner))))
	}
	fmt.Fprintln(w, errStyle.Render("Error: ")+cliErr.Error())
	if cliErr.Hint != "" {
		fmt.Fprintln(w, labelStyle.Render("Hint: ")+cliErr.Hint)
	}
}

// renderTable renders a static table with the header styling used across
// the CLI.
func renderTable(columns []table.Column, rows []table.Row) string {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)
	return t.View()
}
