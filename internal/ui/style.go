// Package ui renders companion state for the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"

	"planner/internal/board"
	"planner/internal/model"

	"github.com/fatih/color"
)

var (
	Bold      = color.New(color.Bold).SprintFunc()
	Dim       = color.New(color.Faint).SprintFunc()
	Cyan      = color.New(color.FgCyan).SprintFunc()
	Green     = color.New(color.FgGreen).SprintFunc()
	Red       = color.New(color.FgRed).SprintFunc()
	Yellow    = color.New(color.FgYellow).SprintFunc()
	BoldCyan  = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed   = color.New(color.Bold, color.FgRed).SprintFunc()
)

func Success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", BoldGreen("✓"), fmt.Sprintf(format, args...))
}

func Fail(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", BoldRed("✗"), fmt.Sprintf(format, args...))
}

func statusMark(s model.TaskStatus) string {
	switch s {
	case model.StatusDone:
		return Green("●")
	case model.StatusInProgress:
		return Yellow("◐")
	case model.StatusPostponed:
		return Dim("◌")
	}
	return "○"
}

// RenderBoard prints the view one column after another.
func RenderBoard(w io.Writer, v board.View) {
	switch v.EmptyState {
	case board.NoBoards:
		fmt.Fprintln(w, Dim("No boards yet."))
		return
	case board.NoGroups:
		fmt.Fprintf(w, "%s\n%s\n", Bold(v.Current.Name), Dim("This board has no columns."))
		return
	}

	fmt.Fprintln(w, Bold(v.Current.Name))
	for _, col := range v.Columns {
		fmt.Fprintf(w, "\n%s %s\n", BoldCyan(col.Group.Name), Dim(fmt.Sprintf("(%d/%d done, %d%%)", col.Done, col.Total, col.Completion)))
		if len(col.Tasks) == 0 {
			fmt.Fprintf(w, "  %s\n", Dim("empty"))
		}
		for _, t := range col.Tasks {
			fmt.Fprintf(w, "  %s %s %s\n", statusMark(t.Status), Dim(fmt.Sprintf("#%d", t.ID)), t.Name)
		}
	}
	if v.Unassigned > 0 {
		fmt.Fprintf(w, "\n%s\n", Dim(fmt.Sprintf("%d task(s) not on this board", v.Unassigned)))
	}
}

// RenderPlan prints the fixed hours of a day and what is left.
func RenderPlan(w io.Writer, p model.Plan) {
	fmt.Fprintln(w, Bold(p.Date))
	rows := []struct {
		label string
		hours float64
	}{
		{"Sleep", p.SleepTime},
		{"Commute", p.CommuteTime},
		{"Work", p.WorkTime},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %-8s %5.1fh %s\n", r.label, r.hours, Dim(strings.Repeat("▇", int(r.hours))))
	}
	free := fmt.Sprintf("%5.1fh", p.FreeHours())
	if p.Overbooked() {
		fmt.Fprintf(w, "  %-8s %s %s\n", "Free", Red(free), BoldRed("overbooked"))
		return
	}
	fmt.Fprintf(w, "  %-8s %s\n", "Free", Green(free))
}
