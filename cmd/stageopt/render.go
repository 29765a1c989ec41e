package main

import (
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/internal/search"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/models"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Width(16)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	totalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1)
)

var columns = []struct {
	title string
	width int
}{
	{"Stage", 6},
	{"Engine", 12},
	{"Count", 6},
	{"Δv m/s", 9},
	{"Fuel t", 10},
	{"Mass t", 10},
}

func cell(text string, width int, style lipgloss.Style) string {
	return style.Width(width).Align(lipgloss.Right).Render(text)
}

// stageLine is the compact "engine x count: mass t" form of a stage.
func stageLine(st models.Stage) string {
	return fmt.Sprintf("%s x %d: %.2f t", st.Engine.Name, st.Count, st.Mass)
}

// renderResult prints stages bottom first, numbered in firing order.
func renderResult(vr models.VehicleRequirement, res *search.Result) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%d-stage vehicle, %.0f m/s, payload %.2f t",
		vr.StageCount, vr.DeltaV, vr.Payload)))
	b.WriteString("\n\n")

	header := make([]string, 0, len(columns))
	for _, c := range columns {
		header = append(header, cell(c.title, c.width, headerStyle))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteString("\n")

	n := len(res.Stages)
	for i := n - 1; i >= 0; i-- {
		st := res.Stages[i]
		row := []string{
			cell(fmt.Sprintf("%d", n-i), columns[0].width, valueStyle),
			cell(st.Engine.Name, columns[1].width, valueStyle),
			cell(fmt.Sprintf("%d", st.Count), columns[2].width, valueStyle),
			cell(fmt.Sprintf("%.0f", st.DeltaV), columns[3].width, valueStyle),
			cell(fmt.Sprintf("%.2f", st.FuelMass), columns[4].width, valueStyle),
			cell(fmt.Sprintf("%.2f", st.Mass), columns[5].width, valueStyle),
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Launch mass:"))
	b.WriteString(totalStyle.Render(fmt.Sprintf("%.2f t", res.LaunchMass)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Split fraction:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.3f", res.Fraction)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Feasible:"))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d of %d (%s)", res.Feasible, res.Samples, res.Sampler)))
	b.WriteString("\n\n")

	lines := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		lines = append(lines, stageLine(res.Stages[i]))
	}
	b.WriteString(boxStyle.Render(strings.Join(lines, "\n")))

	return b.String()
}
