package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/entrhq/priceiq/pkg/types"
)

var (
	white   = lipgloss.Color("15")
	cyan    = lipgloss.Color("14")
	blue    = lipgloss.Color("12")
	green   = lipgloss.Color("10")
	yellow  = lipgloss.Color("11")
	magenta = lipgloss.Color("13")
	red     = lipgloss.Color("9")
	dim     = lipgloss.Color("8")
)

var (
	welcomeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(white).
			Padding(2, 4).
			Width(70).
			Align(lipgloss.Center)

	productStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(green).
			Padding(1, 2)

	labelStyle  = lipgloss.NewStyle().Foreground(yellow)
	valueStyle  = lipgloss.NewStyle().Foreground(white).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(dim)
	accentStyle = lipgloss.NewStyle().Foreground(cyan)

	stoppedStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(red).
			Foreground(red).
			Bold(true).
			Padding(0, 1)

	savedStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(green).
			Foreground(green).
			Padding(0, 1)
)

// toolStyle is the icon, color and label shown for a tool's progress.
type toolStyle struct {
	icon  string
	color lipgloss.Color
	label string
}

var toolStyles = map[string]toolStyle{
	"web_search":     {"🔍", blue, "Web Discovery"},
	"visit_url":      {"🌐", green, "Page Analysis"},
	"screenshot":     {"📸", magenta, "Visual Intelligence"},
	"find_on_page":   {"🎯", yellow, "Content Search"},
	"page_down":      {"⬇️", cyan, "Navigation"},
	"page_up":        {"⬆️", cyan, "Navigation"},
	"find_next":      {"🔄", yellow, "Search Continue"},
	"product_pricer": {"💰", green, "Price Analysis"},
}

func styleFor(toolName string) toolStyle {
	if s, ok := toolStyles[toolName]; ok {
		return s
	}
	return toolStyle{"⚡", white, "Processing"}
}

func printWelcome() {
	var b strings.Builder
	b.WriteString(valueStyle.Render("price") + lipgloss.NewStyle().Foreground(cyan).Bold(true).Render("iq") + "\n")
	b.WriteString(valueStyle.Render("agent") + "\n\n")
	b.WriteString(lipgloss.NewStyle().Italic(true).Render("intelligent product price discovery") + "\n")
	b.WriteString(mutedStyle.Render("less but better pricing intelligence") + "\n\n")
	for _, feature := range []string{
		"real-time market monitoring",
		"cross-platform price comparison",
		"intelligent content navigation",
		"visual webpage analysis",
	} {
		b.WriteString(accentStyle.Render("  ▸ ") + feature + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("Press ") + lipgloss.NewStyle().Foreground(red).Bold(true).Render("'q'") + mutedStyle.Render(" and Enter to stop"))

	fmt.Println(welcomeStyle.Render(b.String()))
	fmt.Println()
}

func printProduct(product string, index, total int) {
	bar := strings.Repeat("▓", index) + strings.Repeat("░", total-index-1)
	body := labelStyle.Render("◈ Product: ") + valueStyle.Render(product) + "\n" +
		labelStyle.Render("◈ Progress: ") + accentStyle.Bold(true).Render(fmt.Sprintf("%d/%d", index+1, total)) + " " +
		lipgloss.NewStyle().Foreground(blue).Render(bar) + "\n" +
		labelStyle.Render("◈ Status: ") + lipgloss.NewStyle().Foreground(green).Render("Analyzing market data...")

	fmt.Println(mutedStyle.Render(fmt.Sprintf("╭─ processing product %d ─╮", index+1)))
	fmt.Println(productStyle.Render(body))
	fmt.Println()
}

func printProgress(toolName, message string) {
	s := styleFor(toolName)
	tick := int(time.Now().UnixMilli()/500) % 4
	dots := strings.Repeat("●", tick) + strings.Repeat("○", 3-tick)

	body := lipgloss.NewStyle().Foreground(s.color).Render(s.icon+" ") +
		lipgloss.NewStyle().Foreground(s.color).Bold(true).Render(s.label) + "\n" +
		mutedStyle.Render("▸ ") + message + "\n  " +
		lipgloss.NewStyle().Foreground(s.color).Render(dots)

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.color).
		Padding(0, 1).
		Width(80)
	fmt.Println(panel.Render(body))
}

// printResults renders one row per website in input order.
func printResults(product string, websites []string, results types.Results) {
	header := lipgloss.NewStyle().Foreground(cyan).Bold(true)
	cell := func(s string, width int) string {
		return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(s)
	}

	rows := []string{
		header.Render(cell("Website", 30) + " " + cell("Status", 8) + " " + cell("Price", 15) + " " + cell("Availability", 20)),
	}
	for _, site := range orderedSites(websites, results) {
		rec := results[site]
		status := lipgloss.NewStyle().Foreground(red).Render(cell("✗", 8))
		if rec.Status == types.StatusSuccess {
			status = lipgloss.NewStyle().Foreground(green).Render(cell("✓", 8))
		}
		rows = append(rows, lipgloss.NewStyle().Foreground(blue).Render(cell(site, 30))+" "+status+" "+
			lipgloss.NewStyle().Foreground(green).Render(cell(orNA(rec.Price), 15))+" "+
			lipgloss.NewStyle().Foreground(yellow).Render(cell(orNA(rec.Availability), 20)))
	}

	fmt.Println()
	fmt.Println(valueStyle.Render("Results for " + product))
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Render(strings.Join(rows, "\n")))
	fmt.Println()
}

// orderedSites lists the requested websites first, then any others in the results.
func orderedSites(websites []string, results types.Results) []string {
	seen := make(map[string]bool, len(websites))
	var out []string
	for _, site := range websites {
		if _, ok := results[site]; ok && !seen[site] {
			seen[site] = true
			out = append(out, site)
		}
	}
	var rest []string
	for site := range results {
		if !seen[site] {
			rest = append(rest, site)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// printJSON writes the results JSON with terminal syntax highlighting.
func printJSON(content string) {
	if err := quick.Highlight(os.Stdout, content+"\n", "json", "terminal256", "monokai"); err != nil {
		fmt.Println(content)
	}
	fmt.Println()
}

func printStopped() {
	fmt.Println(stoppedStyle.Render("◆ Process stopped by user"))
}

func printError(msg string) {
	fmt.Println(stoppedStyle.Render("◆ " + msg))
}

func printSaved(path string) {
	fmt.Println(savedStyle.Render("◆ Results saved to: " + path))
}
