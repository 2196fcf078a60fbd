package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"rightscan/internal/analysis"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true).MarginBottom(1)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Italic(true)
)

// maxTerminalMatches caps how many match rows the terminal summary prints;
// the full list always goes to the file reports.
const maxTerminalMatches = 25

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(headers))
	for i := range headers {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// RenderSummary prints the run outcome to w as a styled terminal report.
func RenderSummary(w io.Writer, result *analysis.Result) {
	artist := "unknown"
	if result.Artist != nil {
		artist = result.Artist.Name
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Unclaimed rights analysis: %s", artist)))

	statRows := [][]string{
		{"Total tracks", strconv.Itoa(result.Stats.TotalTracks)},
		{"Tracks with ISRC", strconv.Itoa(result.Stats.TracksWithISRC)},
		{"Unclaimed matches", strconv.Itoa(result.Stats.MatchCount)},
		{"Match rate", fmt.Sprintf("%.2f%%", result.Stats.MatchRate)},
	}
	if result.Dataset != nil {
		statRows = append(statRows,
			[]string{"Dataset rows scanned", strconv.Itoa(result.Dataset.TotalRows)},
			[]string{"Dataset rows indexed", strconv.Itoa(result.Dataset.IndexedRows)},
		)
	}
	fmt.Fprintln(w, renderTable([]string{"Stat", "Value"}, statRows, []columnAlignment{alignLeft, alignRight}))

	if len(result.Matches) == 0 {
		fmt.Fprintln(w, okStyle.Render("No unclaimed matches found."))
		return
	}

	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d catalog tracks appear in the unclaimed rights dataset:", len(result.Matches))))

	shown := result.Matches
	if len(shown) > maxTerminalMatches {
		shown = shown[:maxTerminalMatches]
	}
	rows := make([][]string, 0, len(shown))
	for _, m := range shown {
		rows = append(rows, []string{m.TrackName, m.AlbumName, m.ReleaseDate, m.ISRC, m.RowID})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Track", "Album", "Released", "ISRC", "Row ID"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
	))

	if len(result.Matches) > maxTerminalMatches {
		fmt.Fprintln(w, helpStyle.Render(fmt.Sprintf("...and %d more; see the written reports for the full list.", len(result.Matches)-maxTerminalMatches)))
	}
}
