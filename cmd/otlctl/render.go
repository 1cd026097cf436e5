package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/riskibarqy/overload-teams-league/internal/domain/rating"
	"github.com/riskibarqy/overload-teams-league/internal/domain/team"
	"github.com/riskibarqy/overload-teams-league/internal/usecase"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderRatings(w io.Writer, season int, items []rating.TeamRating, teams map[string]team.Team) {
	t := newTable(w)
	t.SetTitle(fmt.Sprintf("Season %d", season))
	t.AppendHeader(table.Row{"#", "Tag", "Team", "Rating"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	for i, item := range items {
		tag, name := item.TeamID, ""
		if known, ok := teams[item.TeamID]; ok {
			tag, name = known.Tag, known.Name
		}
		t.AppendRow(table.Row{i + 1, tag, name, fmt.Sprintf("%.0f", item.Rating)})
	}
	if len(items) == 0 {
		t.AppendFooter(table.Row{"", "", "no confirmed matches", ""})
	}
	t.Render()
}

func renderTeams(w io.Writer, teams []team.Team, includeDisbanded bool) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Tag", "Name", "Division", "Pilots", "Founder", "Status"})
	for _, item := range teams {
		if item.Disbanded && !includeDisbanded {
			continue
		}
		t.AppendRow(table.Row{
			item.Tag,
			item.Name,
			string(item.League),
			len(item.PilotIDs),
			item.FounderID,
			teamStatus(item),
		})
	}
	t.Render()
}

func teamStatus(item team.Team) string {
	var flags []string
	if item.Disbanded {
		flags = append(flags, "disbanded")
	}
	if item.Locked {
		flags = append(flags, "locked")
	}
	if item.Penalties > 0 {
		flags = append(flags, fmt.Sprintf("%d strike(s)", item.Penalties))
	}
	if len(flags) == 0 {
		return "active"
	}
	return strings.Join(flags, ", ")
}

func renderNotifyReport(w io.Writer, report usecase.NotifyReport) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Notification", "Sent"})
	t.AppendRows([]table.Row{
		{"Clock expired", report.ExpiredClocks},
		{"Match starting", report.StartingMatches},
		{"Match missed", report.MissedMatches},
	})
	t.AppendFooter(table.Row{"Failed", report.Failed})
	t.Render()
}
