package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/trexis-racing/roster/internal/client/form"
	"github.com/trexis-racing/roster/internal/client/model"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	activeStyle   = cellStyle.Foreground(lipgloss.Color("2"))
	inactiveStyle = cellStyle.Foreground(lipgloss.Color("8"))
	labelStyle    = lipgloss.NewStyle().Bold(true).Width(12)
)

const statusColumn = 5

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

func renderMembers(w io.Writer, members []model.Member) {
	if len(members) == 0 {
		fmt.Fprintln(w, "no members")
		return
	}

	rows := make([][]string, 0, len(members))
	for _, m := range members {
		rows = append(rows, []string{
			strconv.Itoa(m.Id), m.FirstName, m.LastName, m.JobTitle, m.Team, string(m.Status),
		})
	}
	t := newTable("ID", "FIRST NAME", "LAST NAME", "JOB TITLE", "TEAM", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == statusColumn && rows[row][col] == string(model.StatusActive):
				return activeStyle
			case col == statusColumn:
				return inactiveStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func renderMember(w io.Writer, id int, v form.Values) {
	fields := [][2]string{
		{"Id", strconv.Itoa(id)},
		{"First name", v.FirstName},
		{"Last name", v.LastName},
		{"Job title", v.JobTitle},
		{"Team", v.Team},
		{"Status", string(v.Status)},
	}
	for _, f := range fields {
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(f[0]), f[1]))
	}
}

func renderTeams(w io.Writer, teams []model.Team) {
	t := newTable("TEAM").StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		return cellStyle
	})
	for _, team := range teams {
		t.Row(team.Name)
	}
	fmt.Fprintln(w, t.Render())
}
