package report

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Table renders the identified classes, one row per label, with missing
// labels listed last.
func (r *Report) Table() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Label", "Unit"})

	labels := make([]string, 0, len(r.Classes))
	for l := range r.Classes {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		tw.AppendRow(table.Row{l, r.Classes[l]})
	}
	for _, l := range r.Missing {
		tw.AppendRow(table.Row{l, "-"})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	tw.AppendFooter(table.Row{"found", fmt.Sprintf("%d/%d", len(r.Classes), len(r.Classes)+len(r.Missing))})
	return tw.Render()
}

// ToppingTable renders per-topping timings.
func (r *Report) ToppingTable() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Topping", "Written", "Duration", "Error"})
	for _, t := range r.Toppings {
		tw.AppendRow(table.Row{t.Name, len(t.Written), fmt.Sprintf("%.2fms", t.DurationMS), t.Error})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	return tw.Render()
}
