/*
main.go - Revenue report CLI

PURPOSE:
  Renders the time-bucketed revenue matrix from a SQLite database as a
  terminal table: one row per project, grouped under its contract, with
  contract subtotals and a grand total row.

COMMAND-LINE FLAGS:
  -db           SQLite database path (default: revenue.db)
  -granularity  monthly|quarterly|yearly (default: monthly)
  -from, -to    YYYY-MM-DD bounds (default: the current calendar year)

EXAMPLES:
  ./report -db=./data/revenue.db -granularity=quarterly
  ./report -from=2025-01-01 -to=2025-06-30
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/warp/revenue-engine/engine"
	"github.com/warp/revenue-engine/report"
	"github.com/warp/revenue-engine/store/sqlite"
)

func main() {
	dbPath := flag.String("db", "revenue.db", "SQLite database path")
	granularity := flag.String("granularity", "monthly", "monthly, quarterly or yearly")
	fromFlag := flag.String("from", "", "range start (YYYY-MM-DD)")
	toFlag := flag.String("to", "", "range end (YYYY-MM-DD)")
	flag.Parse()

	year := engine.Today().Year()
	from := engine.StartOfYear(year)
	to := engine.EndOfYear(year)

	var err error
	if *fromFlag != "" {
		if from, err = engine.ParseTimePoint(*fromFlag); err != nil {
			fatalf("invalid -from date: %v", err)
		}
	}
	if *toFlag != "" {
		if to, err = engine.ParseTimePoint(*toFlag); err != nil {
			fatalf("invalid -to date: %v", err)
		}
	}
	if to.Before(from) {
		fatalf("range end %s is before range start %s", to, from)
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		fatalf("failed to open database: %v", err)
	}
	defer store.Close()

	pf, err := store.Snapshot(context.Background())
	if err != nil {
		fatalf("failed to read portfolio: %v", err)
	}

	buckets := report.Buckets(from, to, report.Granularity(*granularity))
	matrix := report.Build(pf, buckets)
	render(matrix, buckets)
}

func render(m *report.Matrix, buckets []report.Bucket) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)

	header := table.Row{"Contract / Project"}
	for _, b := range buckets {
		header = append(header, b.Label)
	}
	header = append(header, "Total")
	tw.AppendHeader(header)

	for _, g := range m.Contracts {
		appendGroup(tw, g)
	}
	if m.Unassigned != nil {
		appendGroup(tw, *m.Unassigned)
	}

	footer := table.Row{"Grand total"}
	for _, cell := range m.GrandTotal {
		footer = append(footer, cell.String())
	}
	footer = append(footer, m.Total.String())
	tw.AppendFooter(footer)

	tw.Render()
}

func appendGroup(tw table.Writer, g report.ContractGroup) {
	row := table.Row{g.Name}
	for _, cell := range g.Cells {
		row = append(row, cell.String())
	}
	row = append(row, g.Total.String())
	tw.AppendRow(row)

	for _, p := range g.Projects {
		row := table.Row{"  " + p.Name}
		for _, cell := range p.Cells {
			row = append(row, cell.String())
		}
		row = append(row, p.Total.String())
		tw.AppendRow(row)
	}
	tw.AppendSeparator()
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
