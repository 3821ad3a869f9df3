package main

import (
	"fmt"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/maastricht-university/survey-audio/orchestrator"
)

const detailWidth = 60

func renderResults(results []orchestrator.AssetResult) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Footer = text.FormatDefault
	tw.AppendHeader(table.Row{"#", "File", "Status", "Detail"})

	counts := map[orchestrator.AssetStatus]int{}
	for i, r := range results {
		counts[r.Status]++
		name := filepath.Base(r.Path)
		if r.Path == "" {
			name = r.URL
		}
		tw.AppendRow(table.Row{i + 1, name, r.Status, detail(r)})
	}
	tw.AppendFooter(table.Row{"", "", "", summary(counts)})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, WidthMax: detailWidth},
	})
	return tw.Render()
}

func detail(r orchestrator.AssetResult) string {
	env := r.Envelope
	switch {
	case env == nil:
		return ""
	case env.Failed():
		return env.Code + ": " + env.Error
	default:
		return text.Trim(env.AudioText, detailWidth)
	}
}

func summary(counts map[orchestrator.AssetStatus]int) string {
	return fmt.Sprintf("%d analyzed, %d skipped, %d failed",
		counts[orchestrator.AssetAnalyzed], counts[orchestrator.AssetSkipped], counts[orchestrator.AssetFailed])
}
