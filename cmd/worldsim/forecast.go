package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/randalmurphal/worldevents/pkg/worldevents"
	"github.com/randalmurphal/worldevents/pkg/worldevents/forecast"
	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
	"github.com/randalmurphal/worldevents/pkg/worldevents/risk"
)

func forecastCmd() *cobra.Command {
	var (
		days int
		seed int64
		top  int
	)
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Print the merged provider forecast for the next days",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printForecast(cmd.Context(), days, seed, top)
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "forecast horizon in days")
	cmd.Flags().Int64Var(&seed, "seed", 1, "seed for the built-in providers")
	cmd.Flags().IntVar(&top, "top", 20, "print at most this many predictions (0 for all)")
	return cmd
}

func printForecast(ctx context.Context, days int, seed int64, top int) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	opts, err := engineOptions()
	if err != nil {
		return err
	}
	opts = append(opts,
		worldevents.WithLogger(logger),
		worldevents.WithForecastProviders(forecast.NoiseProviders(cat, seed)...),
	)
	engine, err := worldevents.New(cat, opts...)
	if err != nil {
		return err
	}

	f, err := engine.GenerateEventForecast(ctx, days)
	if err != nil {
		return err
	}
	if viper.GetBool("json") {
		return printJSON(f)
	}

	preds := f.Predictions
	if top > 0 && len(preds) > top {
		preds = preds[:top]
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetTitle(fmt.Sprintf("Forecast, %d days, confidence %.2f", f.Days, f.ConfidenceLevel))
	tw.AppendHeader(table.Row{"Type", "Region", "Severity", "Probability", "Day", "Source"})
	for _, p := range preds {
		tw.AppendRow(table.Row{p.Type, p.Region, p.Severity, fmt.Sprintf("%.3f", p.Probability), p.DayOffset, p.Source})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Probability", Align: text.AlignRight},
		{Name: "Day", Align: text.AlignRight},
	})
	if len(f.Degraded) > 0 {
		tw.AppendFooter(table.Row{"degraded", strings.Join(f.Degraded, ", ")})
	}
	tw.Render()
	return nil
}

func renderRisk(a risk.Assessment) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetTitle(fmt.Sprintf("Risk %.1f, trend %s, %d active", a.OverallRisk, a.Trend, a.ActiveEventCount))
	tw.AppendHeader(table.Row{"Category", "Score"})
	cats := make([]model.RiskCategory, 0, len(a.Categories))
	for c := range a.Categories {
		cats = append(cats, c)
	}
	slices.Sort(cats)
	for _, c := range cats {
		marker := ""
		if c == a.HighestCategory {
			marker = " *"
		}
		tw.AppendRow(table.Row{string(c) + marker, fmt.Sprintf("%.1f", a.Categories[c])})
	}
	tw.Render()
	fmt.Println()
}
