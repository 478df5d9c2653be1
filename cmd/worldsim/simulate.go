package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/randalmurphal/worldevents/pkg/worldevents"
	"github.com/randalmurphal/worldevents/pkg/worldevents/generator"
	"github.com/randalmurphal/worldevents/pkg/worldevents/model"
	"github.com/randalmurphal/worldevents/pkg/worldevents/notify"
)

// simClock is a manually advanced clock.
type simClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *simClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *simClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type simulateOptions struct {
	ticks        int
	seed         uint64
	step         time.Duration
	cleanupEvery int
	boost        float64
	start        string
}

func simulateCmd() *cobra.Command {
	var o simulateOptions
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay ticks on a simulated clock and print the resulting events",
		Long: `simulate drives the engine without wall-clock timers: every tick advances the
clock by --step and runs generation and update; cleanup runs every
--cleanup-every ticks. The same --seed always produces the same run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return simulate(cmd.Context(), o)
		},
	}
	cmd.Flags().IntVar(&o.ticks, "ticks", 1440, "number of ticks to run")
	cmd.Flags().Uint64Var(&o.seed, "seed", 42, "random seed")
	cmd.Flags().DurationVar(&o.step, "step", time.Minute, "simulated time per tick")
	cmd.Flags().IntVar(&o.cleanupEvery, "cleanup-every", 10, "run cleanup every N ticks")
	cmd.Flags().Float64Var(&o.boost, "boost", 1, "multiply every generation probability (capped at 1)")
	cmd.Flags().StringVar(&o.start, "start", "2026-01-01T00:00:00Z", "simulated start time (RFC 3339)")
	return cmd
}

func simulate(ctx context.Context, o simulateOptions) error {
	if o.ticks <= 0 || o.step <= 0 || o.cleanupEvery <= 0 {
		return fmt.Errorf("--ticks, --step and --cleanup-every must be positive")
	}
	start, err := time.Parse(time.RFC3339, o.start)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}

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

	clock := &simClock{now: start}
	probs := maps.Clone(generator.DefaultProbabilities)
	for t, p := range probs {
		probs[t] = min(1, p*o.boost)
	}
	opts = append(opts,
		worldevents.WithLogger(logger),
		worldevents.WithClock(clock.Now),
		worldevents.WithSeed(o.seed),
		worldevents.WithProbabilities(probs),
		worldevents.WithIDFunc(sequentialIDs("sim")),
	)
	engine, err := worldevents.New(cat, opts...)
	if err != nil {
		return err
	}

	counts := newKindCounter()
	engine.SubscribeAll(counts.add)

	for i := 1; i <= o.ticks; i++ {
		clock.Advance(o.step)
		if err := engine.GenerateTick(ctx); err != nil {
			return err
		}
		if err := engine.UpdateTick(ctx); err != nil {
			return err
		}
		if i%o.cleanupEvery == 0 {
			if err := engine.CleanupTick(ctx); err != nil {
				return err
			}
		}
	}

	active := engine.ActiveEvents()
	history := engine.History()
	assessment := engine.GlobalRiskAssessment()
	// Closing drains every queued notification into counts.
	if err := engine.Bus().Close(); err != nil {
		return err
	}
	if viper.GetBool("json") {
		return printJSON(map[string]any{
			"simulated_until": clock.Now(),
			"active":          active,
			"history":         history,
			"risk":            assessment,
		})
	}

	fmt.Printf("Simulated %d ticks of %s, %s to %s\n\n", o.ticks, o.step, start.Format(time.RFC3339), clock.Now().Format(time.RFC3339))
	renderEvents("Active events", active, clock.Now())
	renderEvents("Resolved events", history, clock.Now())
	renderRisk(assessment)
	renderCounts(counts.snapshot())
	return nil
}

type kindCounter struct {
	mu     sync.Mutex
	counts map[notify.Kind]int
}

func newKindCounter() *kindCounter {
	return &kindCounter{counts: make(map[notify.Kind]int)}
}

func (c *kindCounter) add(n notify.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[n.Kind]++
}

func (c *kindCounter) snapshot() map[notify.Kind]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.counts)
}

func renderEvents(title string, events []model.WorldEvent, now time.Time) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetTitle(fmt.Sprintf("%s (%d)", title, len(events)))
	tw.AppendHeader(table.Row{"ID", "Type", "Severity", "Status", "Scope", "Title", "Age", "Resolution"})
	for _, ev := range events {
		age := ev.Age(now)
		if ev.EndTime != nil {
			age = ev.EndTime.Sub(ev.StartTime)
		}
		tw.AppendRow(table.Row{
			ev.ID, ev.Type, ev.Severity, ev.Status, ev.Scope.Kind, ev.Title,
			age.Truncate(time.Minute), ev.Resolution,
		})
	}
	tw.Render()
	fmt.Println()
}

func renderCounts(counts map[notify.Kind]int) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetTitle("Notifications")
	tw.AppendHeader(table.Row{"Kind", "Count"})
	for _, k := range notify.Kinds {
		tw.AppendRow(table.Row{k, counts[k]})
	}
	tw.Render()
}

// sequentialIDs numbers events so that replays with the same seed match
// exactly.
func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%06d", prefix, n)
	}
}
