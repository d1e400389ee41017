package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"NewsPulse/internal/app"
	"NewsPulse/internal/config"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "newspulse",
		Short:         "Ingest tech news, classify it, and synthesize daily digests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		newRunCommand(),
		newIngestCommand(),
		newDigestCommand(),
		newSeedCommand(),
	)
	return cmd
}

// withApp assembles the application for one command invocation and tears it
// down afterwards.
func withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	a, err := app.New(ctx, config.Load())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduled ingest and digest loops until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				return a.RunScheduled(ctx)
			})
		},
	}
}

func newIngestCommand() *cobra.Command {
	var max int
	var noAI bool
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch, classify, and store one batch of articles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				stats := a.Ingest(ctx, max, !noAI)
				fmt.Printf("fetched %d, inserted %d, duplicates %d, rule %d, ai %d, untagged %d\n",
					stats.Fetched, stats.Inserted, stats.Duplicates,
					stats.TaggedByRule, stats.TaggedByAI, stats.Untagged)
				for _, msg := range stats.Errors {
					fmt.Printf("error: %s\n", msg)
				}
				if len(stats.Errors) > 0 {
					return fmt.Errorf("%d item(s) failed", len(stats.Errors))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&max, "max", 0, "Maximum articles to fetch (0 uses the configured batch size)")
	cmd.Flags().BoolVar(&noAI, "no-ai", false, "Skip the AI classification stage")
	return cmd
}

func newDigestCommand() *cobra.Command {
	var date string
	var force bool
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Synthesize the global and per-topic digests for a date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			asOf := time.Now().UTC()
			if date != "" {
				parsed, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid --date %q, want YYYY-MM-DD: %w", date, err)
				}
				asOf = parsed
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				batch := a.Digest(ctx, asOf, force)
				if batch.Global != nil {
					fmt.Printf("global: %q (%d items)\n", batch.Global.Title, batch.Global.ItemCount)
				}
				for _, ts := range batch.Topics {
					if ts.Result == nil {
						continue
					}
					fmt.Printf("%s: %q (%d items)\n", ts.Topic.Name, ts.Result.Title, ts.Result.ItemCount)
				}
				for _, msg := range batch.Errors {
					fmt.Printf("error: %s\n", msg)
				}
				if len(batch.Errors) > 0 {
					return fmt.Errorf("%d target(s) failed", len(batch.Errors))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Digest date as YYYY-MM-DD (defaults to today, UTC)")
	cmd.Flags().BoolVar(&force, "force", false, "Regenerate digests that already exist for the date")
	return cmd
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create or refresh the topic taxonomy without ingesting",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Seed(ctx); err != nil {
					return err
				}
				fmt.Println("taxonomy seeded")
				return nil
			})
		},
	}
}
