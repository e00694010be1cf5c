package cli

import (
	"context"
	"errors"
	"fmt"

	"jobmatch/internal/app"
	"jobmatch/internal/database/seeder"
	"jobmatch/internal/domain/match"
	"jobmatch/internal/usecase"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const claimantPage = 100

func newMigrateCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withContainer(cmd.Context(), func(_ context.Context, c *app.Container) error {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", c.DB.Driver())
				return err
			})
		},
	}
}

func newSeedCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo job postings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				r := seeder.Runner{Seeders: seeder.Defaults(), Logger: c.Logger}
				if err := r.Run(ctx, c.Jobs); err != nil {
					return err
				}
				n, err := c.Jobs.Count(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "job postings in store: %d\n", n)
				return err
			})
		},
	}
}

func newScrapeCommand(o *options) *cobra.Command {
	var query, location string

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one ingestion and print the summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				sum, err := c.ScraperUC.Trigger(ctx, query, location)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), sum)
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", usecase.DefaultScrapeQuery, "job search query")
	cmd.Flags().StringVarP(&location, "location", "l", usecase.DefaultScrapeLocation, "job location")
	return cmd
}

type matchReport struct {
	ClaimantID uuid.UUID `json:"claimant_id"`
	Count      int       `json:"count"`
	Error      string    `json:"error,omitempty"`
}

func newMatchCommand(o *options) *cobra.Command {
	var claimantID string
	var all bool

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Run the matching engine for one claimant or for all of them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (claimantID == "") == !all {
				return errors.New("exactly one of --claimant or --all is required")
			}

			var id uuid.UUID
			if !all {
				var err error
				if id, err = uuid.Parse(claimantID); err != nil {
					return fmt.Errorf("invalid --claimant: %w", err)
				}
			}

			return o.withContainer(cmd.Context(), func(ctx context.Context, c *app.Container) error {
				if !all {
					out, err := c.MatchUC.Run(ctx, id)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), matchReport{ClaimantID: id, Count: len(out)})
				}

				reports := make([]matchReport, 0)
				for offset := 0; ; offset += claimantPage {
					page, err := c.Claimants.List(ctx, offset, claimantPage)
					if err != nil {
						return err
					}
					for _, cl := range page {
						var out []match.MatchedJob
						out, err = c.MatchUC.Run(ctx, cl.ID)
						rep := matchReport{ClaimantID: cl.ID, Count: len(out)}
						if err != nil {
							rep.Error = err.Error()
						}
						reports = append(reports, rep)
					}
					if len(page) < claimantPage {
						break
					}
				}
				return printJSON(cmd.OutOrStdout(), reports)
			})
		},
	}
	cmd.Flags().StringVar(&claimantID, "claimant", "", "claimant id")
	cmd.Flags().BoolVar(&all, "all", false, "match every claimant")
	return cmd
}
