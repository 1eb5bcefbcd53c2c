package main

import (
	"context"
	"fmt"

	"github.com/openefficiency/aegisv11-sub000/internal/intake"
	"github.com/openefficiency/aegisv11-sub000/internal/seed"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the case store with demo cases",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Dump every seeded case",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger := newLogger(cfg)
		ctx := context.Background()

		caseStore, closeStore, err := openCaseStore(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to open case store: %w", err)
		}
		defer closeStore()

		pipeline := intake.New(logger, newNormalizer(cfg), caseStore, nil)

		logger.Info("seeding demo cases...")
		results, err := seed.SeedCases(ctx, pipeline, seed.DemoSubmissions())
		if err != nil {
			return fmt.Errorf("failed to seed cases: %w", err)
		}

		for _, res := range results {
			entry := logger.WithFields(logrus.Fields{
				"case_number":   res.Case.CaseNumber,
				"tracking_code": res.Case.TrackingCode,
				"category":      res.Case.Category,
				"priority":      res.Case.Priority,
				"persisted":     res.Persisted,
			})
			if res.PersistenceError != nil {
				entry.WithError(res.PersistenceError).Warn("seeded case not stored")
				continue
			}
			entry.Info("seeded case")

			if c.Bool("verbose") {
				pp.Println(res.Case)
			}
		}

		logger.WithField("count", len(results)).Info("cases seeded")
		return nil
	},
}
