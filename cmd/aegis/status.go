package main

import (
	"context"
	"fmt"

	"github.com/openefficiency/aegisv11-sub000/internal/intake"
	"github.com/openefficiency/aegisv11-sub000/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var statusCommand = &cli.Command{
	Name:  "status",
	Usage: "Move a case to a new workflow status",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "case-id",
			Usage:    "ID of the case to update",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "status",
			Usage:    "open, in_progress, escalated, resolved or closed",
			Required: true,
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

		pipeline := intake.New(logger, nil, caseStore, nil)

		updated, err := pipeline.UpdateStatus(ctx, c.String("case-id"), types.CaseStatus(c.String("status")))
		if err != nil {
			return err
		}

		fmt.Printf("%s is now %s\n", updated.CaseNumber, updated.Status)
		return nil
	},
}

var casesCommand = &cli.Command{
	Name:  "cases",
	Usage: "List stored cases, newest first",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "status", Usage: "Only cases in this status"},
		&cli.StringFlag{Name: "category", Usage: "Only cases in this category"},
		&cli.StringFlag{Name: "priority", Usage: "Only cases with this priority"},
		&cli.StringFlag{Name: "source", Usage: "Only cases from VAPIReport, MapReport or ManualReport"},
		&cli.Uint64Flag{Name: "limit", Usage: "Maximum number of cases", Value: 50},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Dump full case records"},
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

		pipeline := intake.New(logger, nil, caseStore, nil)

		cases, err := pipeline.Cases(ctx, types.CaseFilter{
			Status:       types.CaseStatus(c.String("status")),
			Category:     types.Category(c.String("category")),
			Priority:     types.Priority(c.String("priority")),
			ReportSource: types.ReportSource(c.String("source")),
			Limit:        c.Uint64("limit"),
		})
		if err != nil {
			return err
		}

		for _, cs := range cases {
			if c.Bool("verbose") {
				pp.Println(cs)
				continue
			}
			fmt.Printf("%s\t%s\t%s\t%s\t%s\n", cs.CaseNumber, cs.Status, cs.Priority, cs.Category, cs.Title)
		}
		return nil
	},
}
