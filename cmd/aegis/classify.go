package main

import (
	"fmt"
	"strings"

	"github.com/openefficiency/aegisv11-sub000/internal/report"
	"github.com/openefficiency/aegisv11-sub000/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

type classification struct {
	Category types.Category
	Priority types.Priority
	Title    string
	Summary  string
}

var classifyCommand = &cli.Command{
	Name:      "classify",
	Usage:     "Show how the classifier reads a piece of text",
	ArgsUsage: "<text>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "whole-words",
			Usage: "Only match keywords at the start of a word",
		},
		&cli.StringFlag{
			Name:  "category",
			Usage: "Category the submitter chose, used for the priority fallback",
		},
	},
	Action: func(c *cli.Context) error {
		text := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
		if text == "" {
			return fmt.Errorf("text to classify is required")
		}

		classifier := report.NewClassifier(report.WithWordBoundaries(c.Bool("whole-words")))

		category := types.Category(strings.ToLower(c.String("category")))
		if category == "" {
			category = classifier.Categorize(text)
		} else if !category.Valid() {
			return fmt.Errorf("invalid category %q", category)
		}

		pp.Println(classification{
			Category: category,
			Priority: classifier.PriorityFor(category, text),
			Title:    report.ExtractTitle(text, report.DefaultTitleLength, report.TitleFallback),
			Summary:  report.ExtractSummary(text, report.DefaultSummaryLength),
		})
		return nil
	},
}
