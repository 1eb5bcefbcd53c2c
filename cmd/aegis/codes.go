package main

import (
	"fmt"

	"github.com/openefficiency/aegisv11-sub000/internal/report"

	"github.com/urfave/cli/v2"
)

var codesCommand = &cli.Command{
	Name:  "codes",
	Usage: "Generate case identifiers",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of identifiers to generate",
			Value:   1,
		},
		&cli.StringFlag{
			Name:    "kind",
			Aliases: []string{"k"},
			Usage:   "case_id, report_id, tracking_code, secret_code or case_number; empty prints a full set",
		},
	},
	Action: func(c *cli.Context) error {
		gen := report.NewGenerator()
		count := c.Int("count")

		if kind := c.String("kind"); kind != "" {
			k, err := report.ParseIdentifierKind(kind)
			if err != nil {
				return err
			}
			for range count {
				code, err := gen.Generate(k)
				if err != nil {
					return err
				}
				fmt.Println(code)
			}
			return nil
		}

		for range count {
			ids, err := gen.Identifiers()
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\t%s\t%s\t%s\n", ids.CaseNumber, ids.CaseID, ids.ReportID, ids.TrackingCode, ids.SecretCode)
		}
		return nil
	},
}
