package seed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openefficiency/aegisv11-sub000/internal/intake"
	"github.com/openefficiency/aegisv11-sub000/internal/utils"
	"github.com/openefficiency/aegisv11-sub000/pkg/types"
)

// Identity the seeder submits under. Seed pipelines are built without
// limiters, so it never shares a bucket with real callers.
const Identity = "seed"

type Submission struct {
	Source types.ReportSource
	Raw    *types.RawSubmission
}

// DemoSubmissions covers each source and category so a fresh database has
// something to triage.
func DemoSubmissions() []Submission {
	return []Submission{
		{
			Source: types.ReportSourceManual,
			Raw: &types.RawSubmission{
				Category:     "fraud",
				Title:        "Duplicate vendor invoices",
				Description:  "The same vendor has been paid twice for several invoices this quarter. Accounting approved them without review.",
				DateOccurred: "2026-09-30",
			},
		},
		{
			Source: types.ReportSourceManual,
			Raw: &types.RawSubmission{
				Category:    "discrimination",
				Title:       "Promotion passed over",
				Description: "Candidates of one ethnicity are repeatedly passed over for promotion despite stronger reviews.",
				Location:    "Head office, 4th floor",
				Anonymous:   utils.BoolPtr(false),
				ContactInfo: "reporter@example.com",
			},
		},
		{
			Source: types.ReportSourceMap,
			Raw: &types.RawSubmission{
				Category:    "safety",
				Title:       "Blocked fire exit",
				Description: "The fire exit behind loading bay 3 has been blocked with pallets for two weeks.",
				Location:    "Warehouse B, loading bay 3",
				Coordinates: &types.Coordinates{Lat: 40.7128, Lng: -74.006},
			},
		},
		{
			Source: types.ReportSourceMap,
			Raw: &types.RawSubmission{
				Category:    "corruption",
				Title:       "Permit office kickbacks",
				Description: "Contractors are expected to pay cash under the table to get inspections scheduled.",
				Location:    "City permit office",
				Coordinates: &types.Coordinates{Lat: 51.5072, Lng: -0.1276},
			},
		},
		{
			Source: types.ReportSourceVoice,
			Raw: &types.RawSubmission{
				SessionID:  "seed-call-0001",
				Transcript: "Hi. My shift lead keeps making threatening comments and it is getting worse every week. I am scared to go to work.",
				CallData:   json.RawMessage(`{"id":"seed-call-0001","status":"ended"}`),
			},
		},
		{
			Source: types.ReportSourceVoice,
			Raw: &types.RawSubmission{
				SessionID:  "seed-call-0002",
				Transcript: "Um, so this is about a minor thing. A supervisor shouted at a trainee once.",
				Summary:    "Caller reports verbal abuse of a trainee by a supervisor.",
			},
		},
	}
}

// SeedCases submits every demo submission through pipeline. It stops at the
// first submission that is refused; cases that could not be stored are
// returned with their persistence error.
func SeedCases(ctx context.Context, pipeline *intake.Pipeline, submissions []Submission) ([]*intake.Result, error) {
	results := make([]*intake.Result, 0, len(submissions))
	for i, sub := range submissions {
		res, err := pipeline.Submit(ctx, Identity, sub.Raw, sub.Source)
		if err != nil {
			return results, fmt.Errorf("seed submission %d (%s): %w", i, sub.Source, err)
		}
		results = append(results, res)
	}
	return results, nil
}
