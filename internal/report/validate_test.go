package report

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/openefficiency/aegisv11-sub000/pkg/types"
)

func validationCode(t *testing.T, err error) *types.ValidationError {
	t.Helper()

	var verr *types.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *types.ValidationError, got %T (%v)", err, err)
	}
	return verr
}

func mapSubmission(lat, lng any) *types.RawSubmission {
	return &types.RawSubmission{
		Category:    "safety",
		Title:       "Blocked fire exit",
		Description: "The east exit has been chained shut for a week.",
		Location:    "Warehouse 4",
		Coordinates: &types.Coordinates{Lat: lat, Lng: lng},
	}
}

func TestValidateMissingFieldsListsEveryField(t *testing.T) {
	tests := []struct {
		name   string
		raw    *types.RawSubmission
		source types.ReportSource
		want   []string
	}{
		{"manual empty", &types.RawSubmission{}, types.ReportSourceManual, []string{"category", "title", "description"}},
		{"manual whitespace title", &types.RawSubmission{Category: "fraud", Title: "  ", Description: "x"}, types.ReportSourceManual, []string{"title"}},
		{"map no coordinates", &types.RawSubmission{Category: "fraud", Title: "t", Description: "d"}, types.ReportSourceMap, []string{"location", "coordinates"}},
		{"voice empty", &types.RawSubmission{Summary: "only a summary"}, types.ReportSourceVoice, []string{"session_id", "transcript"}},
		{"nil submission", nil, types.ReportSourceManual, []string{"category", "title", "description"}},
		{"brackets only", &types.RawSubmission{Category: "fraud", Title: "<>", Description: "d"}, types.ReportSourceManual, []string{"title"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.raw, tt.source)
			verr := validationCode(t, err)
			if verr.Code != types.ValidationMissingFields {
				t.Fatalf("code = %s, want %s", verr.Code, types.ValidationMissingFields)
			}
			if !reflect.DeepEqual(verr.Fields, tt.want) {
				t.Fatalf("fields = %v, want %v", verr.Fields, tt.want)
			}
		})
	}
}

func TestValidateCategory(t *testing.T) {
	raw := &types.RawSubmission{Category: "espionage", Title: "t", Description: "d"}
	_, err := Validate(raw, types.ReportSourceManual)
	if verr := validationCode(t, err); verr.Code != types.ValidationInvalidCategory {
		t.Fatalf("code = %s, want %s", verr.Code, types.ValidationInvalidCategory)
	}

	for _, c := range []string{"retaliation", "other", "FRAUDS"} {
		raw.Category = c
		if _, err := Validate(raw, types.ReportSourceManual); err == nil {
			t.Fatalf("category %q accepted", c)
		}
	}

	raw.Category = " Harassment "
	valid, err := Validate(raw, types.ReportSourceManual)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if valid.Category != types.CategoryHarassment {
		t.Fatalf("category = %q, want harassment", valid.Category)
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name string
		lat  any
		lng  any
		ok   bool
	}{
		{"valid", 51.5, -0.12, true},
		{"bounds inclusive", 90.0, -180.0, true},
		{"numeric strings", "12.5", " 44 ", true},
		{"lat too high", 95.0, 10.0, false},
		{"lat too low", -90.01, 10.0, false},
		{"lng too high", 10.0, 180.5, false},
		{"lng too low", 10.0, -200.0, false},
		{"non numeric", "north", 10.0, false},
		{"missing lng", 10.0, nil, false},
		{"bool", true, 10.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, err := Validate(mapSubmission(tt.lat, tt.lng), types.ReportSourceMap)
			if tt.ok {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				if valid.Latitude == nil || valid.Longitude == nil {
					t.Fatal("expected parsed coordinates")
				}
				return
			}
			if verr := validationCode(t, err); verr.Code != types.ValidationInvalidCoordinates {
				t.Fatalf("code = %s, want %s", verr.Code, types.ValidationInvalidCoordinates)
			}
		})
	}
}

func TestValidateCoordinatesIgnoredOutsideMap(t *testing.T) {
	raw := &types.RawSubmission{
		Category:    "fraud",
		Title:       "t",
		Description: "d",
		Coordinates: &types.Coordinates{Lat: 500.0, Lng: 500.0},
	}
	valid, err := Validate(raw, types.ReportSourceManual)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if valid.Latitude != nil {
		t.Fatal("manual submissions should not carry coordinates")
	}
}

func TestValidateFieldLengths(t *testing.T) {
	tests := []struct {
		field string
		limit int
		set   func(r *types.RawSubmission, v string)
	}{
		{"title", MaxTitleLength, func(r *types.RawSubmission, v string) { r.Title = v }},
		{"description", MaxDescriptionLength, func(r *types.RawSubmission, v string) { r.Description = v }},
		{"location", MaxLocationLength, func(r *types.RawSubmission, v string) { r.Location = v }},
		{"contact_info", MaxContactInfoLength, func(r *types.RawSubmission, v string) { r.ContactInfo = v }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			raw := &types.RawSubmission{Category: "fraud", Title: "t", Description: "d"}

			tt.set(raw, strings.Repeat("é", tt.limit))
			if _, err := Validate(raw, types.ReportSourceManual); err != nil {
				t.Fatalf("value at the limit rejected: %v", err)
			}

			tt.set(raw, strings.Repeat("x", tt.limit+1))
			_, err := Validate(raw, types.ReportSourceManual)
			verr := validationCode(t, err)
			if verr.Code != types.ValidationFieldTooLong || verr.Field != tt.field || verr.Limit != tt.limit {
				t.Fatalf("got %+v, want FIELD_TOO_LONG for %s/%d", verr, tt.field, tt.limit)
			}
		})
	}
}

func TestValidateUnknownSource(t *testing.T) {
	if _, err := Validate(&types.RawSubmission{}, types.ReportSource("FaxReport")); err == nil {
		t.Fatal("expected error for unknown source")
	}
}
