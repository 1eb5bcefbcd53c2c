package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/openefficiency/aegisv11-sub000/pkg/types"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxLocationLength    = 500
	MaxContactInfoLength = 500
)

var requiredFields = map[types.ReportSource][]string{
	types.ReportSourceVoice:  {"session_id", "transcript"},
	types.ReportSourceMap:    {"category", "title", "description", "location", "coordinates"},
	types.ReportSourceManual: {"category", "title", "description"},
}

// RequiredFields returns the fields a submission from source must carry.
func RequiredFields(source types.ReportSource) []string {
	return append([]string(nil), requiredFields[source]...)
}

// ValidatedSubmission is a submission that passed every check, with the typed
// values the checks produced.
type ValidatedSubmission struct {
	Raw       *types.RawSubmission
	Source    types.ReportSource
	Category  types.Category
	Latitude  *float64
	Longitude *float64
}

// Validate checks required fields, category membership, coordinates (map
// submissions only) and field lengths, in that order. It has no side effects.
func Validate(raw *types.RawSubmission, source types.ReportSource) (*ValidatedSubmission, error) {
	fields, ok := requiredFields[source]
	if !ok {
		return nil, fmt.Errorf("unknown report source %q", source)
	}

	if raw == nil {
		return nil, types.MissingFieldsError(RequiredFields(source))
	}

	var missing []string
	for _, field := range fields {
		if !present(raw, field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, types.MissingFieldsError(missing)
	}

	out := &ValidatedSubmission{Raw: raw, Source: source}

	if c := strings.TrimSpace(raw.Category); c != "" {
		category := types.Category(strings.ToLower(c))
		if !category.Valid() {
			return nil, types.InvalidCategoryError(c)
		}
		out.Category = category
	}

	if source == types.ReportSourceMap {
		lat, lng, err := validateCoordinates(raw.Coordinates)
		if err != nil {
			return nil, err
		}
		out.Latitude, out.Longitude = &lat, &lng
	}

	limits := []struct {
		field string
		value string
		limit int
	}{
		{"title", raw.Title, MaxTitleLength},
		{"description", raw.Description, MaxDescriptionLength},
		{"location", raw.Location, MaxLocationLength},
		{"contact_info", raw.ContactInfo, MaxContactInfoLength},
	}
	for _, l := range limits {
		if utf8.RuneCountInString(l.value) > l.limit {
			return nil, types.FieldTooLongError(l.field, l.limit)
		}
	}

	return out, nil
}

func present(raw *types.RawSubmission, field string) bool {
	switch field {
	case "category":
		return Sanitize(raw.Category) != ""
	case "title":
		return Sanitize(raw.Title) != ""
	case "description":
		return Sanitize(raw.Description) != ""
	case "location":
		return Sanitize(raw.Location) != ""
	case "session_id":
		return Sanitize(raw.SessionID) != ""
	case "transcript":
		return Sanitize(raw.Transcript) != ""
	case "coordinates":
		return raw.Coordinates != nil && (raw.Coordinates.Lat != nil || raw.Coordinates.Lng != nil)
	}
	return false
}

func validateCoordinates(c *types.Coordinates) (float64, float64, error) {
	lat, ok := coordinateValue(c.Lat)
	if !ok {
		return 0, 0, types.InvalidCoordinatesError("latitude must be numeric")
	}

	lng, ok := coordinateValue(c.Lng)
	if !ok {
		return 0, 0, types.InvalidCoordinatesError("longitude must be numeric")
	}

	if lat < -90 || lat > 90 {
		return 0, 0, types.InvalidCoordinatesError(fmt.Sprintf("latitude %v is outside [-90, 90]", lat))
	}

	if lng < -180 || lng > 180 {
		return 0, 0, types.InvalidCoordinatesError(fmt.Sprintf("longitude %v is outside [-180, 180]", lng))
	}

	return lat, lng, nil
}

func coordinateValue(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}
