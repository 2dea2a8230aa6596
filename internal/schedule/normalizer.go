package schedule

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"
)

// ErrUnparsableOutput reports model output that is not valid JSON. The
// pipeline absorbs it and degrades to "no classes found" rather than
// failing the request.
var ErrUnparsableOutput = errors.New("model output is not valid JSON")

const mapSearchBaseURL = "https://www.google.com/maps/search/"

const defaultClassName = "Class"

// Normalize parses raw model output and maps it into canonical class
// entries. The output is treated as an untyped tree first and validated
// field by field; the model is never assumed to have honored the requested
// schema. A top-level value that is not an array yields zero entries.
// Partial entries are kept, with explicit defaults for missing fields.
func Normalize(raw string) ([]ClassEntry, error) {
	var tree any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &tree); err != nil {
		return nil, ErrUnparsableOutput
	}

	items, ok := tree.([]any)
	if !ok {
		return []ClassEntry{}, nil
	}

	entries := make([]ClassEntry, 0, len(items))
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}

		name := stringField(fields, "class_name")
		if name == "" {
			name = defaultClassName
		}
		location := stringField(fields, "location")
		start := stringField(fields, "start_time")
		end := stringField(fields, "end_time")

		// Older prompt revisions asked for a single 'time' field shaped
		// "9:00-9:50"; honor it when the split fields are absent.
		if start == "" && end == "" {
			if combined := stringField(fields, "time"); combined != "" {
				start, end = splitTimeRange(combined)
			}
		}

		entries = append(entries, ClassEntry{
			ClassName:   name,
			StartTime:   start,
			EndTime:     end,
			FullAddress: location,
			MapLink:     MapLink(location),
		})
	}
	return entries, nil
}

// MapLink derives a Google Maps search URL from a location. The transform
// is pure and deterministic; an empty location yields a search URL with an
// empty query rather than no link at all.
func MapLink(location string) string {
	return mapSearchBaseURL + url.QueryEscape(location)
}

func stringField(fields map[string]any, key string) string {
	value, ok := fields[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func splitTimeRange(combined string) (start, end string) {
	if before, after, found := strings.Cut(combined, "-"); found {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return combined, ""
}
