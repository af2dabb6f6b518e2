package validators

import (
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/scanpos/scanpos-backend/pkg/errors"
)

const dateLayout = "2006-01-02"

// ParseTimeRange reads the optional from/to query parameters as RFC3339
// timestamps or plain dates. A plain "to" date covers that whole day.
func ParseTimeRange(r *http.Request) (*time.Time, *time.Time, error) {
	from, err := parseBound(r, "from", false)
	if err != nil {
		return nil, nil, err
	}
	to, err := parseBound(r, "to", true)
	if err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to").
			WithDetails(map[string]any{"field": "from"})
	}
	return from, to, nil
}

func parseBound(r *http.Request, key string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		ts = ts.UTC()
		return &ts, nil
	}
	day, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be RFC3339 or YYYY-MM-DD").
			WithDetails(map[string]any{"field": key})
	}
	if endOfDay {
		day = day.AddDate(0, 0, 1)
	}
	return &day, nil
}
