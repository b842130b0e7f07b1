package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlexTime decodes the timestamp shapes seen from non-Go callers:
// RFC3339 (with or without fractional seconds), "YYYY-MM-DD HH:MM:SS",
// epoch seconds and epoch milliseconds. Missing or null timestamps
// decode to the zero value; callers decide the default.
type FlexTime struct {
	time.Time
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func (t *FlexTime) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		t.Time = time.Time{}
		return nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				t.Time = parsed
				return nil
			}
		}
		// Numeric epoch passed as a string.
		if epoch, err := strconv.ParseFloat(s, 64); err == nil {
			t.Time = epochToTime(epoch)
			return nil
		}
		return fmt.Errorf("unsupported timestamp format: %q", s)
	}

	epoch, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("unsupported timestamp value: %s", raw)
	}
	t.Time = epochToTime(epoch)
	return nil
}

// Values above 1e12 are taken as milliseconds; epoch seconds stay below
// that bound until the year 33658.
func epochToTime(epoch float64) time.Time {
	if epoch > 1e12 {
		return time.UnixMilli(int64(epoch)).UTC()
	}
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}
