package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// dateLayouts are the transaction date formats accepted on input. The till's
// browser build wrote dates like "19 Oct 2026".
var dateLayouts = []string{
	time.RFC3339Nano,
	"2 Jan 2006",
	"2006-01-02",
	"02/01/2006",
}

// UnmarshalJSON accepts RFC 3339 dates and the till's day-month-year form.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type plain Transaction
	aux := struct {
		*plain
		Date json.RawMessage `json:"date"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	date, err := parseDate(aux.Date)
	if err != nil {
		return err
	}
	t.Date = date
	return nil
}

func parseDate(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, fmt.Errorf("models: date must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	// en-GB short months spell September "Sept"
	s = strings.Replace(s, "Sept ", "Sep ", 1)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("models: unrecognised date %q", s)
}
