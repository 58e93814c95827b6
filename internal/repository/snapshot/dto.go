package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/elodash/internal/domain/record"
)

// rawRecord is one payload element with its fields left undecoded, so that a
// malformed optional field only drops that field.
type rawRecord map[string]json.RawMessage

// Decode parses a board payload into records of the given kind.
// The payload must be a JSON array. Elements that are not objects or that
// lack a required field are skipped and counted in dropped.
func Decode(kind record.Kind, payload []byte) (records []record.Record, dropped int, err error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || payload[0] != '[' {
		return nil, 0, fmt.Errorf("decode %s payload: not a JSON array", kind)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(payload, &elems); err != nil {
		return nil, 0, fmt.Errorf("decode %s payload: %w", kind, err)
	}

	records = make([]record.Record, 0, len(elems))
	for _, e := range elems {
		var raw rawRecord
		if err := json.Unmarshal(e, &raw); err != nil || raw == nil {
			dropped++
			continue
		}
		r, err := toRecord(kind, raw)
		if err != nil {
			dropped++
			continue
		}
		records = append(records, r)
	}
	return records, dropped, nil
}

func toRecord(kind record.Kind, raw rawRecord) (record.Record, error) {
	switch kind {
	case record.KindLeetCode:
		return record.NewLeetCode(
			raw.str("name"),
			raw.num("elo"),
			raw.num("prev_elo"),
			raw.num("current_problem_delta"),
			raw.points("problems_each_week"),
		)
	case record.KindGitHub:
		return record.NewGitHub(record.GitHubParams{
			Username:          raw.str("github_username"),
			DisplayName:       raw.str("display_name"),
			Contributions:     raw.num("current_contributions"),
			PrevContributions: raw.num("prev_contributions"),
			Delta:             raw.num("contribution_delta"),
			LastUpdated:       raw.str("last_updated"),
			Weekly:            raw.points("contributions_each_week"),
			Calendar:          raw.calendar("calendar_data"),
		})
	case record.KindProblem:
		return record.NewProblem(record.ProblemParams{
			ID:          raw.str("ID"),
			Title:       raw.str("Title"),
			TitleSlug:   raw.str("TitleSlug", "Title Slug"),
			ContestSlug: raw.str("ContestSlug", "Contest Slug"),
			ContestID:   raw.str("ContestID_en"),
			Rating:      raw.num("Rating"),
			Topics:      raw.strs("Topics"),
		})
	}
	return nil, fmt.Errorf("unknown record kind %q", kind)
}

// str returns the first present key as a string. Numbers are formatted, so an
// integer ID decodes as "42".
func (r rawRecord) str(keys ...string) string {
	for _, k := range keys {
		v, ok := r[k]
		if !ok {
			continue
		}
		if isNull(v) {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
			continue
		}
		var n json.Number
		if err := json.Unmarshal(v, &n); err == nil {
			return n.String()
		}
	}
	return ""
}

func isNull(v json.RawMessage) bool {
	return len(v) == 0 || string(bytes.TrimSpace(v)) == "null"
}

// num returns a finite number from a JSON number or a numeric string.
// Anything else is reported as missing.
func (r rawRecord) num(key string) *float64 {
	v, ok := r[key]
	if !ok || isNull(v) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func (r rawRecord) strs(key string) []string {
	v, ok := r[key]
	if !ok {
		return nil
	}
	var out []string
	if err := json.Unmarshal(v, &out); err != nil {
		return nil
	}
	return out
}

type pointDTO struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// points decodes a weekly series. The legacy plain-integer form carries no
// dates and is treated as no history.
func (r rawRecord) points(key string) []record.Point {
	v, ok := r[key]
	if !ok {
		return nil
	}
	var dtos []pointDTO
	if err := json.Unmarshal(v, &dtos); err != nil {
		return nil
	}
	out := make([]record.Point, 0, len(dtos))
	for _, p := range dtos {
		if p.Date == "" {
			continue
		}
		out = append(out, record.Point{Date: p.Date, Count: p.Count})
	}
	return out
}

type calendarWeekDTO struct {
	ContributionDays []struct {
		Date              string `json:"date"`
		ContributionCount int    `json:"contributionCount"`
	} `json:"contributionDays"`
}

func (r rawRecord) calendar(key string) []record.CalendarWeek {
	v, ok := r[key]
	if !ok {
		return nil
	}
	var weeks []calendarWeekDTO
	if err := json.Unmarshal(v, &weeks); err != nil {
		return nil
	}
	out := make([]record.CalendarWeek, len(weeks))
	for i, w := range weeks {
		days := make([]record.Point, len(w.ContributionDays))
		for j, d := range w.ContributionDays {
			days[j] = record.Point{Date: d.Date, Count: d.ContributionCount}
		}
		out[i] = record.CalendarWeek{Days: days}
	}
	return out
}
