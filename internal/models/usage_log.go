package models

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scentdesk/usage-backend/internal/apperrors"
)

// Gender is the customer's perceived gender category
type Gender string

const (
	GenderMale        Gender = "Male"
	GenderFemale      Gender = "Female"
	GenderUnspecified Gender = "Unspecified"
)

// FilterAll is the query value meaning "no filter"
const FilterAll = "all"

// AllGenders lists the closed enumeration in display order
func AllGenders() []Gender {
	return []Gender{GenderMale, GenderFemale, GenderUnspecified}
}

// Valid reports whether g is one of the canonical values
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderUnspecified:
		return true
	}
	return false
}

// ParseGender maps form input to the canonical enumeration. The legacy short
// codes M, F and U are accepted; anything else is a ValidationError.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return GenderMale, nil
	case "female", "f":
		return GenderFemale, nil
	case "unspecified", "u":
		return GenderUnspecified, nil
	}
	return "", apperrors.Validation("gender", "Please select a valid gender.")
}

// UsageLog is one immutable perfume-sampling event. Perfume and staff fields
// are denormalised by the listing queries.
type UsageLog struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Gender       Gender    `json:"gender" db:"gender"`
	StaffID      uuid.UUID `json:"staff_id" db:"staff_id"`
	PerfumeID    uuid.UUID `json:"perfume_id" db:"perfume_id"`
	UsedAt       time.Time `json:"used_at" db:"used_at"`
	PerfumeBrand string    `json:"perfume_brand,omitempty" db:"perfume_brand"`
	PerfumeName  string    `json:"perfume_name,omitempty" db:"perfume_name"`
	StaffName    string    `json:"staff_name,omitempty" db:"staff_name"`
}

// UsageLogFilter narrows a log listing; nil fields do not filter. Date is the
// start of a local calendar day.
type UsageLogFilter struct {
	Date      *time.Time
	PerfumeID *uuid.UUID
	Gender    *Gender
}

// DayRange returns the half-open [start, end) interval covering the filter day
func (f UsageLogFilter) DayRange() (time.Time, time.Time) {
	start := *f.Date
	return start, start.AddDate(0, 0, 1)
}

// StartOfDay truncates t to local midnight in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ParseUsageLogFilter builds a filter from raw query values. Blank, "all" and
// unparsable values are ignored rather than rejected.
func ParseUsageLogFilter(date, perfumeID, gender string, loc *time.Location) UsageLogFilter {
	var filter UsageLogFilter

	if date = strings.TrimSpace(date); date != "" {
		if day, err := time.ParseInLocation("2006-01-02", date, loc); err == nil {
			filter.Date = &day
		}
	}

	if perfumeID = strings.TrimSpace(perfumeID); perfumeID != "" && perfumeID != FilterAll {
		if id, err := uuid.Parse(perfumeID); err == nil {
			filter.PerfumeID = &id
		}
	}

	if gender = strings.TrimSpace(gender); gender != "" && gender != FilterAll {
		if g, err := ParseGender(gender); err == nil {
			filter.Gender = &g
		}
	}

	return filter
}

// RecordUsageForm is the /record/ form payload
type RecordUsageForm struct {
	Gender  string `form:"gender" validate:"required,gender"`
	Perfume string `form:"perfume"`
}

// GenderCount is one row of the gender breakdown
type GenderCount struct {
	Gender Gender `json:"gender"`
	Count  int    `json:"count"`
}

// PerfumeCount is one row of the perfume ranking
type PerfumeCount struct {
	Brand string `json:"brand"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// AggregateByGender counts logs per gender
func AggregateByGender(logs []UsageLog) map[Gender]int {
	counts := make(map[Gender]int)
	for _, l := range logs {
		counts[l.Gender]++
	}
	return counts
}

// GenderBreakdown orders the non-zero gender counts for display
func GenderBreakdown(counts map[Gender]int) []GenderCount {
	rows := make([]GenderCount, 0, len(counts))
	for _, g := range AllGenders() {
		if n := counts[g]; n > 0 {
			rows = append(rows, GenderCount{Gender: g, Count: n})
		}
	}
	return rows
}

// AggregateByPerfume counts logs per (brand, name), highest count first.
// Ties are ordered by brand then name.
func AggregateByPerfume(logs []UsageLog) []PerfumeCount {
	type key struct{ brand, name string }
	index := make(map[key]int)
	rows := make([]PerfumeCount, 0)

	for _, l := range logs {
		k := key{l.PerfumeBrand, l.PerfumeName}
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, PerfumeCount{Brand: l.PerfumeBrand, Name: l.PerfumeName})
		}
		rows[i].Count++
	}

	sort.SliceStable(rows, func(a, b int) bool {
		if rows[a].Count != rows[b].Count {
			return rows[a].Count > rows[b].Count
		}
		if rows[a].Brand != rows[b].Brand {
			return rows[a].Brand < rows[b].Brand
		}
		return rows[a].Name < rows[b].Name
	})
	return rows
}
