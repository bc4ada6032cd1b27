// Package tracking contains the display aggregation for tracking
// links: grouping by generation year/month, ordering, and hit counts.
// Everything here is a pure function of its inputs so it can be tested
// without a storage backend.
package tracking

import (
	"MailTrack-Backend/internal/domain"
	"fmt"
	"sort"
	"time"
)

// LinkSummary is one tracking link annotated with its hit count,
// ready for rendering.
type LinkSummary struct {
	UTMID       string
	MailTitle   string
	MailAddress string
	GeneratedAt time.Time
	HitCount    int64
}

// MonthGroup holds the links generated in one calendar month, most
// recent first.
type MonthGroup struct {
	Month     time.Month
	MonthName string
	Links     []LinkSummary
}

// YearGroup holds the month groups of one calendar year, December
// before January.
type YearGroup struct {
	Year   int
	Months []MonthGroup
}

var monthNames = [...]string{
	"", // month 0 is invalid input
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName maps a numeric month to its full calendar name.
func MonthName(month time.Month) (string, error) {
	if month < time.January || month > time.December {
		return "", fmt.Errorf("invalid month %d", month)
	}
	return monthNames[month], nil
}

// BuildTrackingOverview reshapes a flat utm_id -> link mapping plus a
// flat utm_id -> hits mapping into the ordered year/month structure
// that drives page rendering.
//
// A utm_id missing from hitsByLink is not an error: the link is kept
// with a hit count of zero. A link whose GeneratedOn does not parse
// with the fixed record layout fails the whole call; timestamps are
// never coerced. Ordering: years descending, months descending within
// a year, links by GeneratedAt descending within a month. The output
// containers are ordered slices because the order is what the page
// renders.
func BuildTrackingOverview(links map[string]*domain.TrackingLink, hitsByLink map[string][]*domain.HitEvent) ([]YearGroup, error) {
	if len(links) == 0 {
		return nil, nil
	}

	// Deterministic walk over the input map so equal inputs always
	// produce identical output, ties included.
	utmIDs := make([]string, 0, len(links))
	for utmID := range links {
		utmIDs = append(utmIDs, utmID)
	}
	sort.Strings(utmIDs)

	type yearMonth struct {
		year  int
		month time.Month
	}
	grouped := make(map[yearMonth][]LinkSummary)

	for _, utmID := range utmIDs {
		link := links[utmID]

		generatedAt, err := link.GeneratedAt()
		if err != nil {
			return nil, fmt.Errorf("link %s: %w", utmID, err)
		}

		summary := LinkSummary{
			UTMID:       utmID,
			MailTitle:   link.MailTitle,
			MailAddress: link.MailAddress,
			GeneratedAt: generatedAt,
			HitCount:    int64(len(hitsByLink[utmID])),
		}

		key := yearMonth{year: generatedAt.Year(), month: generatedAt.Month()}
		grouped[key] = append(grouped[key], summary)
	}

	byYear := make(map[int]map[time.Month][]LinkSummary)
	for key, summaries := range grouped {
		// Most recent first inside the month; SliceStable keeps the
		// lexicographic utm_id order for equal timestamps.
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].GeneratedAt.After(summaries[j].GeneratedAt)
		})
		if byYear[key.year] == nil {
			byYear[key.year] = make(map[time.Month][]LinkSummary)
		}
		byYear[key.year][key.month] = summaries
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	overview := make([]YearGroup, 0, len(years))
	for _, year := range years {
		monthsOfYear := byYear[year]

		months := make([]time.Month, 0, len(monthsOfYear))
		for month := range monthsOfYear {
			months = append(months, month)
		}
		sort.Slice(months, func(i, j int) bool { return months[i] > months[j] })

		monthGroups := make([]MonthGroup, 0, len(months))
		for _, month := range months {
			name, err := MonthName(month)
			if err != nil {
				return nil, err
			}
			monthGroups = append(monthGroups, MonthGroup{
				Month:     month,
				MonthName: name,
				Links:     monthsOfYear[month],
			})
		}

		overview = append(overview, YearGroup{Year: year, Months: monthGroups})
	}

	return overview, nil
}
