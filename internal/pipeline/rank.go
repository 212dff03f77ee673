package pipeline

import (
	"sort"

	"bikedash.nycbikeshare.org/internal/bikeshare"
)

// RouteColumn is the virtual column a route ranking counts over. It is
// derived from the start and end station names, so both must be present.
const RouteColumn = "route"

// BuildRoute renders a trip's route label. The empty string means the row
// lacks one of the two station names and carries no route.
func BuildRoute(rec bikeshare.TripRecord) string {
	if rec.StartStationName == "" || rec.EndStationName == "" {
		return ""
	}
	return rec.StartStationName + " → " + rec.EndStationName
}

// RankedCount is one label of a ranking with its occurrence count.
type RankedCount struct {
	Label string
	Count int
}

// TopN counts occurrences of non-empty values in the named column and returns
// up to n labels ordered by count, descending by default or ascending when
// ascending is set. Ties keep first-seen row order, so repeated calls over the
// same rows always rank identically. The column (or, for RouteColumn, both
// station name columns) must exist in the source.
func TopN(rows Rows, column string, n int, ascending bool) ([]RankedCount, error) {
	if n < 1 {
		return nil, ErrInvalidN
	}

	extract, required, ok := columnExtractor(column)
	if !ok {
		return nil, &MissingColumnError{Columns: []string{column}}
	}
	if err := rows.requireColumns(required...); err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, rec := range rows.Records {
		label := extract(rec)
		if label == "" {
			continue
		}
		if _, seen := counts[label]; !seen {
			firstSeen[label] = i
		}
		counts[label]++
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		ci, cj := counts[labels[i]], counts[labels[j]]
		if ci != cj {
			if ascending {
				return ci < cj
			}
			return ci > cj
		}
		return firstSeen[labels[i]] < firstSeen[labels[j]]
	})

	if len(labels) > n {
		labels = labels[:n]
	}
	ranked := make([]RankedCount, 0, len(labels))
	for _, label := range labels {
		ranked = append(ranked, RankedCount{Label: label, Count: counts[label]})
	}
	return ranked, nil
}

// RouteCounts ranks the n most frequent routes.
func RouteCounts(rows Rows, n int) ([]RankedCount, error) {
	return TopN(rows, RouteColumn, n, false)
}

func columnExtractor(column string) (func(bikeshare.TripRecord) string, []string, bool) {
	switch column {
	case bikeshare.ColStartStationName:
		return func(r bikeshare.TripRecord) string { return r.StartStationName }, []string{column}, true
	case bikeshare.ColEndStationName:
		return func(r bikeshare.TripRecord) string { return r.EndStationName }, []string{column}, true
	case bikeshare.ColStartStationID:
		return func(r bikeshare.TripRecord) string { return r.StartStationID }, []string{column}, true
	case bikeshare.ColEndStationID:
		return func(r bikeshare.TripRecord) string { return r.EndStationID }, []string{column}, true
	case bikeshare.ColMemberCasual:
		return func(r bikeshare.TripRecord) string { return r.RiderType }, []string{column}, true
	case RouteColumn:
		return BuildRoute, []string{bikeshare.ColStartStationName, bikeshare.ColEndStationName}, true
	default:
		return nil, nil, false
	}
}
