package pipeline

import (
	"sort"

	"bikedash.nycbikeshare.org/internal/bikeshare"
)

// StationBalance is one station's departure/arrival tally. Net is
// Starts - Ends: negative for stations losing bikes, positive for ones
// accumulating them.
type StationBalance struct {
	Station string
	Starts  int
	Ends    int
	Net     int
}

// ComputeStationBalance tallies departures and arrivals per station over the
// union of all station names seen on either side. A station appearing only as
// a start (or only as an end) gets zero for the missing side. Rows lacking
// either station name are excluded from both tallies. The result is ordered
// by Net ascending, first-seen ties preserved, so the head of the slice is
// the stations losing the most bikes.
func ComputeStationBalance(rows Rows) ([]StationBalance, error) {
	if err := rows.requireColumns(bikeshare.ColStartStationName, bikeshare.ColEndStationName); err != nil {
		return nil, err
	}

	starts := make(map[string]int)
	ends := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0
	note := func(station string) {
		if _, seen := firstSeen[station]; !seen {
			firstSeen[station] = order
			order++
		}
	}

	for _, rec := range rows.Records {
		if rec.StartStationName == "" || rec.EndStationName == "" {
			continue
		}
		note(rec.StartStationName)
		starts[rec.StartStationName]++
		note(rec.EndStationName)
		ends[rec.EndStationName]++
	}

	balances := make([]StationBalance, 0, len(firstSeen))
	for station := range firstSeen {
		s := starts[station]
		e := ends[station]
		balances = append(balances, StationBalance{
			Station: station,
			Starts:  s,
			Ends:    e,
			Net:     s - e,
		})
	}
	sort.Slice(balances, func(i, j int) bool {
		if balances[i].Net != balances[j].Net {
			return balances[i].Net < balances[j].Net
		}
		return firstSeen[balances[i].Station] < firstSeen[balances[j].Station]
	})
	return balances, nil
}
