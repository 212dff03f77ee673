package bikeshare

import (
	"sort"

	"github.com/tidwall/rtree"

	"bikedash.nycbikeshare.org/internal/utils"
)

// StationLocation is a station's representative coordinate: the first valid
// position observed for it in the dataset (start side before end side), which
// keeps the index deterministic for a given input order.
type StationLocation struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// StationNearby is a StationLocation with its distance from a query point.
type StationNearby struct {
	StationLocation
	DistanceMeters float64 `json:"distanceMeters"`
}

// StationIndex is a spatial index over station locations.
type StationIndex struct {
	tree  rtree.RTreeG[StationLocation]
	count int
}

// BuildStationIndex indexes one coordinate per distinct station name.
func BuildStationIndex(ds *Dataset) *StationIndex {
	idx := &StationIndex{}
	seen := make(map[string]bool)

	insert := func(name string, lat, lng float64) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		loc := StationLocation{Name: name, Lat: lat, Lon: lng}
		idx.tree.Insert([2]float64{lng, lat}, [2]float64{lng, lat}, loc)
		idx.count++
	}

	for _, rec := range ds.Records {
		if rec.StartLat.Valid && rec.StartLng.Valid {
			insert(rec.StartStationName, rec.StartLat.Float64, rec.StartLng.Float64)
		}
		if rec.EndLat.Valid && rec.EndLng.Valid {
			insert(rec.EndStationName, rec.EndLat.Float64, rec.EndLng.Float64)
		}
	}

	return idx
}

// Len returns the number of indexed stations.
func (idx *StationIndex) Len() int {
	return idx.count
}

// StationsWithinRadius returns stations within radiusMeters of (lat, lon),
// closest first, capped at max when max > 0. Ties in distance break by name.
func (idx *StationIndex) StationsWithinRadius(lat, lon, radiusMeters float64, max int) []StationNearby {
	bounds := utils.CalculateBounds(lat, lon, radiusMeters)

	var hits []StationNearby
	idx.tree.Search(
		[2]float64{bounds.MinLon, bounds.MinLat},
		[2]float64{bounds.MaxLon, bounds.MaxLat},
		func(min, maxPt [2]float64, loc StationLocation) bool {
			d := utils.Distance(lat, lon, loc.Lat, loc.Lon)
			if d <= radiusMeters {
				hits = append(hits, StationNearby{StationLocation: loc, DistanceMeters: d})
			}
			return true
		},
	)

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].DistanceMeters != hits[j].DistanceMeters {
			return hits[i].DistanceMeters < hits[j].DistanceMeters
		}
		return hits[i].Name < hits[j].Name
	})

	if max > 0 && len(hits) > max {
		hits = hits[:max]
	}
	return hits
}
