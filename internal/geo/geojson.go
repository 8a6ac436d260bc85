// Package geo converts lakes to GeoJSON for use in external map tools.
package geo

import (
	"fmt"
	"math"

	"lacsverts/internal/types"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Point returns the lake position. GeoJSON order is longitude, latitude.
func Point(l types.Lake) orb.Point {
	return orb.Point{l.Longitude, l.Latitude}
}

// FeatureCollection builds one Point feature per lake with a valid position.
// Lakes with out-of-range coordinates are skipped and counted.
func FeatureCollection(lakes []types.Lake) (*geojson.FeatureCollection, int) {
	fc := geojson.NewFeatureCollection()
	skipped := 0
	for _, l := range lakes {
		if !validCoordinates(l.Latitude, l.Longitude) {
			skipped++
			continue
		}
		f := geojson.NewFeature(Point(l))
		f.ID = l.ID
		f.Properties["name"] = l.Name
		f.Properties["region"] = l.Region
		f.Properties["status"] = l.Status.Label()
		f.Properties["status_icon"] = l.Status.Icon()
		f.Properties["description"] = l.Description
		if !l.UpdatedAt.IsZero() {
			f.Properties["updated_at"] = l.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z")
		}
		fc.Append(f)
	}
	return fc, skipped
}

// Marshal encodes the lakes as a GeoJSON FeatureCollection.
func Marshal(lakes []types.Lake) ([]byte, int, error) {
	fc, skipped := FeatureCollection(lakes)
	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, skipped, fmt.Errorf("failed to encode geojson: %w", err)
	}
	return data, skipped, nil
}

// Bound returns the bounding box of the given lakes.
func Bound(lakes []types.Lake) orb.Bound {
	var mp orb.MultiPoint
	for _, l := range lakes {
		if validCoordinates(l.Latitude, l.Longitude) {
			mp = append(mp, Point(l))
		}
	}
	return mp.Bound()
}

func validCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
