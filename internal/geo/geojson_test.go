package geo

import (
	"math"
	"testing"

	"lacsverts/internal/types"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLakes() []types.Lake {
	return []types.Lake{
		{ID: "kossou", Name: "Lac de Kossou", Region: "Centre", Status: types.StatusClean, Latitude: 7.0, Longitude: -5.5},
		{ID: "ayame", Name: "Lac de Ayamé", Region: "Sud-Est", Status: types.StatusPolluted, Latitude: 5.6, Longitude: -3.2},
	}
}

func TestPoint_LonLatOrder(t *testing.T) {
	p := Point(types.Lake{Latitude: 7.0, Longitude: -5.5})
	assert.Equal(t, orb.Point{-5.5, 7.0}, p)
	assert.Equal(t, 7.0, p.Lat())
	assert.Equal(t, -5.5, p.Lon())
}

func TestMarshal_RoundTrip(t *testing.T) {
	data, skipped, err := Marshal(sampleLakes())
	require.NoError(t, err)
	assert.Zero(t, skipped)

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	f := fc.Features[1]
	assert.Equal(t, "ayame", f.ID)
	assert.Equal(t, "Lac de Ayamé", f.Properties.MustString("name"))
	assert.Equal(t, "pollué", f.Properties.MustString("status"))
	assert.Equal(t, orb.Point{-3.2, 5.6}, f.Geometry)
}

func TestFeatureCollection_SkipsInvalid(t *testing.T) {
	lakes := append(sampleLakes(),
		types.Lake{ID: "bad", Latitude: 120, Longitude: 0},
		types.Lake{ID: "nan", Latitude: math.NaN(), Longitude: 0},
	)
	fc, skipped := FeatureCollection(lakes)
	assert.Len(t, fc.Features, 2)
	assert.Equal(t, 2, skipped)
}

func TestBound(t *testing.T) {
	b := Bound(sampleLakes())
	assert.Equal(t, orb.Point{-5.5, 5.6}, b.Min)
	assert.Equal(t, orb.Point{-3.2, 7.0}, b.Max)
}
