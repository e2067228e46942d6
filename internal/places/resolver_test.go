package places

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"

	"visionmate.app/multimodal-mate/internal/apperr"
)

type fakeLookup struct {
	nearby     []maps.PlacesSearchResult
	nearbyErr  error
	geocoded   []maps.GeocodingResult
	geocodeErr error

	nearbyReqs  []*maps.NearbySearchRequest
	geocodeReqs []*maps.GeocodingRequest
}

func (f *fakeLookup) NearbySearch(_ context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error) {
	f.nearbyReqs = append(f.nearbyReqs, r)
	return maps.PlacesSearchResponse{Results: f.nearby}, f.nearbyErr
}

func (f *fakeLookup) Geocode(_ context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	f.geocodeReqs = append(f.geocodeReqs, r)
	return f.geocoded, f.geocodeErr
}

func place(lat, lng float64) maps.PlacesSearchResult {
	var p maps.PlacesSearchResult
	p.Geometry.Location = maps.LatLng{Lat: lat, Lng: lng}
	return p
}

func geocode(lat, lng float64) maps.GeocodingResult {
	var g maps.GeocodingResult
	g.Geometry.Location = maps.LatLng{Lat: lat, Lng: lng}
	return g
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("nearest place wins", func(t *testing.T) {
		fl := &fakeLookup{nearby: []maps.PlacesSearchResult{place(12.97, 77.59), place(13.0, 77.6)}}
		got, err := NewResolverWithLookup(fl).Resolve(ctx, " Central Park ", 12.9, 77.5)
		require.NoError(t, err)
		assert.Equal(t, Coordinates{Lat: 12.97, Lng: 77.59}, got)

		require.Len(t, fl.nearbyReqs, 1)
		req := fl.nearbyReqs[0]
		assert.Equal(t, "Central Park", req.Keyword)
		assert.Equal(t, maps.RankByDistance, req.RankBy)
		assert.Equal(t, &maps.LatLng{Lat: 12.9, Lng: 77.5}, req.Location)
		assert.Empty(t, fl.geocodeReqs)
	})

	t.Run("falls back to geocoding", func(t *testing.T) {
		fl := &fakeLookup{geocoded: []maps.GeocodingResult{geocode(48.85, 2.35)}}
		got, err := NewResolverWithLookup(fl).Resolve(ctx, "Paris", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, Coordinates{Lat: 48.85, Lng: 2.35}, got)
		require.Len(t, fl.geocodeReqs, 1)
		assert.Equal(t, "Paris", fl.geocodeReqs[0].Address)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := NewResolverWithLookup(&fakeLookup{}).Resolve(ctx, "Atlantis", 0, 0)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("nearby search failure", func(t *testing.T) {
		fl := &fakeLookup{nearbyErr: errors.New("OVER_QUERY_LIMIT")}
		_, err := NewResolverWithLookup(fl).Resolve(ctx, "cafe", 1, 1)
		assert.ErrorIs(t, err, apperr.ErrUpstream)
		assert.Empty(t, fl.geocodeReqs)
	})

	t.Run("geocode failure", func(t *testing.T) {
		fl := &fakeLookup{geocodeErr: errors.New("REQUEST_DENIED")}
		_, err := NewResolverWithLookup(fl).Resolve(ctx, "cafe", 1, 1)
		assert.ErrorIs(t, err, apperr.ErrUpstream)
	})

	t.Run("empty keyword", func(t *testing.T) {
		_, err := NewResolverWithLookup(&fakeLookup{}).Resolve(ctx, "  ", 1, 1)
		assert.ErrorIs(t, err, apperr.ErrInvalidRequest)
	})

	t.Run("no api key", func(t *testing.T) {
		r, err := NewResolver("")
		require.NoError(t, err)
		_, err = r.Resolve(ctx, "cafe", 1, 1)
		assert.ErrorIs(t, err, apperr.ErrConfig)
	})
}
