// Package places resolves a spoken destination to coordinates using the
// Google Places and Geocoding APIs.
package places

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"googlemaps.github.io/maps"

	"visionmate.app/multimodal-mate/internal/apperr"
	"visionmate.app/multimodal-mate/internal/logger"
)

// Lookup is the part of *maps.Client the resolver needs.
type Lookup interface {
	NearbySearch(ctx context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error)
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Resolver struct {
	lookup Lookup
	log    zerolog.Logger
}

// NewResolver builds a resolver backed by the Maps web services. An empty
// apiKey yields a resolver that reports apperr.ErrConfig on every call.
func NewResolver(apiKey string) (*Resolver, error) {
	if apiKey == "" {
		return NewResolverWithLookup(nil), nil
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, apperr.Wrap("places.NewResolver", apperr.ErrConfig, err)
	}
	return NewResolverWithLookup(client), nil
}

func NewResolverWithLookup(lookup Lookup) *Resolver {
	return &Resolver{
		lookup: lookup,
		log:    logger.WithComponent("places"),
	}
}

// Resolve returns the place matching keyword nearest to (lat, lng), falling
// back to geocoding keyword as an address.
func (r *Resolver) Resolve(ctx context.Context, keyword string, lat, lng float64) (Coordinates, error) {
	const op = "places.Resolve"

	if r == nil || r.lookup == nil {
		return Coordinates{}, apperr.New(op, apperr.ErrConfig, "Google Places API key not set")
	}
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return Coordinates{}, apperr.New(op, apperr.ErrInvalidRequest, "keyword is required")
	}

	log := r.log.With().Str("keyword", keyword).Logger()

	nearby, err := r.lookup.NearbySearch(ctx, &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: lat, Lng: lng},
		Keyword:  keyword,
		RankBy:   maps.RankByDistance,
	})
	if err != nil {
		log.Error().Err(err).Msg("Nearby search failed")
		return Coordinates{}, apperr.Wrap(op, apperr.ErrUpstream, err)
	}
	if len(nearby.Results) > 0 {
		loc := nearby.Results[0].Geometry.Location
		log.Debug().Float64("lat", loc.Lat).Float64("lng", loc.Lng).Msg("Resolved by nearby search")
		return Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
	}

	geocoded, err := r.lookup.Geocode(ctx, &maps.GeocodingRequest{Address: keyword})
	if err != nil {
		log.Error().Err(err).Msg("Geocoding failed")
		return Coordinates{}, apperr.Wrap(op, apperr.ErrUpstream, err)
	}
	if len(geocoded) == 0 {
		log.Info().Msg("Location not found")
		return Coordinates{}, apperr.New(op, apperr.ErrNotFound, "Location not found")
	}

	loc := geocoded[0].Geometry.Location
	log.Debug().Float64("lat", loc.Lat).Float64("lng", loc.Lng).Msg("Resolved by geocoding")
	return Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}
