package maps

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
	gmaps "googlemaps.github.io/maps"

	"maisoku/internal/domain/models"
)

// PlacesSearcher defines the nearby-search surface used to build the
// structured sub-data on area analyses. Split from Geocoder because the
// address services never need it.
type PlacesSearcher interface {
	// NearbyStations lists train stations within the radius, nearest first.
	NearbyStations(ctx context.Context, lat, lng float64, radiusMeters int) ([]models.StationAccess, error)

	// FacilityDensity counts facilities by category within the radius.
	FacilityDensity(ctx context.Context, lat, lng float64, radiusMeters int) (*models.FacilityDensity, error)
}

// walkingSpeedMeterPerMin is the pedestrian pace used for the walking-time
// estimate (the standard figure used in Japanese real-estate listings).
const walkingSpeedMeterPerMin = 80

// maxStations bounds how many stations the structured data reports.
const maxStations = 5

// NearbyStations lists train stations within the radius, nearest first.
func (c *Client) NearbyStations(ctx context.Context, lat, lng float64, radiusMeters int) ([]models.StationAccess, error) {
	resp, err := c.api.NearbySearch(ctx, &gmaps.NearbySearchRequest{
		Location: &gmaps.LatLng{Lat: lat, Lng: lng},
		Radius:   uint(radiusMeters),
		Type:     gmaps.PlaceTypeTrainStation,
		Language: "ja",
	})
	if err != nil {
		return nil, fmt.Errorf("nearby stations: %w", err)
	}

	stations := make([]models.StationAccess, 0, len(resp.Results))
	for _, r := range resp.Results {
		distance := haversineMeters(lat, lng, r.Geometry.Location.Lat, r.Geometry.Location.Lng)
		stations = append(stations, models.StationAccess{
			Name:          r.Name,
			DistanceMeter: distance,
			WalkingMin:    (distance + walkingSpeedMeterPerMin - 1) / walkingSpeedMeterPerMin,
		})
	}

	sort.Slice(stations, func(i, j int) bool {
		return stations[i].DistanceMeter < stations[j].DistanceMeter
	})
	if len(stations) > maxStations {
		stations = stations[:maxStations]
	}

	return stations, nil
}

// facilityCategories maps the density fields to Places types.
var facilityCategories = []struct {
	placeType gmaps.PlaceType
	assign    func(*models.FacilityDensity, int)
}{
	{gmaps.PlaceTypeSupermarket, func(d *models.FacilityDensity, n int) { d.Supermarkets = n }},
	{gmaps.PlaceTypeConvenienceStore, func(d *models.FacilityDensity, n int) { d.Convenience = n }},
	{gmaps.PlaceTypeHospital, func(d *models.FacilityDensity, n int) { d.Hospitals = n }},
	{gmaps.PlaceTypeSchool, func(d *models.FacilityDensity, n int) { d.Schools = n }},
	{gmaps.PlaceTypePark, func(d *models.FacilityDensity, n int) { d.Parks = n }},
}

// FacilityDensity counts facilities by category within the radius. The
// per-category searches hit independent Places types, so they run in
// parallel and the first failure cancels the rest.
func (c *Client) FacilityDensity(ctx context.Context, lat, lng float64, radiusMeters int) (*models.FacilityDensity, error) {
	var density models.FacilityDensity

	g, ctx := errgroup.WithContext(ctx)
	for _, cat := range facilityCategories {
		g.Go(func() error {
			resp, err := c.api.NearbySearch(ctx, &gmaps.NearbySearchRequest{
				Location: &gmaps.LatLng{Lat: lat, Lng: lng},
				Radius:   uint(radiusMeters),
				Type:     cat.placeType,
				Language: "ja",
			})
			if err != nil {
				return fmt.Errorf("nearby %s: %w", cat.placeType, err)
			}
			cat.assign(&density, len(resp.Results))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &density, nil
}

// haversineMeters returns the great-circle distance between two positions.
func haversineMeters(lat1, lng1, lat2, lng2 float64) int {
	const earthRadiusMeters = 6371000

	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return int(math.Round(earthRadiusMeters * c))
}
