package geo

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/golang/geo/s2"
	geojson "github.com/paulmach/go.geojson"
)

const earthRadiusMeters = 6371010.0

// DistanceMeters returns the great-circle distance between two points.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * earthRadiusMeters
}

// ServiceArea is the geographic region within which reports are accepted:
// a lat/lon bounding box, optionally refined by a polygon.
type ServiceArea struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
	loop           *s2.Loop
}

// NewServiceArea builds a rectangular service area.
func NewServiceArea(latMin, latMax, lonMin, lonMax float64) *ServiceArea {
	return &ServiceArea{
		LatMin: latMin,
		LatMax: latMax,
		LonMin: lonMin,
		LonMax: lonMax,
	}
}

// LoadPolygon refines the service area with a polygon read from a GeoJSON
// feature file. The first ring of the first polygon is used.
func (a *ServiceArea) LoadPolygon(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read service area file: %w", err)
	}

	feature := &geojson.Feature{}
	if err := json.Unmarshal(data, feature); err != nil {
		return fmt.Errorf("failed to parse service area GeoJSON: %w", err)
	}
	if feature.Geometry == nil || !feature.Geometry.IsPolygon() || len(feature.Geometry.Polygon) == 0 {
		return fmt.Errorf("service area feature is not a polygon")
	}

	ring := feature.Geometry.Polygon[0]
	points := make([]s2.Point, 0, len(ring))
	for i, coord := range ring {
		if len(coord) < 2 {
			return fmt.Errorf("service area ring has malformed coordinate at %d", i)
		}
		// GeoJSON coordinate order is lon, lat. Skip the closing
		// coordinate, s2 loops are implicitly closed.
		if i == len(ring)-1 && coord[0] == ring[0][0] && coord[1] == ring[0][1] {
			continue
		}
		points = append(points, s2.PointFromLatLng(s2.LatLngFromDegrees(coord[1], coord[0])))
	}
	if len(points) < 3 {
		return fmt.Errorf("service area ring has fewer than 3 points")
	}

	loop := s2.LoopFromPoints(points)
	// GeoJSON rings may wind either way; an inverted loop covers nearly
	// the whole sphere.
	if loop.Area() > 2*math.Pi {
		loop.Invert()
	}
	a.loop = loop
	return nil
}

// Contains reports whether the point lies within the service area,
// boundary inclusive for the bounding box.
func (a *ServiceArea) Contains(lat, lon float64) bool {
	if lat < a.LatMin || lat > a.LatMax || lon < a.LonMin || lon > a.LonMax {
		return false
	}
	if a.loop != nil {
		return a.loop.ContainsPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon)))
	}
	return true
}
