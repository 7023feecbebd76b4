package worldmap

import (
	"fmt"
	"log"

	"github.com/jonas-p/go-shp"
)

// LandMask answers whether a coordinate lies on land.
// It is built from the polygons of a shapefile such as Natural Earth's ne_110m_land.
type LandMask struct {
	polygons []landPolygon
}

type landPolygon struct {
	minLng, minLat, maxLng, maxLat float64
	rings                          [][]shp.Point // X = longitude, Y = latitude
}

// LoadLandMask reads every polygon of a shapefile
func LoadLandMask(path string) (*LandMask, error) {
	shape, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening shapefile: %w", err)
	}
	defer shape.Close()

	mask := &LandMask{}
	skipped := 0
	for shape.Next() {
		_, p := shape.Shape()

		polygon, ok := p.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		mask.add(polygon)
	}

	if skipped > 0 {
		log.Printf("worldmap: skipped %d non-polygon shapes in %s", skipped, path)
	}
	if len(mask.polygons) == 0 {
		return nil, fmt.Errorf("no polygons found in %s", path)
	}
	log.Printf("worldmap: loaded %d land polygons from %s", len(mask.polygons), path)
	return mask, nil
}

// add splits a polygon into its rings; holes are handled by the even-odd rule
func (l *LandMask) add(polygon *shp.Polygon) {
	bbox := polygon.BBox()
	lp := landPolygon{
		minLng: bbox.MinX,
		minLat: bbox.MinY,
		maxLng: bbox.MaxX,
		maxLat: bbox.MaxY,
	}

	for partIdx := 0; partIdx < len(polygon.Parts); partIdx++ {
		startIdx := int(polygon.Parts[partIdx])
		endIdx := len(polygon.Points)
		if partIdx+1 < len(polygon.Parts) {
			endIdx = int(polygon.Parts[partIdx+1])
		}
		if endIdx-startIdx < 3 {
			continue
		}
		lp.rings = append(lp.rings, polygon.Points[startIdx:endIdx])
	}

	if len(lp.rings) > 0 {
		l.polygons = append(l.polygons, lp)
	}
}

// Contains reports whether (lat, lng) falls inside any polygon
func (l *LandMask) Contains(lat, lng float64) bool {
	if l == nil {
		return false
	}
	for _, p := range l.polygons {
		if lng < p.minLng || lng > p.maxLng || lat < p.minLat || lat > p.maxLat {
			continue
		}
		inside := false
		for _, ring := range p.rings {
			if ringContains(ring, lng, lat) {
				inside = !inside
			}
		}
		if inside {
			return true
		}
	}
	return false
}

// ringContains is the ray casting point-in-polygon test
func ringContains(ring []shp.Point, x, y float64) bool {
	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		xi, yi := ring[i].X, ring[i].Y
		xj, yj := ring[j].X, ring[j].Y
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}
