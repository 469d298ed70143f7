package testdb

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/project"
)

// MercPoint projects a WGS84 lon/lat pair into web mercator (EPSG:3857), the projection the importer writes.
func MercPoint(lon, lat float64) orb.Point {
	return project.WGS84.ToMercator(orb.Point{lon, lat})
}

// decodeGeometry decodes a WKB value. nil input yields a nil geometry.
func decodeGeometry(value interface{}) (orb.Geometry, error) {
	var data []byte
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return nil, wkb.ErrNotWKB
	}
	if len(data) == 0 {
		return nil, nil
	}
	return wkb.Unmarshal(data)
}
