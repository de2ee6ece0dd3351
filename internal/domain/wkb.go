package domain

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

// EWKB point layout: 1 byte endianness flag, 4 bytes geometry type,
// 4 bytes SRID, 8 bytes X (longitude), 8 bytes Y (latitude).
const (
	wkbHeaderBytes = 9
	wkbPointBytes  = wkbHeaderBytes + 16
)

// ewkbPointHeader is the fixed prefix for a little-endian SRID-4326 point,
// used when encoding fixtures.
const ewkbPointHeader = "0101000020E6100000"

// DecodePoint decodes a hex-encoded EWKB point into a GeoPoint.
// It returns nil for malformed input (non-hex characters, insufficient
// length) and for coordinates that are non-finite or outside WGS-84 bounds.
// A missing point is an expected outcome, never an error.
func DecodePoint(encoded string) *GeoPoint {
	encoded = strings.TrimSpace(encoded)
	if len(encoded) < wkbPointBytes*2 {
		return nil
	}

	data, err := hex.DecodeString(encoded[:wkbPointBytes*2])
	if err != nil {
		return nil
	}

	lon := math.Float64frombits(binary.LittleEndian.Uint64(data[wkbHeaderBytes : wkbHeaderBytes+8]))
	lat := math.Float64frombits(binary.LittleEndian.Uint64(data[wkbHeaderBytes+8 : wkbHeaderBytes+16]))

	if !validCoordinates(lat, lon) {
		return nil
	}
	return &GeoPoint{Lat: lat, Lon: lon}
}

// EncodePoint produces the hex EWKB form of a coordinate pair, matching the
// layout DecodePoint consumes. Used to build test fixtures and mock data.
func EncodePoint(lat, lon float64) string {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(lon))
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(lat))
	return fmt.Sprintf("%s%X", ewkbPointHeader, buf)
}

// validCoordinates reports whether a pair is finite and inside WGS-84 bounds.
func validCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return false
	}
	return math.Abs(lat) <= 90 && math.Abs(lon) <= 180
}
