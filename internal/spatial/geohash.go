package spatial

import "strings"

const geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// EncodeGeohash encodes a coordinate as a geohash of the given precision (1-12).
// Hotspots falling into the same cell at the same acquisition time are treated
// as duplicate detections.
func EncodeGeohash(lat, lon float64, precision int) string {
	if precision < 1 {
		precision = 1
	}
	if precision > 12 {
		precision = 12
	}

	latLo, latHi := -90.0, 90.0
	lonLo, lonHi := -180.0, 180.0

	out := make([]byte, precision)
	evenBit := true
	for i := 0; i < precision; i++ {
		idx := 0
		for b := 0; b < 5; b++ {
			idx <<= 1
			if evenBit {
				mid := (lonLo + lonHi) / 2
				if lon >= mid {
					idx |= 1
					lonLo = mid
				} else {
					lonHi = mid
				}
			} else {
				mid := (latLo + latHi) / 2
				if lat >= mid {
					idx |= 1
					latLo = mid
				} else {
					latHi = mid
				}
			}
			evenBit = !evenBit
		}
		out[i] = geohashAlphabet[idx]
	}

	return string(out)
}

// DecodeGeohash returns the cell covered by a geohash. Characters outside the
// alphabet stop decoding, leaving the cell of the valid prefix.
func DecodeGeohash(hash string) BBox {
	latLo, latHi := -90.0, 90.0
	lonLo, lonHi := -180.0, 180.0

	evenBit := true
	for i := 0; i < len(hash); i++ {
		idx := strings.IndexByte(geohashAlphabet, hash[i])
		if idx < 0 {
			break
		}
		for b := 4; b >= 0; b-- {
			bit := idx>>uint(b)&1 == 1
			if evenBit {
				mid := (lonLo + lonHi) / 2
				if bit {
					lonLo = mid
				} else {
					lonHi = mid
				}
			} else {
				mid := (latLo + latHi) / 2
				if bit {
					latLo = mid
				} else {
					latHi = mid
				}
			}
			evenBit = !evenBit
		}
	}

	return BBox{West: lonLo, South: latLo, East: lonHi, North: latHi}
}
