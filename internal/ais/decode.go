package ais

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

func toLatLng(lat, lon float64) s2.LatLng {
	return s2.LatLng{
		Lat: s1.Angle(lat * math.Pi / 180),
		Lng: s1.Angle(lon * math.Pi / 180),
	}
}

// Decode inspects the 6-bit message type of a CRC-checked AIS frame payload
// and dispatches to the matching decoder. Field offsets are the teacher's
// get_field_*(ais, start, length) call sites generalized to Go bit-field
// extraction (bitfield.go), filled out to the full ITU-R M.1371 layout for
// fields the teacher's callers didn't need.
func Decode(payload []byte) Message {
	msgType := int(getField(payload, 0, 6))

	switch msgType {
	case 1, 2, 3:
		return decodePositionReport(payload, msgType)
	case 4:
		return decodeBaseStationReport(payload)
	case 5:
		return decodeStaticVoyageData(payload)
	default:
		return RawFrame{MessageType: msgType, Bits: append([]byte(nil), payload...)}
	}
}

func decodePositionReport(payload []byte, msgType int) PositionReport {
	mmsi := getField(payload, 8, 30)
	navStatus := getField(payload, 38, 4)
	rot := getFieldSigned(payload, 42, 8)
	speed, hasSpeed := getFieldSpeed(payload, 50, 10)
	accurate := getField(payload, 60, 1) != 0
	lon, lonOK := getFieldLon(payload, 61, 28)
	lat, latOK := getFieldLat(payload, 89, 27)
	course, hasCourse := getFieldCourse(payload, 116, 12)
	heading := getField(payload, 128, 9)
	timestamp := getField(payload, 137, 6)

	return PositionReport{
		MMSI:             mmsi,
		MessageType:      msgType,
		NavStatus:        navStatus,
		RateOfTurn:       rot,
		HasSpeed:         hasSpeed,
		SpeedKnots:       speed,
		PositionAccurate: accurate,
		HasPosition:      lonOK && latOK,
		Latitude:         lat,
		Longitude:        lon,
		HasCourse:        hasCourse,
		CourseDegrees:    course,
		Heading:          heading,
		Timestamp:        timestamp,
	}
}

func decodeBaseStationReport(payload []byte) BaseStationReport {
	mmsi := getField(payload, 8, 30)
	year := getField(payload, 38, 14)
	month := getField(payload, 52, 4)
	day := getField(payload, 56, 5)
	hour := getField(payload, 61, 5)
	minute := getField(payload, 66, 6)
	second := getField(payload, 72, 6)
	lon, lonOK := getFieldLon(payload, 79, 28)
	lat, latOK := getFieldLat(payload, 107, 27)
	epfd := getField(payload, 134, 4)

	return BaseStationReport{
		MMSI:        mmsi,
		Year:        year,
		Month:       month,
		Day:         day,
		Hour:        hour,
		Minute:      minute,
		Second:      second,
		HasPosition: lonOK && latOK,
		Latitude:    lat,
		Longitude:   lon,
		EPFDType:    epfd,
	}
}

func decodeStaticVoyageData(payload []byte) StaticVoyageData {
	mmsi := getField(payload, 8, 30)
	imo := getField(payload, 40, 30)
	callsign := getFieldString(payload, 70, 42)
	shipName := getFieldString(payload, 112, 120)
	shipType := getField(payload, 232, 8)
	dimBow := getField(payload, 240, 9)
	dimStern := getField(payload, 249, 9)
	dimPort := getField(payload, 258, 6)
	dimStarboard := getField(payload, 264, 6)
	epfd := getField(payload, 270, 4)
	etaMonth := getField(payload, 274, 4)
	etaDay := getField(payload, 278, 5)
	etaHour := getField(payload, 283, 5)
	etaMinute := getField(payload, 288, 6)
	draught := getField(payload, 294, 8)
	destination := getFieldString(payload, 302, 120)

	return StaticVoyageData{
		MMSI:           mmsi,
		IMONumber:      imo,
		Callsign:       callsign,
		ShipName:       shipName,
		ShipType:       shipType,
		DimToBow:       dimBow,
		DimToStern:     dimStern,
		DimToPort:      dimPort,
		DimToStarboard: dimStarboard,
		EPFDType:       epfd,
		ETAMonth:       etaMonth,
		ETADay:         etaDay,
		ETAHour:        etaHour,
		ETAMinute:      etaMinute,
		DraughtMeters:  float64(draught) / 10.0,
		Destination:    destination,
	}
}

// LatLng converts a PositionReport's decoded coordinate into an s2.LatLng
// for callers that want geo helpers (distance, containment) over bare
// floats.
func (p PositionReport) LatLng() s2.LatLng { return toLatLng(p.Latitude, p.Longitude) }

// LatLng converts a BaseStationReport's decoded coordinate into an
// s2.LatLng.
func (b BaseStationReport) LatLng() s2.LatLng { return toLatLng(b.Latitude, b.Longitude) }
