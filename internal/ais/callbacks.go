package ais

// Message is the sum type delivered to a Receiver's callback: one of
// PositionReport, BaseStationReport, StaticVoyageData, or RawFrame (for
// message types the decoder does not yet interpret).
type Message interface {
	isAISMessage()
}

// PositionReport covers AIS message types 1, 2, and 3.
type PositionReport struct {
	MMSI             uint32
	MessageType      int
	NavStatus        uint32
	RateOfTurn       int32
	HasSpeed         bool
	SpeedKnots       float64
	PositionAccurate bool
	HasPosition      bool
	Latitude         float64
	Longitude        float64
	HasCourse        bool
	CourseDegrees    float64
	Heading          uint32
	Timestamp        uint32
}

func (PositionReport) isAISMessage() {}

// BaseStationReport covers AIS message type 4.
type BaseStationReport struct {
	MMSI        uint32
	Year        uint32
	Month       uint32
	Day         uint32
	Hour        uint32
	Minute      uint32
	Second      uint32
	HasPosition bool
	Latitude    float64
	Longitude   float64
	EPFDType    uint32
}

func (BaseStationReport) isAISMessage() {}

// StaticVoyageData covers AIS message type 5.
type StaticVoyageData struct {
	MMSI            uint32
	IMONumber       uint32
	Callsign        string
	ShipName        string
	ShipType        uint32
	DimToBow        uint32
	DimToStern      uint32
	DimToPort       uint32
	DimToStarboard  uint32
	EPFDType        uint32
	ETAMonth        uint32
	ETADay          uint32
	ETAHour         uint32
	ETAMinute       uint32
	DraughtMeters   float64
	Destination     string
}

func (StaticVoyageData) isAISMessage() {}

// RawFrame is delivered for any successfully CRC-checked frame whose message
// type this decoder doesn't interpret, so callers can still observe traffic
// volume and (if they wish) decode further types themselves.
type RawFrame struct {
	MessageType int
	Bits        []byte
}

func (RawFrame) isAISMessage() {}
