package network

// Message types
const (
	// Client -> Server
	MsgTypeKeyDown uint8 = 0x01
	MsgTypeKeyUp   uint8 = 0x02
	MsgTypeStart   uint8 = 0x03 // Start, or restart a running session
	MsgTypePing    uint8 = 0x04
	MsgTypeLeave   uint8 = 0x05

	// Server -> Client
	MsgTypeFrame       uint8 = 0x10
	MsgTypeCrash       uint8 = 0x13
	MsgTypeSessionInfo uint8 = 0x14
	MsgTypePong        uint8 = 0x15
	MsgTypeError       uint8 = 0xFF
)

// Frame flags
const (
	FlagVehicleVisible uint8 = 1 << 0
	FlagCrashed        uint8 = 1 << 1
	FlagSteering       uint8 = 1 << 2
	FlagAccelerating   uint8 = 1 << 3
)

// Crash sides on the wire
const (
	SideLeft  uint8 = 1
	SideRight uint8 = 2
)

// Sizes of fixed-layout messages
const (
	keyMessageSize   = 3
	pingMessageSize  = 9
	frameHeaderSize  = 21
	frameSegmentSize = 13
	crashMessageSize = 4
)

// KeyMessage from client (3 bytes)
type KeyMessage struct {
	MsgType uint8
	KeyCode uint16
}

// Pressed reports whether this is a key-down.
func (m *KeyMessage) Pressed() bool {
	return m.MsgType == MsgTypeKeyDown
}

// FrameMessage to client
type FrameMessage struct {
	MsgType  uint8
	Tick     uint16
	Flags    uint8
	Vehicle  VehicleData
	Segments []SegmentData
}

// VehicleData is the vehicle bounding box (16 bytes)
type VehicleData struct {
	X, Y          float32
	Width, Height float32
}

// SegmentData is one track row (13 bytes per segment)
type SegmentData struct {
	Index     uint8
	Y         float32
	RoadWidth float32
	Margin    float32
}

// CrashMessage to client
type CrashMessage struct {
	MsgType uint8
	Side    uint8
	Segment uint8
	Fresh   bool
}

// SessionInfoMessage to client
type SessionInfoMessage struct {
	MsgType        uint8
	SessionID      string
	ViewportWidth  uint16
	ViewportHeight uint16
	TrackChunks    uint8
	TrackHeight    float32
}

// PongMessage to client
type PongMessage struct {
	MsgType   uint8
	Timestamp uint64
}

// ErrorMessage to client
type ErrorMessage struct {
	MsgType uint8
	Code    uint8
	Message string
}

// Error codes
const (
	ErrorCodeInvalidMessage uint8 = 1
	ErrorCodeServerFull     uint8 = 2
	ErrorCodeNoSession      uint8 = 3
	ErrorCodeServerError    uint8 = 4
)
