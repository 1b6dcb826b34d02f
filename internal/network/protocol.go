package network

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/race/scroller/internal/game"
)

var (
	ErrInvalidMessage = errors.New("invalid message")
	ErrBufferTooSmall = errors.New("buffer too small")
)

// Protocol handles binary encoding/decoding
type Protocol struct{}

// NewProtocol creates a new protocol handler
func NewProtocol() *Protocol {
	return &Protocol{}
}

// DecodeKey decodes a key-down or key-up message (3 bytes)
func (p *Protocol) DecodeKey(data []byte) (*KeyMessage, error) {
	if len(data) < keyMessageSize {
		return nil, ErrBufferTooSmall
	}

	if data[0] != MsgTypeKeyDown && data[0] != MsgTypeKeyUp {
		return nil, ErrInvalidMessage
	}

	return &KeyMessage{
		MsgType: data[0],
		KeyCode: binary.LittleEndian.Uint16(data[1:3]),
	}, nil
}

// EncodeKey encodes a key message. Used by Go clients and tests.
func (p *Protocol) EncodeKey(code uint16, pressed bool) []byte {
	buf := make([]byte, keyMessageSize)
	buf[0] = MsgTypeKeyUp
	if pressed {
		buf[0] = MsgTypeKeyDown
	}
	binary.LittleEndian.PutUint16(buf[1:3], code)
	return buf
}

// DecodePing extracts the client timestamp from a ping (9 bytes)
func (p *Protocol) DecodePing(data []byte) (uint64, error) {
	if len(data) < pingMessageSize {
		return 0, ErrBufferTooSmall
	}
	if data[0] != MsgTypePing {
		return 0, ErrInvalidMessage
	}
	return binary.LittleEndian.Uint64(data[1:9]), nil
}

// EncodeFrame encodes a frame message
func (p *Protocol) EncodeFrame(frame *FrameMessage) []byte {
	segmentCount := len(frame.Segments)
	if segmentCount > 255 {
		segmentCount = 255
	}

	// Header: 21 bytes + 13 bytes per segment
	buf := make([]byte, frameHeaderSize+segmentCount*frameSegmentSize)

	buf[0] = MsgTypeFrame
	binary.LittleEndian.PutUint16(buf[1:3], frame.Tick)
	buf[3] = frame.Flags
	putFloat32(buf[4:8], frame.Vehicle.X)
	putFloat32(buf[8:12], frame.Vehicle.Y)
	putFloat32(buf[12:16], frame.Vehicle.Width)
	putFloat32(buf[16:20], frame.Vehicle.Height)
	buf[20] = uint8(segmentCount)

	offset := frameHeaderSize
	for i := 0; i < segmentCount; i++ {
		p.encodeSegment(buf[offset:], frame.Segments[i])
		offset += frameSegmentSize
	}

	return buf
}

// encodeSegment encodes a single segment (13 bytes)
func (p *Protocol) encodeSegment(buf []byte, seg SegmentData) {
	buf[0] = seg.Index
	putFloat32(buf[1:5], seg.Y)
	putFloat32(buf[5:9], seg.RoadWidth)
	putFloat32(buf[9:13], seg.Margin)
}

// DecodeFrame decodes a frame message. Used by Go clients and tests.
func (p *Protocol) DecodeFrame(data []byte) (*FrameMessage, error) {
	if len(data) < frameHeaderSize {
		return nil, ErrBufferTooSmall
	}
	if data[0] != MsgTypeFrame {
		return nil, ErrInvalidMessage
	}

	count := int(data[20])
	if len(data) < frameHeaderSize+count*frameSegmentSize {
		return nil, ErrBufferTooSmall
	}

	frame := &FrameMessage{
		MsgType: data[0],
		Tick:    binary.LittleEndian.Uint16(data[1:3]),
		Flags:   data[3],
		Vehicle: VehicleData{
			X:      getFloat32(data[4:8]),
			Y:      getFloat32(data[8:12]),
			Width:  getFloat32(data[12:16]),
			Height: getFloat32(data[16:20]),
		},
		Segments: make([]SegmentData, count),
	}

	offset := frameHeaderSize
	for i := range frame.Segments {
		b := data[offset : offset+frameSegmentSize]
		frame.Segments[i] = SegmentData{
			Index:     b[0],
			Y:         getFloat32(b[1:5]),
			RoadWidth: getFloat32(b[5:9]),
			Margin:    getFloat32(b[9:13]),
		}
		offset += frameSegmentSize
	}

	return frame, nil
}

// EncodeCrash encodes a crash message (4 bytes)
func (p *Protocol) EncodeCrash(side, segment uint8, fresh bool) []byte {
	buf := make([]byte, crashMessageSize)
	buf[0] = MsgTypeCrash
	buf[1] = side
	buf[2] = segment
	if fresh {
		buf[3] = 1
	}
	return buf
}

// EncodeSessionInfo encodes session info message
func (p *Protocol) EncodeSessionInfo(info *SessionInfoMessage) []byte {
	idBytes := []byte(info.SessionID)
	if len(idBytes) > 255 {
		idBytes = idBytes[:255]
	}

	buf := make([]byte, 11+len(idBytes))
	buf[0] = MsgTypeSessionInfo
	buf[1] = uint8(len(idBytes))
	copy(buf[2:], idBytes)
	offset := 2 + len(idBytes)
	binary.LittleEndian.PutUint16(buf[offset:], info.ViewportWidth)
	binary.LittleEndian.PutUint16(buf[offset+2:], info.ViewportHeight)
	buf[offset+4] = info.TrackChunks
	putFloat32(buf[offset+5:], info.TrackHeight)

	return buf
}

// EncodePong encodes a pong message
func (p *Protocol) EncodePong(timestamp uint64) []byte {
	buf := make([]byte, 9)
	buf[0] = MsgTypePong
	binary.LittleEndian.PutUint64(buf[1:9], timestamp)
	return buf
}

// EncodeError encodes an error message
func (p *Protocol) EncodeError(code uint8, message string) []byte {
	msgBytes := []byte(message)
	if len(msgBytes) > 255 {
		msgBytes = msgBytes[:255]
	}

	buf := make([]byte, 3+len(msgBytes))
	buf[0] = MsgTypeError
	buf[1] = code
	buf[2] = uint8(len(msgBytes))
	copy(buf[3:], msgBytes)

	return buf
}

// ConvertSnapshot converts simulation state to network format
func ConvertSnapshot(s game.Snapshot) *FrameMessage {
	flags := uint8(0)
	if s.Vehicle.Visible {
		flags |= FlagVehicleVisible
	}
	if s.Crashed {
		flags |= FlagCrashed
	}
	if s.Input.Steering() {
		flags |= FlagSteering
	}
	if s.Input.Accelerating() {
		flags |= FlagAccelerating
	}

	segments := make([]SegmentData, len(s.Segments))
	for i, seg := range s.Segments {
		segments[i] = SegmentData{
			Index:     uint8(seg.Index),
			Y:         float32(seg.Position.Y),
			RoadWidth: float32(seg.RoadWidth),
			Margin:    float32(seg.HorizontalMargin),
		}
	}

	return &FrameMessage{
		MsgType: MsgTypeFrame,
		Tick:    uint16(s.Tick & 0xFFFF),
		Flags:   flags,
		Vehicle: VehicleData{
			X:      float32(s.Vehicle.Position.X),
			Y:      float32(s.Vehicle.Position.Y),
			Width:  float32(s.Vehicle.Size.Width),
			Height: float32(s.Vehicle.Size.Height),
		},
		Segments: segments,
	}
}

// ConvertCrashSide maps a crash side to its wire value
func ConvertCrashSide(side game.CrashSide) uint8 {
	if side == game.CrashRight {
		return SideRight
	}
	return SideLeft
}

func putFloat32(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
}

func getFloat32(buf []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf))
}
