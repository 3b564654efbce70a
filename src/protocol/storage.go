package protocol

import (
	"encoding/binary"
	"fmt"
)

// SysEx framing. All payload bytes stay within 0x00-0x0F so the frame is
// 7-bit clean for the MIDI transport.
const (
	SysExStart     = 0xF0
	SysExEnd       = 0xF7
	ManufacturerID = 0x7D
	ModelID        = 0x01
)

// Commands.
const (
	CmdDumpRequest  = 0x01
	CmdWriteRequest = 0x02 // also used as the dump response
	CmdWriteSuccess = 0x03
	CmdWriteError   = 0x04
)

const (
	// Magic is 'PDSP' read as a little-endian u32.
	Magic   uint32 = 0x50445350
	Version uint32 = 7

	// StorageSize is the raw bank image size before nibble expansion.
	StorageSize = 4096
	headerSize  = 16

	// MaxPresets is the number of records the image can hold.
	MaxPresets = (StorageSize - headerSize) / PresetSize

	// FrameSize is the full SysEx frame length:
	// start + manufacturer + model + command + 2*StorageSize nibbles + end.
	FrameSize = 4 + StorageSize*2 + 1
)

// Storage is an ordered bank of presets. The slice order is the program
// change index.
type Storage struct {
	Presets []Preset
}

// DefaultStorage returns a bank holding a single init patch.
func DefaultStorage() *Storage {
	return &Storage{Presets: []Preset{DefaultPreset()}}
}

// ToSysEx packs the bank into the fixed-size storage image and wraps it in a
// write-request frame. Banks larger than the image capacity are rejected.
func (s *Storage) ToSysEx() ([]byte, error) {
	if len(s.Presets) > MaxPresets {
		return nil, fmt.Errorf("bank holds %d presets, image capacity is %d", len(s.Presets), MaxPresets)
	}

	raw := make([]byte, StorageSize)
	binary.LittleEndian.PutUint32(raw[0:], Magic)
	binary.LittleEndian.PutUint32(raw[4:], Version)
	binary.LittleEndian.PutUint32(raw[8:], uint32(len(s.Presets)))
	binary.LittleEndian.PutUint32(raw[12:], 0) // reserved

	off := headerSize
	for i := range s.Presets {
		copy(raw[off:], s.Presets[i].Bytes())
		off += PresetSize
	}
	// remaining bytes stay zero

	msg := make([]byte, 0, FrameSize)
	msg = append(msg, SysExStart, ManufacturerID, ModelID, CmdWriteRequest)
	msg = appendNibbles(msg, raw)
	msg = append(msg, SysExEnd)
	return msg, nil
}

// StorageFromSysEx validates and unpacks a write-request frame. Any mismatch
// (markers, IDs, command, payload length, magic, preset count) rejects the
// whole frame; no partial bank is ever returned.
func StorageFromSysEx(msg []byte) (*Storage, error) {
	if len(msg) < 5 {
		return nil, fmt.Errorf("frame too short: %d bytes", len(msg))
	}
	if msg[0] != SysExStart || msg[len(msg)-1] != SysExEnd {
		return nil, fmt.Errorf("bad frame markers %02X..%02X", msg[0], msg[len(msg)-1])
	}
	if msg[1] != ManufacturerID || msg[2] != ModelID {
		return nil, fmt.Errorf("unknown device %02X %02X", msg[1], msg[2])
	}
	if msg[3] != CmdWriteRequest {
		return nil, fmt.Errorf("not a write request: command %02X", msg[3])
	}

	payload := msg[4 : len(msg)-1]
	if len(payload) != StorageSize*2 {
		return nil, fmt.Errorf("payload is %d bytes, want %d", len(payload), StorageSize*2)
	}

	raw := joinNibbles(payload)
	if magic := binary.LittleEndian.Uint32(raw[0:]); magic != Magic {
		return nil, fmt.Errorf("bad magic %08X", magic)
	}
	count := binary.LittleEndian.Uint32(raw[8:])
	if count > MaxPresets {
		return nil, fmt.Errorf("preset count %d exceeds image capacity %d", count, MaxPresets)
	}

	s := &Storage{Presets: make([]Preset, 0, count)}
	off := headerSize
	for i := uint32(0); i < count; i++ {
		p, err := PresetFromBytes(raw[off:])
		if err != nil {
			return nil, err
		}
		s.Presets = append(s.Presets, p)
		off += PresetSize
	}
	return s, nil
}

// DumpRequest builds the frame asking the device for its bank.
func DumpRequest() []byte {
	return []byte{SysExStart, ManufacturerID, ModelID, CmdDumpRequest, SysExEnd}
}

// appendNibbles splits each byte into its high and low 4-bit halves,
// doubling the length.
func appendNibbles(dst []byte, src []byte) []byte {
	for _, b := range src {
		dst = append(dst, (b>>4)&0x0F, b&0x0F)
	}
	return dst
}

// joinNibbles is the inverse of appendNibbles. len(src) must be even.
func joinNibbles(src []byte) []byte {
	dst := make([]byte, len(src)/2)
	for i := range dst {
		dst[i] = src[2*i]<<4 | src[2*i+1]&0x0F
	}
	return dst
}
