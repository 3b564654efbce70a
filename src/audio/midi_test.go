package audio

import (
	"bytes"
	"testing"

	"github.com/picodsp/picoedit/src/protocol"
)

func testMidi() *Midi {
	return &Midi{
		Frames: make(chan []byte, 16),
		Notes:  make(chan NoteEvent, 128),
	}
}

func TestHandleMessageNotes(t *testing.T) {
	m := testMidi()
	m.handleMessage([]byte{0x90, 60, 100}, 0)
	m.handleMessage([]byte{0x90, 60, 0}, 0) // velocity 0 is note off
	m.handleMessage([]byte{0x80, 60, 0}, 0)

	expectEqual(t, <-m.Notes, NoteEvent{Note: 60, Velocity: 100, On: true})
	expectEqual(t, <-m.Notes, NoteEvent{Note: 60, Velocity: 0, On: false})
	expectEqual(t, <-m.Notes, NoteEvent{Note: 60, Velocity: 0, On: false})
}

func TestHandleMessageSingleChunkSysEx(t *testing.T) {
	m := testMidi()
	frame, err := protocol.DefaultStorage().ToSysEx()
	expectNoError(t, err)

	m.handleMessage(frame, 0)
	got := <-m.Frames
	if !bytes.Equal(got, frame) {
		t.Errorf("reassembled frame differs from the sent one")
	}
}

func TestHandleMessageChunkedSysEx(t *testing.T) {
	m := testMidi()
	frame, err := protocol.DefaultStorage().ToSysEx()
	expectNoError(t, err)

	// transports commonly split large SysEx into arbitrary chunks
	for off := 0; off < len(frame); off += 1000 {
		end := off + 1000
		if end > len(frame) {
			end = len(frame)
		}
		m.handleMessage(frame[off:end], 0)
	}
	got := <-m.Frames
	if !bytes.Equal(got, frame) {
		t.Errorf("reassembled frame differs from the sent one")
	}
	select {
	case extra := <-m.Frames:
		t.Errorf("unexpected extra frame of %d bytes", len(extra))
	default:
	}
}

func TestHandleMessageRestartsOnNewStart(t *testing.T) {
	m := testMidi()
	// an aborted transfer, then a complete short frame
	m.handleMessage([]byte{protocol.SysExStart, 0x7D, 0x01, 0x02, 0x00}, 0)
	ack := []byte{protocol.SysExStart, 0x7D, 0x01, protocol.CmdWriteSuccess, protocol.SysExEnd}
	m.handleMessage(ack, 0)

	got := <-m.Frames
	if !bytes.Equal(got, ack) {
		t.Errorf("expected the second frame only, got %X", got)
	}
}

func TestHandleMessageIgnoresStrayContinuation(t *testing.T) {
	m := testMidi()
	m.handleMessage([]byte{0x01, 0x02, 0x03}, 0)
	select {
	case got := <-m.Frames:
		t.Errorf("unexpected frame %X", got)
	default:
	}
}

func TestSendWithoutOutput(t *testing.T) {
	m := testMidi()
	if err := m.SendDumpRequest(); err == nil {
		t.Errorf("expected an error without an output port")
	}
	if err := m.SendStorage(protocol.DefaultStorage()); err == nil {
		t.Errorf("expected an error without an output port")
	}
	if err := m.SendProgramChange(3); err == nil {
		t.Errorf("expected an error without an output port")
	}
}
