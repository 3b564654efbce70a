package audio

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi"
	"gitlab.com/gomidi/rtmididrv"

	"github.com/picodsp/picoedit/src/protocol"
)

// ----- MIDI ----- //

// NoteEvent is a decoded note on/off message from the device keyboard.
type NoteEvent struct {
	Note     int
	Velocity int
	On       bool
}

// Midi owns the device connection: one input for notes and SysEx dumps, one
// output for dump requests, bank writes and program changes. Either side may
// be absent; sends then fail with an error and listening is skipped.
type Midi struct {
	drv midi.Driver
	in  midi.In
	out midi.Out

	// Frames carries complete SysEx frames; the transport delivers raw
	// chunks which are reassembled here before protocol decoding.
	Frames chan []byte
	Notes  chan NoteEvent

	mu       sync.Mutex
	sysexBuf []byte
}

// OpenMidi initializes the MIDI driver and connects the first input and
// output ports whose names contain portPattern (case-insensitive).
func OpenMidi(portPattern string) (*Midi, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MIDI driver: %w", err)
	}
	m := &Midi{
		drv:    drv,
		Frames: make(chan []byte, 16),
		Notes:  make(chan NoteEvent, 128),
	}

	pattern := strings.ToLower(portPattern)

	ins, err := drv.Ins()
	if err != nil {
		log.Printf("failed to get MIDI IN ports: %v\n", err)
	}
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), pattern) {
			m.in = in
			break
		}
	}
	outs, err := drv.Outs()
	if err != nil {
		log.Printf("failed to get MIDI OUT ports: %v\n", err)
	}
	for _, out := range outs {
		if strings.Contains(strings.ToLower(out.String()), pattern) {
			m.out = out
			break
		}
	}

	if m.in != nil {
		if err := m.in.Open(); err != nil {
			log.Printf("failed to open MIDI IN: %v\n", err)
			m.in = nil
		} else if err := m.in.SetListener(m.handleMessage); err != nil {
			log.Printf("failed to set MIDI listener: %v\n", err)
		} else {
			log.Println("listening on " + m.in.String())
		}
	}
	if m.out != nil {
		if err := m.out.Open(); err != nil {
			log.Printf("failed to open MIDI OUT: %v\n", err)
			m.out = nil
		} else {
			log.Println("sending to " + m.out.String())
		}
	}
	return m, nil
}

// HasOutput reports whether a device output is connected.
func (m *Midi) HasOutput() bool {
	return m.out != nil
}

// Close stops listening and releases the driver.
func (m *Midi) Close() {
	if m.in != nil {
		if err := m.in.StopListening(); err != nil {
			log.Printf("failed to stop listening: %v\n", err)
		}
	}
	if err := m.drv.Close(); err != nil {
		log.Printf("failed to close MIDI driver: %v\n", err)
	}
	close(m.Frames)
	close(m.Notes)
}

// handleMessage reassembles SysEx chunks into complete frames and decodes
// channel messages. A chunk containing 0xF0 restarts the buffer; the frame
// is complete once a chunk ends in 0xF7.
func (m *Midi) handleMessage(data []byte, deltaMicroseconds int64) {
	if len(data) == 0 {
		return
	}

	if start := bytes.IndexByte(data, protocol.SysExStart); start >= 0 {
		m.mu.Lock()
		m.sysexBuf = append(m.sysexBuf[:0], data[start:]...)
		m.finishSysEx()
		m.mu.Unlock()
		return
	}
	if data[0] < 0x80 {
		// continuation chunk without a status byte
		m.mu.Lock()
		if len(m.sysexBuf) > 0 {
			m.sysexBuf = append(m.sysexBuf, data...)
			m.finishSysEx()
		}
		m.mu.Unlock()
		return
	}

	switch data[0] >> 4 {
	case 0x8:
		if len(data) >= 3 {
			m.pushNote(NoteEvent{Note: int(data[1]), Velocity: int(data[2]), On: false})
		}
	case 0x9:
		if len(data) >= 3 {
			on := data[2] > 0
			m.pushNote(NoteEvent{Note: int(data[1]), Velocity: int(data[2]), On: on})
		}
	}
}

func (m *Midi) finishSysEx() {
	if len(m.sysexBuf) == 0 || m.sysexBuf[len(m.sysexBuf)-1] != protocol.SysExEnd {
		return
	}
	frame := make([]byte, len(m.sysexBuf))
	copy(frame, m.sysexBuf)
	m.sysexBuf = m.sysexBuf[:0]
	select {
	case m.Frames <- frame:
	default:
		log.Println("dropping SysEx frame, consumer too slow")
	}
}

func (m *Midi) pushNote(e NoteEvent) {
	select {
	case m.Notes <- e:
	default:
		log.Println("dropping note event, consumer too slow")
	}
}

// SendDumpRequest asks the device for its preset bank.
func (m *Midi) SendDumpRequest() error {
	if m.out == nil {
		return fmt.Errorf("not connected to MIDI output")
	}
	return m.out.Send(protocol.DumpRequest())
}

// SendStorage transfers a bank to the device as a write-request frame.
func (m *Midi) SendStorage(s *protocol.Storage) error {
	if m.out == nil {
		return fmt.Errorf("not connected to MIDI output")
	}
	msg, err := s.ToSysEx()
	if err != nil {
		return err
	}
	return m.out.Send(msg)
}

// SendProgramChange selects a program on the device.
func (m *Midi) SendProgramChange(program uint8) error {
	if m.out == nil {
		return fmt.Errorf("not connected to MIDI output")
	}
	return m.out.Send([]byte{0xC0, program})
}
