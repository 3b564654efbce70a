package main

import (
	"testing"

	"github.com/picodsp/picoedit/src/protocol"
)

func expectEqual(t *testing.T, actual, expected interface{}) {
	t.Helper()
	if actual != expected {
		t.Errorf("expected %v, but got: %v", expected, actual)
	}
}

func TestHandleFrameIgnoresForeignDevices(t *testing.T) {
	e := newEditor(nil, nil)
	e.setStatus("ready")

	// a Roland-flavored ack must not touch the status line
	e.handleFrame([]byte{protocol.SysExStart, 0x41, 0x01, protocol.CmdWriteSuccess, protocol.SysExEnd})
	expectEqual(t, e.Status(), "ready")
	e.handleFrame([]byte{protocol.SysExStart, protocol.ManufacturerID, 0x7F, protocol.CmdWriteSuccess, protocol.SysExEnd})
	expectEqual(t, e.Status(), "ready")

	e.handleFrame([]byte{protocol.SysExStart, protocol.ManufacturerID, protocol.ModelID, protocol.CmdWriteSuccess, protocol.SysExEnd})
	expectEqual(t, e.Status(), "device write ok")
}

func TestHandleFrameWriteError(t *testing.T) {
	e := newEditor(nil, nil)
	e.handleFrame([]byte{protocol.SysExStart, protocol.ManufacturerID, protocol.ModelID, protocol.CmdWriteError, 3, protocol.SysExEnd})
	expectEqual(t, e.Status(), "device write failed (code 3)")
}

func TestHandleFrameReplacesBank(t *testing.T) {
	e := newEditor(nil, nil)
	s := &protocol.Storage{}
	for i := 0; i < 3; i++ {
		s.Presets = append(s.Presets, protocol.DefaultPreset())
	}
	frame, err := s.ToSysEx()
	if err != nil {
		t.Fatalf("expected no error, but got: %v", err)
	}
	e.handleFrame(frame)
	expectEqual(t, len(e.bank.Presets), 3)

	// a corrupt frame leaves the bank untouched
	frame[4] = 0x0F
	e.handleFrame(frame)
	expectEqual(t, len(e.bank.Presets), 3)
}
