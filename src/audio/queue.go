package audio

import (
	"log"

	"github.com/picodsp/picoedit/src/protocol"
)

// ----- Commands ----- //

// Commands travel one way, from the control context to the render context.
// Preset snapshots are carried by value so the render context never shares
// preset memory with the control context.

type noteOnCmd struct {
	freq float64
}
type noteOffCmd struct{}
type continuousUpdateCmd struct {
	portamento float64
}
type rebuildVoiceCmd struct {
	preset protocol.Preset
}

// ----- Command Queue ----- //

const queueCapacity = 16

// commandQueue is the only channel between the control and render contexts.
// Both sides are non-blocking: a full queue drops the command and the render
// side drains whatever is there and moves on.
type commandQueue struct {
	ch chan interface{}
}

func newCommandQueue() *commandQueue {
	return &commandQueue{ch: make(chan interface{}, queueCapacity)}
}

// push never blocks. It reports whether the command was accepted.
func (q *commandQueue) push(cmd interface{}) bool {
	select {
	case q.ch <- cmd:
		return true
	default:
		log.Printf("command queue full, dropping %T\n", cmd)
		return false
	}
}

// pop never blocks. ok is false once the queue is empty.
func (q *commandQueue) pop() (cmd interface{}, ok bool) {
	select {
	case cmd = <-q.ch:
		return cmd, true
	default:
		return nil, false
	}
}
