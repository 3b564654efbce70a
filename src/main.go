package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/picodsp/picoedit/src/audio"
	"github.com/picodsp/picoedit/src/protocol"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// ----- Config ----- //

type config struct {
	Socket   string `yaml:"socket"`
	MidiPort string `yaml:"midi_port"`
	BankFile string `yaml:"bank_file"`
}

func defaultConfig() config {
	return config{
		Socket:   "/tmp/picoedit.sock",
		MidiPort: "picodsp",
	}
}

func loadConfig(path string) (config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return c, nil
}

// ----- Main ----- //

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	socketPath := flag.String("socket", "", "unix socket path (overrides config)")
	midiPort := flag.String("midi", "", "MIDI port name pattern (overrides config)")
	bankFile := flag.String("bank", "", "bank file to load at startup (overrides config)")
	flag.Parse()
	log.SetFlags(log.Lshortfile)
	log.Printf("NumCPU: %v\n", runtime.NumCPU())

	conf, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	if *socketPath != "" {
		conf.Socket = *socketPath
	}
	if *midiPort != "" {
		conf.MidiPort = *midiPort
	}
	if *bankFile != "" {
		conf.BankFile = *bankFile
	}

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	engine, err := audio.NewEngine()
	if err != nil {
		log.Printf("audio disabled: %v\n", err)
		engine = nil
	} else {
		defer engine.Close()
	}

	m, err := audio.OpenMidi(conf.MidiPort)
	if err != nil {
		log.Printf("midi disabled: %v\n", err)
		m = nil
	} else {
		defer m.Close()
	}

	e := newEditor(engine, m)
	if conf.BankFile != "" {
		if err := e.loadBank(conf.BankFile); err != nil {
			log.Printf("cannot load bank: %v\n", err)
		}
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, os.Kill, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		sig := <-signalCh
		log.Printf("Caught signal %s: shutting down...\n", sig)
		cancel()
	}()
	err = withIPCConnection(ctx, conf.Socket, func(conn net.Conn) error {
		g, ctx := errgroup.WithContext(ctx)
		if engine != nil {
			g.Go(func() error {
				return engine.Start(ctx)
			})
		}
		g.Go(func() error {
			return receiveCommands(ctx, conn, e)
		})
		g.Go(func() error {
			return sendReports(ctx, conn, e)
		})
		if m != nil {
			g.Go(func() error {
				return receiveMidi(ctx, m, e)
			})
		}
		return g.Wait()
	})
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("main() ended.")
}

func withIPCConnection(ctx context.Context, sockFileName string, f func(net.Conn) error) error {
	os.Remove(sockFileName)
	listener, err := new(net.ListenConfig).Listen(ctx, "unix", sockFileName)
	if err != nil {
		return err
	}
	defer func() {
		log.Println("Closeing IPC...")
		err := listener.Close()
		if err != nil {
			log.Printf("error while closing listener: %v", err)
		}
		os.Remove(sockFileName)
	}()
	log.Printf("start listening...\n")
	conn, err := listener.Accept()
	if err != nil {
		return err
	}
	defer func() {
		err := conn.Close()
		if err != nil {
			log.Printf("error while closing connection: %v", err)
		}
	}()
	return f(conn)
}

// ----- IPC ----- //

func receiveCommands(ctx context.Context, conn net.Conn, e *editor) error {
	reader := bufio.NewReader(conn)
	var line []byte
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("Connection interrupted")
			break loop
		default:
		}
		next, isPrefix, err := reader.ReadLine()
		if err == io.EOF {
			break loop
		}
		if err != nil {
			return err
		}
		line = append(line, next...)
		if isPrefix {
			continue
		}
		command, err := parseCommand(string(line))
		if err != nil {
			return err
		}
		log.Printf("received: %s\n", string(line))
		e.handleCommand(command)
		line = []byte{}
	}
	log.Println("receiveCommands() ended.")
	return nil
}

func parseCommand(line string) ([]string, error) {
	lineStr := strings.Split(line, " ")
	for i, item := range lineStr {
		escaped, err := url.QueryUnescape(item)
		if err != nil {
			return nil, err
		}
		lineStr[i] = escaped
	}
	return lineStr, nil
}

func sendReports(ctx context.Context, conn net.Conn, e *editor) error {
	t := time.NewTicker(time.Second / 60)
	defer t.Stop()
	lastStatus := ""
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("sendReports() interrupted")
			break loop
		case <-t.C:
			var lines []string
			if status := e.Status(); status != lastStatus {
				lastStatus = status
				lines = append(lines, "status "+url.QueryEscape(status))
			}
			if spectrum := e.Spectrum(); spectrum != nil {
				s := "fft"
				for _, value := range spectrum {
					s += " " + strconv.FormatFloat(value, 'f', 6, 64)
				}
				lines = append(lines, s)
			}
			for _, s := range lines {
				select {
				case <-ctx.Done():
					log.Println("sendReports() interrupted")
					break loop
				default:
					conn.Write([]byte(s + "\n"))
				}
			}
		}
	}
	log.Println("sendReports() ended.")
	return nil
}

func receiveMidi(ctx context.Context, m *audio.Midi, e *editor) error {
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case frame, ok := <-m.Frames:
			if !ok {
				break loop
			}
			e.handleFrame(frame)
		case note, ok := <-m.Notes:
			if !ok {
				break loop
			}
			e.handleNote(note)
		}
	}
	log.Println("receiveMidi() ended.")
	return nil
}

// ----- Editor ----- //

// editor owns the preset bank and routes commands between the IPC surface,
// the MIDI device and the audio engine. Engine and MIDI may be nil; the
// editor keeps working with whatever is connected.
type editor struct {
	mu      sync.Mutex
	bank    *protocol.Storage
	program int
	status  string
	engine  *audio.Engine
	midi    *audio.Midi
}

func newEditor(engine *audio.Engine, m *audio.Midi) *editor {
	e := &editor{
		bank:   protocol.DefaultStorage(),
		engine: engine,
		midi:   m,
	}
	e.pushToEngine()
	return e
}

func (e *editor) Status() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *editor) Spectrum() []float64 {
	if e.engine == nil {
		return nil
	}
	return e.engine.Spectrum()
}

func (e *editor) setStatus(format string, args ...interface{}) {
	e.mu.Lock()
	e.status = fmt.Sprintf(format, args...)
	e.mu.Unlock()
	log.Printf("status: %s\n", fmt.Sprintf(format, args...))
}

func (e *editor) handleCommand(command []string) {
	if len(command) == 0 {
		return
	}
	switch command[0] {
	case "note_on":
		if len(command) != 2 {
			e.setStatus("usage: note_on <note>")
			return
		}
		note, err := strconv.Atoi(command[1])
		if err != nil {
			e.setStatus("invalid note: %v", err)
			return
		}
		if e.engine != nil {
			e.engine.NoteOn(note)
		}
	case "note_off":
		if e.engine != nil {
			e.engine.NoteOff()
		}
	case "set":
		if len(command) != 4 {
			e.setStatus("usage: set <section> <key> <value>")
			return
		}
		e.setParam(command[1], command[2], command[3])
	case "select":
		if len(command) != 2 {
			e.setStatus("usage: select <program>")
			return
		}
		n, err := strconv.Atoi(command[1])
		if err != nil {
			e.setStatus("invalid program: %v", err)
			return
		}
		e.selectProgram(n)
	case "load":
		if len(command) != 2 {
			e.setStatus("usage: load <file>")
			return
		}
		if err := e.loadBank(command[1]); err != nil {
			e.setStatus("load failed: %v", err)
		}
	case "save":
		if len(command) != 2 {
			e.setStatus("usage: save <file>")
			return
		}
		if err := e.saveBank(command[1]); err != nil {
			e.setStatus("save failed: %v", err)
		}
	case "dump":
		if e.midi == nil || !e.midi.HasOutput() {
			e.setStatus("no MIDI output connected")
			return
		}
		if err := e.midi.SendDumpRequest(); err != nil {
			e.setStatus("dump request failed: %v", err)
			return
		}
		e.setStatus("dump requested")
	case "send":
		e.sendBank()
	case "status":
		e.mu.Lock()
		count := len(e.bank.Presets)
		program := e.program
		name := ""
		if program < count {
			name = e.bank.Presets[program].Name
		}
		e.mu.Unlock()
		e.setStatus("program %d of %d: %s", program, count, name)
	default:
		e.setStatus("unknown command %q", command[0])
	}
}

func (e *editor) setParam(section, key, value string) {
	e.mu.Lock()
	if len(e.bank.Presets) == 0 {
		e.mu.Unlock()
		e.setStatus("bank is empty")
		return
	}
	p := &e.bank.Presets[e.program]
	err := p.Set(section, key, value)
	updated := *p
	e.mu.Unlock()
	if err != nil {
		e.setStatus("set failed: %v", err)
		return
	}
	if e.engine != nil {
		e.engine.UpdatePreset(updated)
	}
}

func (e *editor) selectProgram(n int) {
	e.mu.Lock()
	if n < 0 || n >= len(e.bank.Presets) {
		count := len(e.bank.Presets)
		e.mu.Unlock()
		e.setStatus("program %d out of range (bank has %d)", n, count)
		return
	}
	e.program = n
	selected := e.bank.Presets[n]
	e.mu.Unlock()
	if e.engine != nil {
		e.engine.UpdatePreset(selected)
	}
	if e.midi != nil && e.midi.HasOutput() {
		if err := e.midi.SendProgramChange(uint8(n)); err != nil {
			log.Printf("program change failed: %v\n", err)
		}
	}
	e.setStatus("program %d: %s", n, selected.Name)
}

func (e *editor) loadBank(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	bank, err := protocol.StorageFromSysEx(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	e.replaceBank(bank)
	e.setStatus("loaded %d presets from %s", len(bank.Presets), path)
	return nil
}

func (e *editor) saveBank(path string) error {
	e.mu.Lock()
	bank := e.bank
	e.mu.Unlock()
	msg, err := bank.ToSysEx()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, msg, 0644); err != nil {
		return err
	}
	e.setStatus("saved %d presets to %s", len(bank.Presets), path)
	return nil
}

func (e *editor) sendBank() {
	if e.midi == nil || !e.midi.HasOutput() {
		e.setStatus("no MIDI output connected")
		return
	}
	e.mu.Lock()
	bank := e.bank
	e.mu.Unlock()
	if err := e.midi.SendStorage(bank); err != nil {
		e.setStatus("send failed: %v", err)
		return
	}
	e.setStatus("sent %d presets to device", len(bank.Presets))
}

func (e *editor) replaceBank(bank *protocol.Storage) {
	e.mu.Lock()
	e.bank = bank
	if e.program >= len(bank.Presets) {
		e.program = 0
	}
	e.mu.Unlock()
	e.pushToEngine()
}

func (e *editor) pushToEngine() {
	if e.engine == nil {
		return
	}
	e.mu.Lock()
	if len(e.bank.Presets) == 0 {
		e.mu.Unlock()
		return
	}
	p := e.bank.Presets[e.program]
	e.mu.Unlock()
	e.engine.UpdatePreset(p)
}

// handleFrame dispatches one complete SysEx frame received from the device.
// A dump response replaces the bank wholesale; a malformed frame only sets
// the status and leaves the bank untouched.
func (e *editor) handleFrame(frame []byte) {
	if len(frame) < 5 {
		e.setStatus("short SysEx frame (%d bytes)", len(frame))
		return
	}
	if frame[1] != protocol.ManufacturerID || frame[2] != protocol.ModelID {
		// another device on the same port; not ours to report
		log.Printf("ignoring SysEx from %02X %02X\n", frame[1], frame[2])
		return
	}
	switch frame[3] {
	case protocol.CmdWriteRequest:
		bank, err := protocol.StorageFromSysEx(frame)
		if err != nil {
			e.setStatus("bad dump from device: %v", err)
			return
		}
		e.replaceBank(bank)
		e.setStatus("received %d presets from device", len(bank.Presets))
	case protocol.CmdWriteSuccess:
		e.setStatus("device write ok")
	case protocol.CmdWriteError:
		code := frame[4]
		e.setStatus("device write failed (code %d)", code)
	default:
		e.setStatus("unexpected SysEx command 0x%02X", frame[3])
	}
}

func (e *editor) handleNote(note audio.NoteEvent) {
	if e.engine == nil {
		return
	}
	if note.On {
		e.engine.NoteOn(note.Note)
	} else {
		e.engine.NoteOff()
	}
}
