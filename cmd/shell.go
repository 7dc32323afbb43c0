package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kernel-sim/kernel-sim/sim"
	"github.com/kernel-sim/kernel-sim/sim/buffer"
	"github.com/kernel-sim/kernel-sim/sim/memory"
	"github.com/kernel-sim/kernel-sim/sim/trace"
)

const (
	prompt            = "kernel> "
	defaultEventsTail = 20
)

var (
	errMemoryUninitialized = errors.New("memory not initialized; run mem-init <frames> first")
	errBufferUninitialized = errors.New("buffer not initialized; run pc-init <size> first")
)

// Session owns one scheduler and, once initialized, one memory manager and one
// bounded buffer. All three share a single event log.
type Session struct {
	out       io.Writer
	strict    bool
	events    *trace.EventLog
	scheduler *sim.RoundRobinScheduler
	memory    *memory.Manager       // nil until mem-init
	buffer    *buffer.BoundedBuffer // nil until pc-init
}

// NewSession builds the engines described by cfg. cfg must be valid.
func NewSession(cfg Config, out io.Writer) *Session {
	events := trace.NewEventLog(cfg.Events.Limit)
	s := &Session{
		out:       out,
		strict:    cfg.Memory.Strict,
		events:    events,
		scheduler: sim.NewRoundRobinScheduler(sim.NewSchedulerConfig(cfg.Scheduler.Quantum), events),
	}
	if cfg.Memory.Frames > 0 {
		s.memory = memory.NewManager(memory.NewConfig(cfg.Memory.Frames, s.strict), events)
	}
	if cfg.Buffer.Size > 0 {
		s.buffer = buffer.New(buffer.Config{Size: cfg.Buffer.Size}, events)
	}
	return s
}

// Serve reads commands from in until EOF or exit/quit. Blank lines and lines
// starting with '#' are skipped. A failing command prints "Error: <msg>" and
// the loop continues. With echo set each command is printed after the prompt,
// which is how scripts are replayed; otherwise the prompt is printed before reading.
func (s *Session) Serve(in io.Reader, echo bool) error {
	scanner := bufio.NewScanner(in)
	for {
		if !echo {
			fmt.Fprint(s.out, prompt)
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if echo {
			fmt.Fprintln(s.out, prompt+line)
		}
		quit, err := s.Exec(line)
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
	if !echo {
		fmt.Fprintln(s.out)
	}
	return scanner.Err()
}

// Exec runs a single command line. quit is true for exit and quit.
func (s *Session) Exec(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	if name == "exit" || name == "quit" {
		fmt.Fprintln(s.out, "bye")
		return true, nil
	}
	c, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("unknown command %q (type 'help' for the command list)", fields[0])
	}
	if len(args) < c.minArgs || len(args) > c.maxArgs {
		return false, fmt.Errorf("usage: %s", c.usage)
	}
	logrus.Debugf("exec %s %v", name, args)
	return false, c.run(s, args)
}

type command struct {
	usage   string
	summary string
	minArgs int
	maxArgs int
	run     func(s *Session, args []string) error
}

type commandGroup struct {
	title string
	names []string
}

// commands is filled in init because the help command reads it.
var commands map[string]command

var commandGroups = []commandGroup{
	{"CPU scheduling", []string{"new", "ps", "tick", "run", "kill", "cpu-stats"}},
	{"Memory", []string{"mem-init", "mem-access", "mem-frames", "mem-table", "mem-stats", "mem-reset", "mem-clear"}},
	{"Producer/consumer", []string{"pc-init", "produce", "consume", "pc-buffer", "pc-stats", "pc-reset"}},
	{"General", []string{"events", "help", "clear", "exit"}},
}

func init() {
	commands = map[string]command{
		"new":        {"new <burst>", "create a process with the given CPU burst", 1, 1, cmdNew},
		"ps":         {"ps", "list processes", 0, 0, cmdPs},
		"tick":       {"tick", "advance the scheduler one tick", 0, 0, cmdTick},
		"run":        {"run <n>", "advance the scheduler n ticks", 1, 1, cmdRun},
		"kill":       {"kill <pid>", "terminate a process", 1, 1, cmdKill},
		"cpu-stats":  {"cpu-stats", "scheduler statistics", 0, 0, cmdCPUStats},
		"mem-init":   {"mem-init <frames>", "create a memory manager with n frames", 1, 1, cmdMemInit},
		"mem-access": {"mem-access <pid> <page>", "reference a page of a process", 2, 2, cmdMemAccess},
		"mem-frames": {"mem-frames", "show the frame table", 0, 0, cmdMemFrames},
		"mem-table":  {"mem-table <pid>", "show the page table of a process", 1, 1, cmdMemTable},
		"mem-stats":  {"mem-stats", "memory statistics", 0, 0, cmdMemStats},
		"mem-reset":  {"mem-reset", "zero memory counters, keep resident pages", 0, 0, cmdMemReset},
		"mem-clear":  {"mem-clear", "free every frame and drop all page tables", 0, 0, cmdMemClear},
		"pc-init":    {"pc-init <size>", "create a bounded buffer with n slots", 1, 1, cmdPCInit},
		"produce":    {"produce <item>", "put an item into the buffer", 1, 1, cmdProduce},
		"consume":    {"consume", "take an item from the buffer", 0, 0, cmdConsume},
		"pc-buffer":  {"pc-buffer", "show buffer slots", 0, 0, cmdPCBuffer},
		"pc-stats":   {"pc-stats", "buffer statistics", 0, 0, cmdPCStats},
		"pc-reset":   {"pc-reset", "empty the buffer and zero its counters", 0, 0, cmdPCReset},
		"events":     {"events [n]", fmt.Sprintf("show the last n engine events (default %d)", defaultEventsTail), 0, 1, cmdEvents},
		"help":       {"help", "show this reference", 0, 0, cmdHelp},
		"clear":      {"clear", "clear the screen", 0, 0, cmdClear},
		"exit":       {"exit | quit", "leave the simulator", 0, 0, nil},
	}
}

// parseInt parses args[i] and requires it to be in [lower, upper].
func parseInt(args []string, i int, name string, lower, upper int64) (int64, error) {
	v, err := strconv.ParseInt(args[i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, args[i])
	}
	if v < lower {
		return 0, fmt.Errorf("%s must be >= %d, got %d", name, lower, v)
	}
	if v > upper {
		return 0, fmt.Errorf("%s must be <= %d, got %d", name, upper, v)
	}
	return v, nil
}

func cmdNew(s *Session, args []string) error {
	burst, err := parseInt(args, 0, "burst", 1, math.MaxInt64)
	if err != nil {
		return err
	}
	pid := s.scheduler.CreateProcess(burst)
	fmt.Fprintf(s.out, "[t=%d] process %s created (burst=%d)\n", s.scheduler.Clock(), pidLabel(pid), burst)
	return nil
}

func cmdPs(s *Session, _ []string) error {
	renderProcesses(s.out, s.scheduler)
	return nil
}

func cmdTick(s *Session, _ []string) error {
	s.printTick(s.scheduler.Tick())
	return nil
}

func cmdRun(s *Session, args []string) error {
	n, err := parseInt(args, 0, "n", 1, maxRunTicks)
	if err != nil {
		return err
	}
	s.scheduler.RunFunc(int(n), s.printTick)
	fmt.Fprintf(s.out, "ran %d ticks (t=%d)\n", n, s.scheduler.Clock())
	return nil
}

func (s *Session) printTick(r sim.TickReport) {
	if r.Dispatched != 0 {
		fmt.Fprintf(s.out, "[t=%d] dispatch -> %s\n", r.Clock, pidLabel(r.Dispatched))
	}
	switch {
	case r.Idle():
		fmt.Fprintf(s.out, "[t=%d] CPU idle\n", r.Clock)
	case r.Terminated:
		fmt.Fprintf(s.out, "[t=%d] %s terminated (turnaround=%d)\n", r.Clock, pidLabel(r.Executed), r.Turnaround)
	case r.Preempted:
		fmt.Fprintf(s.out, "[t=%d] %s quantum expired (remaining=%d)\n", r.Clock, pidLabel(r.Executed), r.Remaining)
	default:
		fmt.Fprintf(s.out, "[t=%d] %s running (remaining=%d)\n", r.Clock, pidLabel(r.Executed), r.Remaining)
	}
}

func cmdKill(s *Session, args []string) error {
	pid, err := parseInt(args, 0, "pid", 1, math.MaxInt32)
	if err != nil {
		return err
	}
	if err := s.scheduler.KillProcess(int(pid)); err != nil {
		return err
	}
	p, _ := s.scheduler.Process(int(pid))
	fmt.Fprintf(s.out, "[t=%d] %s killed (remaining=%d, turnaround=%d)\n",
		s.scheduler.Clock(), pidLabel(p.PID), p.RemainingTime, p.TurnaroundTime)
	return nil
}

func cmdCPUStats(s *Session, _ []string) error {
	renderSchedulerStats(s.out, s.scheduler.Stats())
	return nil
}

func cmdMemInit(s *Session, args []string) error {
	frames, err := parseInt(args, 0, "frames", 1, maxFrames)
	if err != nil {
		return err
	}
	s.memory = memory.NewManager(memory.NewConfig(int(frames), s.strict), s.events)
	fmt.Fprintf(s.out, "memory initialized with %d frames\n", frames)
	return nil
}

func (s *Session) requireMemory() (*memory.Manager, error) {
	if s.memory == nil {
		return nil, errMemoryUninitialized
	}
	return s.memory, nil
}

func cmdMemAccess(s *Session, args []string) error {
	m, err := s.requireMemory()
	if err != nil {
		return err
	}
	pid, err := parseInt(args, 0, "pid", 1, math.MaxInt32)
	if err != nil {
		return err
	}
	page, err := parseInt(args, 1, "page", 0, math.MaxInt32)
	if err != nil {
		return err
	}

	r := m.AccessPage(int(pid), int(page))
	if r.Outcome == memory.Hit {
		fmt.Fprintf(s.out, "[HIT] %s page %d -> frame %d\n", pidLabel(int(pid)), page, r.Frame)
		return nil
	}
	if r.Evicted {
		fmt.Fprintf(s.out, "[PAGE FAULT] %s page %d; evicted %s page %d from frame %d (FIFO); loaded into frame %d\n",
			pidLabel(int(pid)), page, pidLabel(r.VictimPID), r.VictimPage, r.VictimFrame, r.Frame)
		return nil
	}
	fmt.Fprintf(s.out, "[PAGE FAULT] %s page %d; loaded into free frame %d\n", pidLabel(int(pid)), page, r.Frame)
	return nil
}

func cmdMemFrames(s *Session, _ []string) error {
	m, err := s.requireMemory()
	if err != nil {
		return err
	}
	renderFrames(s.out, m)
	return nil
}

func cmdMemTable(s *Session, args []string) error {
	m, err := s.requireMemory()
	if err != nil {
		return err
	}
	pid, err := parseInt(args, 0, "pid", 1, math.MaxInt32)
	if err != nil {
		return err
	}
	renderPageTable(s.out, int(pid), m.PageTable(int(pid)))
	return nil
}

func cmdMemStats(s *Session, _ []string) error {
	m, err := s.requireMemory()
	if err != nil {
		return err
	}
	renderMemoryStats(s.out, m.Stats())
	return nil
}

func cmdMemReset(s *Session, _ []string) error {
	m, err := s.requireMemory()
	if err != nil {
		return err
	}
	m.ResetStats()
	fmt.Fprintln(s.out, "memory statistics reset (resident pages kept)")
	return nil
}

func cmdMemClear(s *Session, _ []string) error {
	m, err := s.requireMemory()
	if err != nil {
		return err
	}
	m.Clear()
	fmt.Fprintln(s.out, "memory cleared")
	return nil
}

func cmdPCInit(s *Session, args []string) error {
	size, err := parseInt(args, 0, "size", 1, maxBufferSize)
	if err != nil {
		return err
	}
	s.buffer = buffer.New(buffer.Config{Size: int(size)}, s.events)
	fmt.Fprintf(s.out, "buffer initialized with %d slots\n", size)
	return nil
}

func (s *Session) requireBuffer() (*buffer.BoundedBuffer, error) {
	if s.buffer == nil {
		return nil, errBufferUninitialized
	}
	return s.buffer, nil
}

// cmdProduce reports a full buffer as a blocked producer, not as a failure.
func cmdProduce(s *Session, args []string) error {
	b, err := s.requireBuffer()
	if err != nil {
		return err
	}
	item, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("item must be an integer, got %q", args[0])
	}
	if err := b.Produce(item); err != nil {
		if errors.Is(err, buffer.ErrBufferFull) {
			fmt.Fprintf(s.out, "[PRODUCER] buffer full, blocked (item %d not stored)\n", item)
			return nil
		}
		return err
	}
	st := b.Stats()
	fmt.Fprintf(s.out, "[PRODUCER] item %d produced (buffer: %d/%d)\n", item, st.Occupancy, st.Capacity)
	return nil
}

func cmdConsume(s *Session, _ []string) error {
	b, err := s.requireBuffer()
	if err != nil {
		return err
	}
	item, err := b.Consume()
	if err != nil {
		if errors.Is(err, buffer.ErrBufferEmpty) {
			fmt.Fprintln(s.out, "[CONSUMER] buffer empty, blocked")
			return nil
		}
		return err
	}
	st := b.Stats()
	fmt.Fprintf(s.out, "[CONSUMER] item %d consumed (buffer: %d/%d)\n", item, st.Occupancy, st.Capacity)
	return nil
}

func cmdPCBuffer(s *Session, _ []string) error {
	b, err := s.requireBuffer()
	if err != nil {
		return err
	}
	renderBuffer(s.out, b.Snapshot())
	return nil
}

func cmdPCStats(s *Session, _ []string) error {
	b, err := s.requireBuffer()
	if err != nil {
		return err
	}
	renderBufferStats(s.out, b.Stats())
	return nil
}

func cmdPCReset(s *Session, _ []string) error {
	b, err := s.requireBuffer()
	if err != nil {
		return err
	}
	b.Reset()
	fmt.Fprintln(s.out, "buffer reset")
	return nil
}

func cmdEvents(s *Session, args []string) error {
	n := int64(defaultEventsTail)
	if len(args) == 1 {
		var err error
		if n, err = parseInt(args, 0, "n", 1, math.MaxInt32); err != nil {
			return err
		}
	}
	renderEvents(s.out, s.events.Tail(int(n)), trace.Summarize(s.events))
	return nil
}

func cmdHelp(s *Session, _ []string) error {
	for _, g := range commandGroups {
		fmt.Fprintf(s.out, "%s:\n", g.title)
		for _, name := range g.names {
			c := commands[name]
			fmt.Fprintf(s.out, "  %-26s %s\n", c.usage, c.summary)
		}
	}
	return nil
}

func cmdClear(s *Session, _ []string) error {
	fmt.Fprint(s.out, "\033[H\033[2J")
	return nil
}
