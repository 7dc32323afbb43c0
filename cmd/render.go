package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/kernel-sim/kernel-sim/sim"
	"github.com/kernel-sim/kernel-sim/sim/buffer"
	"github.com/kernel-sim/kernel-sim/sim/memory"
	"github.com/kernel-sim/kernel-sim/sim/trace"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// renderKeyValues prints a two-column table of labelled figures.
func renderKeyValues(w io.Writer, title string, rows [][]string) {
	table := newTable(w, title, "")
	table.AppendBulk(rows)
	table.Render()
}

func pidLabel(pid int) string {
	return "P" + strconv.Itoa(pid)
}

func percent(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}

func renderProcesses(w io.Writer, s *sim.RoundRobinScheduler) {
	procs := s.Processes()
	if len(procs) == 0 {
		fmt.Fprintln(w, "no processes")
		return
	}
	table := newTable(w, "PID", "State", "Burst", "Remaining", "Wait", "Arrival", "Turnaround")
	for _, p := range procs {
		turnaround := "-"
		if p.Finished {
			turnaround = strconv.FormatInt(p.TurnaroundTime, 10)
		}
		table.Append([]string{
			pidLabel(p.PID),
			string(p.State),
			strconv.FormatInt(p.BurstTime, 10),
			strconv.FormatInt(p.RemainingTime, 10),
			strconv.FormatInt(p.WaitTime, 10),
			strconv.FormatInt(p.ArrivalTime, 10),
			turnaround,
		})
	}
	table.Render()

	running := "idle"
	if pid, ok := s.Running(); ok {
		running = pidLabel(pid)
	}
	queue := make([]string, 0)
	for _, pid := range s.ReadyQueue() {
		queue = append(queue, pidLabel(pid))
	}
	next := "-"
	if pid, ok := s.NextReady(); ok {
		next = pidLabel(pid)
	}
	fmt.Fprintf(w, "t=%d  CPU: %s  ready: [%s]  next: %s\n", s.Clock(), running, strings.Join(queue, " "), next)
}

func renderSchedulerStats(w io.Writer, st sim.SchedulerStats) {
	rows := [][]string{
		{"Clock", strconv.FormatInt(st.Clock, 10)},
		{"Quantum", strconv.FormatInt(st.Quantum, 10)},
		{"Processes", strconv.Itoa(st.TotalProcesses)},
	}
	for _, state := range sim.AllStates {
		rows = append(rows, []string{"  " + string(state), strconv.Itoa(st.CountByState[state])})
	}
	if st.HasCompleted {
		rows = append(rows,
			[]string{"Completed", strconv.Itoa(st.Completed)},
			[]string{"Avg wait", fmt.Sprintf("%.2f", st.AvgWaitTime)},
			[]string{"Avg turnaround", fmt.Sprintf("%.2f", st.AvgTurnaroundTime)},
			[]string{"Max turnaround", fmt.Sprintf("%.0f", st.MaxTurnaroundTime)},
			[]string{"Throughput /1000 ticks", fmt.Sprintf("%.2f", st.ThroughputPerKiloTick)},
		)
	} else {
		rows = append(rows, []string{"Completed", "0 (averages undefined)"})
	}
	renderKeyValues(w, "CPU scheduler", rows)
}

func renderFrames(w io.Writer, m *memory.Manager) {
	table := newTable(w, "Frame", "Status", "PID", "Page", "Loaded at")
	for _, f := range m.Frames() {
		if !f.Occupied {
			table.Append([]string{strconv.Itoa(f.ID), "free", "-", "-", "-"})
			continue
		}
		table.Append([]string{
			strconv.Itoa(f.ID),
			"used",
			pidLabel(f.PID),
			strconv.Itoa(f.Page),
			strconv.FormatInt(f.LoadTime, 10),
		})
	}
	table.Render()

	order := make([]string, 0, m.NumFrames())
	for _, id := range m.EvictionQueue() {
		order = append(order, strconv.Itoa(id))
	}
	fmt.Fprintf(w, "%d frames  t=%d  FIFO order: [%s]\n", m.NumFrames(), m.Clock(), strings.Join(order, " "))
}

func renderPageTable(w io.Writer, pid int, entries []memory.PageTableEntry) {
	if len(entries) == 0 {
		fmt.Fprintf(w, "%s has no pages\n", pidLabel(pid))
		return
	}
	fmt.Fprintf(w, "page table of %s\n", pidLabel(pid))
	table := newTable(w, "Page", "Frame", "Valid")
	for _, e := range entries {
		frame := "-"
		if e.Valid {
			frame = strconv.Itoa(e.Frame)
		}
		table.Append([]string{strconv.Itoa(e.Page), frame, strconv.FormatBool(e.Valid)})
	}
	table.Render()
}

func renderMemoryStats(w io.Writer, st memory.Stats) {
	renderKeyValues(w, "Memory", [][]string{
		{"Frames", strconv.Itoa(st.NumFrames)},
		{"  occupied", strconv.Itoa(st.OccupiedFrames)},
		{"  free", strconv.Itoa(st.FreeFrames)},
		{"Accesses", humanize.Comma(st.TotalAccesses)},
		{"Hits", humanize.Comma(st.Hits)},
		{"Faults", humanize.Comma(st.Faults)},
		{"Hit ratio", percent(st.HitRatio)},
		{"Fault rate", percent(st.FaultRate)},
	})
}

func renderBuffer(w io.Writer, snap buffer.Snapshot) {
	table := newTable(w, "Slot", "Item", "Marker")
	for i := range snap.Slots {
		item := "-"
		if snap.Filled[i] {
			item = strconv.Itoa(snap.Slots[i])
		}
		var markers []string
		if i == snap.In {
			markers = append(markers, "in")
		}
		if i == snap.Out {
			markers = append(markers, "out")
		}
		table.Append([]string{strconv.Itoa(i), item, strings.Join(markers, ",")})
	}
	table.SetFooter([]string{"", "", fmt.Sprintf("%d/%d", snap.Count, snap.Capacity)})
	table.Render()
}

func renderBufferStats(w io.Writer, st buffer.Stats) {
	balance := "ok"
	if !st.Balanced() {
		balance = "MISMATCH"
	}
	renderKeyValues(w, "Producer/consumer", [][]string{
		{"Capacity", strconv.Itoa(st.Capacity)},
		{"Occupancy", strconv.Itoa(st.Occupancy)},
		{"Produced", humanize.Comma(st.Produced)},
		{"Consumed", humanize.Comma(st.Consumed)},
		{"Producer blocks", humanize.Comma(st.ProducerBlocks)},
		{"Consumer blocks", humanize.Comma(st.ConsumerBlocks)},
		{"produced - consumed = occupancy", balance},
	})
}

func renderEvents(w io.Writer, records []trace.Record, summary *trace.Summary) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no events recorded")
		return
	}
	table := newTable(w, "#", "Source", "t", "Event", "PID", "Page", "Frame", "Detail")
	for _, r := range records {
		table.Append([]string{
			strconv.Itoa(r.Seq),
			string(r.Source),
			strconv.FormatInt(r.Clock, 10),
			string(r.Kind),
			optional(r.PID),
			optional(r.Page),
			optional(r.Frame),
			r.Detail,
		})
	}
	table.Render()

	kinds := make([]string, 0, len(summary.ByKind))
	for kind, n := range summary.ByKind {
		kinds = append(kinds, fmt.Sprintf("%s=%s", kind, humanize.Comma(int64(n))))
	}
	sort.Strings(kinds)
	fmt.Fprintf(w, "%s of %s events retained: %s\n",
		humanize.Comma(int64(summary.Retained)), humanize.Comma(int64(summary.Total)), strings.Join(kinds, " "))
}

func optional(v int) string {
	if v < 0 {
		return "-"
	}
	return strconv.Itoa(v)
}
