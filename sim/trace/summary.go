package trace

// Summary aggregates statistics from an EventLog.
type Summary struct {
	Retained int
	Total    int
	BySource map[Source]int
	ByKind   map[Kind]int
}

// Summarize computes aggregate counts from the retained records of an EventLog.
// Safe for nil or empty logs (returns zero-value fields).
func Summarize(el *EventLog) *Summary {
	summary := &Summary{
		BySource: make(map[Source]int),
		ByKind:   make(map[Kind]int),
	}
	if el == nil {
		return summary
	}

	records := el.Records()
	summary.Retained = len(records)
	summary.Total = el.Total()
	for _, r := range records {
		summary.BySource[r.Source]++
		summary.ByKind[r.Kind]++
	}
	return summary
}
