package tabular

import "sort"

// Drops counts rows discarded during ingestion, keyed by reason.
type Drops map[string]int

// Add increments reason by one.
func (d Drops) Add(reason string) {
	d[reason]++
}

// Merge adds every count of other under prefix+reason.
func (d Drops) Merge(prefix string, other Drops) {
	for reason, count := range other {
		d[prefix+reason] += count
	}
}

// Total sums all reasons.
func (d Drops) Total() int {
	total := 0
	for _, count := range d {
		total += count
	}
	return total
}

// Reasons returns reasons in sorted order.
func (d Drops) Reasons() []string {
	reasons := make([]string, 0, len(d))
	for reason := range d {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	return reasons
}
