package db

import (
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"time"
)

// latencyWindow is how many recent samples each operation keeps.
const latencyWindow = 512

// QueryLatency summarizes recent samples for one named operation. Rows is the
// number of rows written over the window; for batch appends it is the sum of
// batch sizes, so Rows/Count is the average flushed batch.
type QueryLatency struct {
	Name  string
	Count int
	Rows  int64
	P50   time.Duration
	P95   time.Duration
	Max   time.Duration
}

// AvgRows is the mean rows written per sample.
func (q QueryLatency) AvgRows() float64 {
	if q.Count == 0 {
		return 0
	}
	return float64(q.Rows) / float64(q.Count)
}

func (q QueryLatency) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name    string  `json:"name"`
		Count   int     `json:"count"`
		Rows    int64   `json:"rows"`
		AvgRows float64 `json:"avg_rows"`
		P50MS   float64 `json:"p50_ms"`
		P95MS   float64 `json:"p95_ms"`
		MaxMS   float64 `json:"max_ms"`
	}{
		Name:    q.Name,
		Count:   q.Count,
		Rows:    q.Rows,
		AvgRows: q.AvgRows(),
		P50MS:   millis(q.P50),
		P95MS:   millis(q.P95),
		MaxMS:   millis(q.Max),
	})
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

type latencySample struct {
	took time.Duration
	rows int64
}

// latencyRecorder keeps a sliding window of samples per operation.
type latencyRecorder struct {
	mu      sync.Mutex
	windows map[string][]latencySample
}

func newLatencyRecorder() *latencyRecorder {
	return &latencyRecorder{windows: make(map[string][]latencySample)}
}

func (r *latencyRecorder) observe(name string, took time.Duration, rows int64) {
	if r == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = unknownQuery
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	window := append(r.windows[name], latencySample{took: took, rows: max(rows, 0)})
	if len(window) > latencyWindow {
		window = window[len(window)-latencyWindow:]
	}
	r.windows[name] = window
}

// snapshot returns one summary per operation, slowest p95 first.
func (r *latencyRecorder) snapshot() []QueryLatency {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]QueryLatency, 0, len(r.windows))
	for name, window := range r.windows {
		if len(window) == 0 {
			continue
		}
		durations := make([]time.Duration, len(window))
		var rows int64
		for i, sample := range window {
			durations[i] = sample.took
			rows += sample.rows
		}
		slices.Sort(durations)
		last := len(durations) - 1
		out = append(out, QueryLatency{
			Name:  name,
			Count: len(durations),
			Rows:  rows,
			P50:   durations[last/2],
			P95:   durations[int(float64(last)*0.95)],
			Max:   durations[last],
		})
	}

	slices.SortFunc(out, func(a, b QueryLatency) int {
		if a.P95 != b.P95 {
			if a.P95 > b.P95 {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// QueryLatencyStats reports recent latency per sqlc query and per appended batch.
func (c *Database) QueryLatencyStats() []QueryLatency {
	if c == nil {
		return nil
	}
	return c.latency.snapshot()
}
