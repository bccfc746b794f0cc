package observability

import (
	"sync/atomic"
	"time"
)

// JobOutcome is how a claimed job left the worker. String values double as
// the Prometheus "result" label.
type JobOutcome int

const (
	JobDone JobOutcome = iota
	JobRetried
	JobDeadLettered
	numJobOutcomes
)

func (o JobOutcome) String() string {
	switch o {
	case JobDone:
		return "done"
	case JobRetried:
		return "retry"
	case JobDeadLettered:
		return "failed"
	}
	return "unknown"
}

// JobMetrics keeps the worker's own counters for /stats, independent of
// whether a Prometheus registry is scraped.
type JobMetrics struct {
	claimed  atomic.Uint64
	outcomes [numJobOutcomes]atomic.Uint64

	finished atomic.Uint64
	totalNs  atomic.Int64
	maxNs    atomic.Int64
}

func NewJobMetrics() *JobMetrics {
	return &JobMetrics{}
}

func (m *JobMetrics) Claimed() {
	m.claimed.Add(1)
}

// Finished records the outcome of one claimed job and how long it ran.
func (m *JobMetrics) Finished(o JobOutcome, d time.Duration) {
	if o >= 0 && o < numJobOutcomes {
		m.outcomes[o].Add(1)
	}

	ns := d.Nanoseconds()
	m.finished.Add(1)
	m.totalNs.Add(ns)

	for {
		curr := m.maxNs.Load()
		if ns <= curr || m.maxNs.CompareAndSwap(curr, ns) {
			return
		}
	}
}

// JobMetricsSnapshot is served on the worker's /stats endpoint. Failed
// counts every failed attempt, retried or not.
type JobMetricsSnapshot struct {
	Claimed         uint64        `json:"claimed"`
	Done            uint64        `json:"done"`
	Failed          uint64        `json:"failed"`
	Retried         uint64        `json:"retried"`
	DeadLettered    uint64        `json:"deadLettered"`
	DurationCount   uint64        `json:"durationCount"`
	AverageDuration time.Duration `json:"-"`
	MaxDuration     time.Duration `json:"-"`
	AverageMillis   float64       `json:"avgDurationMs"`
	MaxMillis       float64       `json:"maxDurationMs"`
}

func (m *JobMetrics) Snapshot() JobMetricsSnapshot {
	s := JobMetricsSnapshot{
		Claimed:       m.claimed.Load(),
		Done:          m.outcomes[JobDone].Load(),
		Retried:       m.outcomes[JobRetried].Load(),
		DeadLettered:  m.outcomes[JobDeadLettered].Load(),
		DurationCount: m.finished.Load(),
		MaxDuration:   time.Duration(m.maxNs.Load()),
	}
	s.Failed = s.Retried + s.DeadLettered

	if s.DurationCount > 0 {
		s.AverageDuration = time.Duration(m.totalNs.Load() / int64(s.DurationCount))
	}
	s.AverageMillis = float64(s.AverageDuration) / float64(time.Millisecond)
	s.MaxMillis = float64(s.MaxDuration) / float64(time.Millisecond)

	return s
}
