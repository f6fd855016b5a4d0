package services

import "github.com/fr0stylo/mise/internal/app/domain"

// activityQueue is the ordered buffer of pending records. It is not safe for
// concurrent use; ActivityTracker guards it with its own mutex.
type activityQueue struct {
	records []domain.ActivityRecord
	ceiling int
}

func newActivityQueue(ceiling int) *activityQueue {
	return &activityQueue{ceiling: ceiling}
}

func (q *activityQueue) push(record domain.ActivityRecord) int {
	q.records = append(q.records, record)
	return len(q.records)
}

func (q *activityQueue) len() int {
	return len(q.records)
}

// drain returns every queued record and leaves the queue empty.
func (q *activityQueue) drain() []domain.ActivityRecord {
	if len(q.records) == 0 {
		return nil
	}
	batch := q.records
	q.records = nil
	return batch
}

// requeue puts a failed batch back in front of anything admitted since it was
// drained. It refuses when the result would exceed the ceiling.
func (q *activityQueue) requeue(batch []domain.ActivityRecord) bool {
	if len(batch) == 0 {
		return true
	}
	if len(batch)+len(q.records) > q.ceiling {
		return false
	}
	merged := make([]domain.ActivityRecord, 0, len(batch)+len(q.records))
	merged = append(merged, batch...)
	merged = append(merged, q.records...)
	q.records = merged
	return true
}

// reset drops everything queued and returns how many records were discarded.
func (q *activityQueue) reset() int {
	n := len(q.records)
	q.records = nil
	return n
}
