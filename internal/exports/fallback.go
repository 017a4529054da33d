package exports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// JournalEntry is an export request parked in Redis because the primary
// store rejected or could not take the write. Entries keep the exact shape
// of the request plus a generated ref so a replay cannot double-insert.
type JournalEntry struct {
	Ref        string    `json:"ref"`
	EmpID      int64     `json:"emp_id"`
	ExportDate time.Time `json:"export_date"`
	Status     Status    `json:"status"`
	Lines      []Line    `json:"items"`
	QueuedAt   time.Time `json:"queued_at"`
}

// Journal is the explicit fallback store for export creation. Unlike the
// silent local mirror it replaces, queued entries are visible (Pending) and
// drained back into the primary store by the reconcile job.
type Journal struct {
	client *redis.Client
	key    string
}

// NewJournal constructs a Journal on the given Redis list key.
func NewJournal(client *redis.Client, key string) *Journal {
	return &Journal{client: client, key: key}
}

// Push parks a failed export request and returns the generated ref.
func (j *Journal) Push(ctx context.Context, exp Export) (JournalEntry, error) {
	entry := JournalEntry{
		Ref:        uuid.NewString(),
		EmpID:      exp.EmpID,
		ExportDate: exp.ExportDate,
		Status:     StatusPending,
		Lines:      exp.Lines,
		QueuedAt:   time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return JournalEntry{}, err
	}
	if err := j.client.RPush(ctx, j.key, data).Err(); err != nil {
		return JournalEntry{}, err
	}
	return entry, nil
}

// Pending lists queued entries without consuming them.
func (j *Journal) Pending(ctx context.Context) ([]JournalEntry, error) {
	raw, err := j.client.LRange(ctx, j.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]JournalEntry, 0, len(raw))
	for _, item := range raw {
		var entry JournalEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Pop removes and returns the oldest entry. The bool is false when the
// journal is empty.
func (j *Journal) Pop(ctx context.Context) (JournalEntry, bool, error) {
	raw, err := j.client.LPop(ctx, j.key).Result()
	if err != nil {
		if err == redis.Nil {
			return JournalEntry{}, false, nil
		}
		return JournalEntry{}, false, err
	}
	var entry JournalEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		// Unreadable entries are dropped rather than wedging the queue.
		return JournalEntry{}, false, err
	}
	return entry, true, nil
}

// Requeue puts an entry back at the queue tail after a failed replay.
func (j *Journal) Requeue(ctx context.Context, entry JournalEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return j.client.RPush(ctx, j.key, data).Err()
}

// DeadLetter parks an entry the store keeps rejecting on a side list for
// operator review, so one poison entry cannot wedge the queue.
func (j *Journal) DeadLetter(ctx context.Context, entry JournalEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return j.client.RPush(ctx, j.deadKey(), data).Err()
}

// DeadLettered lists parked entries without consuming them.
func (j *Journal) DeadLettered(ctx context.Context) ([]JournalEntry, error) {
	raw, err := j.client.LRange(ctx, j.deadKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]JournalEntry, 0, len(raw))
	for _, item := range raw {
		var entry JournalEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Len reports the number of queued entries.
func (j *Journal) Len(ctx context.Context) (int64, error) {
	return j.client.LLen(ctx, j.key).Result()
}

func (j *Journal) deadKey() string {
	return j.key + ":dead"
}
