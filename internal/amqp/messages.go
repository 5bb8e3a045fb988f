package amqp

import (
	"encoding/json"
	"time"
)

// ChangeKind identifies which ledger mutation a change event reports.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// ChangeEvent is a lightweight notification that a ledger entry changed.
// It carries only the entry ID and the affected calendar day; consumers
// fetch the full entry from the ledger if they need it.
type ChangeEvent struct {
	Kind      ChangeKind `json:"kind"`
	ID        int64      `json:"id"`
	Date      string     `json:"date"`
	Timestamp time.Time  `json:"timestamp"`
}

func NewChangeEvent(kind ChangeKind, id int64, date string) *ChangeEvent {
	return &ChangeEvent{
		Kind:      kind,
		ID:        id,
		Date:      date,
		Timestamp: time.Now(),
	}
}

func (e *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var event ChangeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
