package amqp

import (
	"encoding/json"
	"time"
)

// LedgerSyncMessage signals that the local ledger changed and the mirror
// should catch up. Seq is the sequence length after the write; the
// consumer re-reads the whole ledger, so a lost or reordered message
// only delays the mirror.
type LedgerSyncMessage struct {
	Seq       int64     `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerSyncMessage(seq int64) *LedgerSyncMessage {
	return &LedgerSyncMessage{
		Seq:       seq,
		Timestamp: time.Now(),
	}
}

func (m *LedgerSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerSyncMessageFromJSON(data []byte) (*LedgerSyncMessage, error) {
	var m LedgerSyncMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
