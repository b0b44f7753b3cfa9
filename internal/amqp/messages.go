package amqp

import (
	"encoding/json"
	"time"
)

// RunCompletedMessage announces a finished reconciliation run. Consumers
// fetch details from the run history by RunID.
type RunCompletedMessage struct {
	RunID        string    `json:"run_id"`
	Source       string    `json:"source"`
	Items        int       `json:"items"`
	Amount       int64     `json:"amount"`
	Tax          int64     `json:"tax"`
	BudgetTotal  int64     `json:"budget_total"`
	Valid        bool      `json:"is_valid"`
	FindingCount int       `json:"error_count"`
	ReviewCount  int       `json:"review_count"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewRunCompletedMessage stamps the message with the current time.
func NewRunCompletedMessage(runID string) *RunCompletedMessage {
	return &RunCompletedMessage{RunID: runID, Timestamp: time.Now()}
}

func (m *RunCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RunCompletedMessageFromJSON(data []byte) (*RunCompletedMessage, error) {
	var msg RunCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
