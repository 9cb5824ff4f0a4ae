package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"bankpivot/internal/core"
)

// ReportGeneratedMessage announces a finished run and where its artifacts went.
// Amounts are exact decimal strings.
type ReportGeneratedMessage struct {
	RunID      string    `json:"run_id"`
	Source     string    `json:"source"`
	Categories int       `json:"categories"`
	Income     string    `json:"income"`
	Outcome    string    `json:"outcome"`
	Balance    string    `json:"balance"`
	Artifacts  []string  `json:"artifacts"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewReportGeneratedMessage builds the message for a run.
func NewReportGeneratedMessage(run core.Run, artifacts []string) *ReportGeneratedMessage {
	if artifacts == nil {
		artifacts = []string{}
	}
	return &ReportGeneratedMessage{
		RunID:      run.ID,
		Source:     run.Source,
		Categories: len(run.Categories),
		Income:     core.RoundCents(run.Totals.Income),
		Outcome:    core.RoundCents(run.Totals.Outcome),
		Balance:    core.RoundCents(run.Totals.Balance()),
		Artifacts:  artifacts,
		Timestamp:  time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportGeneratedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportGeneratedMessageFromJSON decodes a message and checks it names a run.
func ReportGeneratedMessageFromJSON(data []byte) (*ReportGeneratedMessage, error) {
	var msg ReportGeneratedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.RunID == "" {
		return nil, fmt.Errorf("message without run_id: %w", core.ErrEmptyRunID)
	}
	return &msg, nil
}
