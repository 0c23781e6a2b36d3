package cron

import (
	"github.com/warden-one/warden"
	"github.com/warden-one/warden/codec"
)

// TaskResult is a report of a single asynchronous task execution. It is
// stored using the task ID as the key, so the scheduling caller can look up
// the outcome later.
type TaskResult struct {
	Metadata *warden.Metadata `json:"metadata"`
	// Successful is true if the task was processed without an error.
	Successful bool `json:"successful"`
	// Info contains any additional information about the task execution,
	// for example the failure reason.
	Info string `json:"info,omitempty"`
	// ExecTime is the time when the task was executed.
	ExecTime warden.UnixTime `json:"exec_time"`
	// ExecHeight is the block height at which the task was executed.
	ExecHeight int64 `json:"exec_height"`
}

func (t *TaskResult) GetMetadata() *warden.Metadata {
	return t.Metadata
}

func (t *TaskResult) Marshal() ([]byte, error) {
	return codec.Marshal(t)
}

func (t *TaskResult) Unmarshal(data []byte) error {
	return codec.Unmarshal(data, t)
}
