package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypePayloadArchive JobType = "payload_archive"
	JobTypeLedgerPrune    JobType = "ledger_prune"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// MarkAsProcessing flags the job as picked up by a worker
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.ProcessedAt = &now
	j.UpdatedAt = now
}

// MarkAsCompleted flags the job as done
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkAsFailed records the failure reason
func (j *Job) MarkAsFailed(msg string) {
	j.Status = JobStatusFailed
	j.ErrorMsg = msg
	j.UpdatedAt = time.Now()
}

// MarkAsRetrying bumps the retry counter
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.RetryCount++
	j.UpdatedAt = time.Now()
}

// IsRetryable reports whether the job may be re-enqueued
func (j *Job) IsRetryable() bool {
	return j.RetryCount < j.MaxRetries
}

// PayloadArchiveJobPayload contains the payload for archive jobs
type PayloadArchiveJobPayload struct {
	LedgerID uint   `json:"ledger_id"`
	Provider string `json:"provider"`
	EventID  string `json:"event_id"`
}

// ToMap converts the payload to a map for storage
func (p PayloadArchiveJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"ledger_id": p.LedgerID,
		"provider":  p.Provider,
		"event_id":  p.EventID,
	}
}

// PayloadArchiveJobPayloadFromMap creates a payload from a map
func PayloadArchiveJobPayloadFromMap(data map[string]interface{}) (*PayloadArchiveJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload PayloadArchiveJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// LedgerPruneJobPayload contains the payload for ledger prune jobs
type LedgerPruneJobPayload struct {
	RetentionDays int `json:"retention_days"`
}

// ToMap converts the payload to a map for storage
func (p LedgerPruneJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"retention_days": p.RetentionDays,
	}
}

// LedgerPruneJobPayloadFromMap creates a payload from a map
func LedgerPruneJobPayloadFromMap(data map[string]interface{}) (*LedgerPruneJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload LedgerPruneJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}
