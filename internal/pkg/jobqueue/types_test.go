package jobqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayloadArchiveJobPayloadRoundTrip(t *testing.T) {
	in := PayloadArchiveJobPayload{
		LedgerID: 42,
		Provider: "sepay",
		EventID:  "INV-1:order_paid",
	}

	out, err := PayloadArchiveJobPayloadFromMap(in.ToMap())
	assert.NoError(t, err)
	assert.Equal(t, in, *out)
}

func TestLedgerPruneJobPayloadRoundTrip(t *testing.T) {
	in := LedgerPruneJobPayload{RetentionDays: 90}

	out, err := LedgerPruneJobPayloadFromMap(in.ToMap())
	assert.NoError(t, err)
	assert.Equal(t, in, *out)
}

func TestJobRetryAccounting(t *testing.T) {
	job := &Job{MaxRetries: 2}

	assert.True(t, job.IsRetryable())
	job.MarkAsRetrying()
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())
	job.MarkAsRetrying()
	assert.False(t, job.IsRetryable())

	job.MarkAsFailed("boom")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "boom", job.ErrorMsg)
}
