package enums

// OutboxDLQErrorReason records why the relay parked an event in the
// dead-letter table.
type OutboxDLQErrorReason string

const (
	// OutboxDLQReasonMaxAttempts marks an event whose publish kept failing
	// until the attempt budget ran out.
	OutboxDLQReasonMaxAttempts OutboxDLQErrorReason = "max_attempts"
	// OutboxDLQReasonNonRetryable marks an event that can never be published,
	// such as an unknown type or an undecodable payload.
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

func (r OutboxDLQErrorReason) String() string {
	return string(r)
}

// IsValid reports whether the reason may be stored in outbox_dlq.error_reason.
func (r OutboxDLQErrorReason) IsValid() bool {
	switch r {
	case OutboxDLQReasonMaxAttempts, OutboxDLQReasonNonRetryable:
		return true
	}
	return false
}
