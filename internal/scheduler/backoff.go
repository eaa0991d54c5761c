package scheduler

import "time"

const (
	baseRetryDelay = 1 * time.Second
	maxRetryDelay  = 60 * time.Second
)

// retryBackoff returns the exponential backoff duration for a settlement
// retry: baseRetryDelay * 2^attempt, capped at maxRetryDelay.
func retryBackoff(attempt int) time.Duration {
	if attempt < 0 {
		return baseRetryDelay
	}

	// 2^30 seconds is already far beyond the cap.
	if attempt > 30 {
		return maxRetryDelay
	}

	backoff := baseRetryDelay * time.Duration(1<<attempt)
	if backoff > maxRetryDelay {
		return maxRetryDelay
	}
	return backoff
}
