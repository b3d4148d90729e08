// This file configures the shared retry discipline: adaptive mode with a
// high attempt ceiling so runs survive long throttling bursts instead of
// failing mid-convergence.

package awsapi

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
)

// DefaultMaxAttempts is the retry ceiling applied to every SDK client. SSO
// Admin and Organizations throttle aggressively on large tenants; a
// reconciliation run must outlast those bursts.
const DefaultMaxAttempts = 1000

// NewRetryer returns the adaptive-mode retryer used by all pipeline clients.
// Adaptive mode adds client-side rate limiting on top of exponential backoff
// with jitter. A maxAttempts of zero or less falls back to
// DefaultMaxAttempts.
func NewRetryer(maxAttempts int) aws.Retryer {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return retry.AddWithMaxAttempts(retry.NewAdaptiveMode(), maxAttempts)
}
