// This file defines the error taxonomy for remote calls and the predicates
// for benign-idempotent SSO Admin outcomes.

package awsapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	ssoadmintypes "github.com/aws/aws-sdk-go-v2/service/ssoadmin/types"
)

// TransientAPIError wraps a throttling or server-side failure that persisted
// through retry exhaustion. It is fatal for the run, but distinguishes "the
// service never let us in" from a definitive rejection.
type TransientAPIError struct {
	Op  string
	Err error
}

func (e *TransientAPIError) Error() string {
	return fmt.Sprintf("%s: transient API failure after retry exhaustion: %v", e.Op, e.Err)
}

func (e *TransientAPIError) Unwrap() error { return e.Err }

// PermanentAPIError wraps a definitive remote failure: authorization,
// malformed input, or a conflict outside the benign-idempotent set.
type PermanentAPIError struct {
	Op  string
	Err error
}

func (e *PermanentAPIError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PermanentAPIError) Unwrap() error { return e.Err }

// Classify wraps a remote error as transient or permanent. The SDK retryer
// has already absorbed retryable failures by the time an error reaches the
// caller, so anything still classified as throttling or 5xx means retries
// were exhausted. A nil err returns nil.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if retry.IsErrorThrottles(retry.DefaultThrottles).IsErrorThrottle(err) == aws.TrueTernary {
		return &TransientAPIError{Op: op, Err: err}
	}
	var re *awshttp.ResponseError
	if errors.As(err, &re) && re.HTTPStatusCode() >= 500 {
		return &TransientAPIError{Op: op, Err: err}
	}
	return &PermanentAPIError{Op: op, Err: err}
}

// IsConflict reports whether err is the benign "already attached" outcome of
// an SSO Admin attach or put call. Some API implementations surface duplicate
// attachment as a validation error whose message contains "already attached";
// those are accepted too.
func IsConflict(err error) bool {
	var conflict *ssoadmintypes.ConflictException
	if errors.As(err, &conflict) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "already attached")
}

// IsNotFound reports whether err is the benign "nothing to delete" outcome of
// an SSO Admin delete call.
func IsNotFound(err error) bool {
	var notFound *ssoadmintypes.ResourceNotFoundException
	return errors.As(err, &notFound)
}
