package awsapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	ssoadmintypes "github.com/aws/aws-sdk-go-v2/service/ssoadmin/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

func TestClassifyNil(t *testing.T) {
	if err := Classify("noop", nil); err != nil {
		t.Errorf("Classify(nil) = %v, want nil", err)
	}
}

func TestClassifyThrottleIsTransient(t *testing.T) {
	err := Classify("create permission set", &smithy.GenericAPIError{
		Code:    "ThrottlingException",
		Message: "Rate exceeded",
	})
	var transient *TransientAPIError
	if !errors.As(err, &transient) {
		t.Fatalf("Classify() = %v, want *TransientAPIError", err)
	}
	if transient.Op != "create permission set" {
		t.Errorf("Op = %q", transient.Op)
	}
}

func TestClassifyServerErrorIsTransient(t *testing.T) {
	err := Classify("provision", &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: 500}},
			Err:      errors.New("internal failure"),
		},
	})
	var transient *TransientAPIError
	if !errors.As(err, &transient) {
		t.Fatalf("Classify() = %v, want *TransientAPIError", err)
	}
}

func TestClassifyClientErrorIsPermanent(t *testing.T) {
	err := Classify("attach policy", &smithy.GenericAPIError{
		Code:    "AccessDeniedException",
		Message: "not authorized",
	})
	var permanent *PermanentAPIError
	if !errors.As(err, &permanent) {
		t.Fatalf("Classify() = %v, want *PermanentAPIError", err)
	}
}

func TestClassifyPreservesCause(t *testing.T) {
	cause := &smithy.GenericAPIError{Code: "ValidationException"}
	err := Classify("update", cause)
	if !errors.Is(err, cause) {
		t.Errorf("Classify() does not unwrap to cause: %v", err)
	}
}

func TestIsConflict(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"conflict exception", &ssoadmintypes.ConflictException{}, true},
		{"wrapped conflict", fmt.Errorf("attach: %w", &ssoadmintypes.ConflictException{}), true},
		{"already attached message", errors.New("Permission set policy already attached"), true},
		{"other error", errors.New("AccessDenied"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsConflict(tc.err); got != tc.want {
				t.Errorf("IsConflict(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"not found exception", &ssoadmintypes.ResourceNotFoundException{}, true},
		{"wrapped not found", fmt.Errorf("delete: %w", &ssoadmintypes.ResourceNotFoundException{}), true},
		{"other error", errors.New("ConflictException"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsNotFound(tc.err); got != tc.want {
				t.Errorf("IsNotFound(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
