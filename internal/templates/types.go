// Package templates defines the repository-form entities of the pipeline and
// loads them from JSON template directories. Repository entities are
// immutable within a run: loaded once, never mutated.
package templates

import (
	"bytes"
	"encoding/json"
)

// Boundary policy types accepted in PermissionBoundary.PolicyType.
const (
	BoundaryTypeAWS      = "AWS"
	BoundaryTypeCustomer = "CUSTOMER"
)

// Principal types accepted in Assignment.PrincipalType.
const (
	PrincipalTypeUser  = "USER"
	PrincipalTypeGroup = "GROUP"
)

// PermissionBoundary references the policy used as a permission set's
// permissions boundary. PolicyType AWS carries a managed policy ARN in
// Policy; PolicyType CUSTOMER carries a customer managed policy name.
type PermissionBoundary struct {
	PolicyType string `json:"PolicyType"`
	Policy     string `json:"Policy"`
}

// PermissionSet is the repository form of a permission set template: one
// JSON object per file, keyed by Name.
type PermissionSet struct {
	Name                    string              `json:"Name"`
	Description             string              `json:"Description"`
	SessionDuration         string              `json:"SessionDuration"`
	RelayState              string              `json:"RelayState,omitempty"`
	ManagedPolicies         []string            `json:"ManagedPolicies,omitempty"`
	CustomPolicy            json.RawMessage     `json:"CustomPolicy,omitempty"`
	CustomerManagedPolicies []string            `json:"CustomerManagedPolicies,omitempty"`
	PermissionBoundary      *PermissionBoundary `json:"PermissionBoundary,omitempty"`
}

// HasCustomPolicy reports whether the template carries a non-empty inline
// policy document. Absent, null, empty-object, and empty-string values all
// count as "no policy" and trigger idempotent inline-policy removal.
func (p *PermissionSet) HasCustomPolicy() bool {
	raw := bytes.TrimSpace(p.CustomPolicy)
	switch {
	case len(raw) == 0:
		return false
	case bytes.Equal(raw, []byte("null")):
		return false
	case bytes.Equal(raw, []byte("{}")):
		return false
	case bytes.Equal(raw, []byte(`""`)):
		return false
	}
	return true
}

// Assignment is the repository form of a principal-to-permission-set binding.
// PrincipalID holds a principal *name* (user name or group display name)
// despite the key; the expander resolves it to a directory ID.
type Assignment struct {
	SID               string   `json:"SID"`
	PrincipalType     string   `json:"PrincipalType"`
	PrincipalID       string   `json:"PrincipalId"`
	PermissionSetName string   `json:"PermissionSetName"`
	Targets           []string `json:"Target"`
}

// ResolvedAssignment is one concrete record the expander emits for the
// downstream applier. PermissionSetName holds the live permission set ARN,
// not the repository name: a deliberate rename at emission time. The struct
// is comparable so records deduplicate by full-record equality.
type ResolvedAssignment struct {
	Sid               string `json:"Sid"`
	PrincipalID       string `json:"PrincipalId"`
	PrincipalType     string `json:"PrincipalType"`
	PermissionSetName string `json:"PermissionSetName"`
	Target            string `json:"Target"`
}
