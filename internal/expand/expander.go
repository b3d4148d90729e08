package expand

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/nicholasgasior/ssopipeline/internal/logging"
	"github.com/nicholasgasior/ssopipeline/internal/templates"
)

// Expander turns repository assignments into the flat list of resolved
// records. One symbolic assignment fans out into one record per resolved
// account; records that collapse to the same full value are emitted once.
type Expander struct {
	targets    *TargetResolver
	principals *PrincipalResolver
	// permissionSets maps repository names to live permission set ARNs.
	permissionSets map[string]string
	// managementAccount is excluded from every expansion: Identity Center
	// cannot assign access to the account that hosts it.
	managementAccount string
	log               *logging.Logger
}

// NewExpander constructs an Expander over a live permission set index.
func NewExpander(targets *TargetResolver, principals *PrincipalResolver, permissionSets map[string]string, managementAccount string, log *logging.Logger) *Expander {
	return &Expander{
		targets:           targets,
		principals:        principals,
		permissionSets:    permissionSets,
		managementAccount: managementAccount,
		log:               log,
	}
}

// Expand resolves every assignment and returns the deduplicated record list
// in first-occurrence order.
//
// A principal the identity store does not know and a target that fails to
// resolve each skip their assignment with a logged error; a permission set
// name absent from the live index aborts the run, because emitting a record
// without an ARN would poison the downstream applier.
func (e *Expander) Expand(ctx context.Context, assignments []templates.Assignment) ([]templates.ResolvedAssignment, error) {
	resolved := make([]templates.ResolvedAssignment, 0, len(assignments))
	seen := make(map[templates.ResolvedAssignment]struct{})

	for _, a := range assignments {
		e.log.Infof("[SID: %s] [PR: %s] looking up the principal ID in the identity store", a.SID, a.PrincipalID)
		principalID, err := e.principals.Resolve(ctx, a.PrincipalID, a.PrincipalType)
		if err != nil {
			e.log.Errorf("[SID: %s] [PR: %s] skipping assignment: %v", a.SID, a.PrincipalID, err)
			continue
		}

		accounts, err := e.resolveTargets(ctx, a.Targets)
		if err != nil {
			e.log.Errorf("[SID: %s] it was not possible to resolve the targets, skipping assignment: %v", a.SID, err)
			continue
		}

		arn, ok := e.permissionSets[a.PermissionSetName]
		if !ok {
			return nil, fmt.Errorf("[SID: %s] permission set %q is not managed by the pipeline", a.SID, a.PermissionSetName)
		}

		for _, account := range accounts {
			if account == e.managementAccount {
				continue
			}
			rec := templates.ResolvedAssignment{
				Sid:               account + a.PrincipalID + a.PrincipalType + a.PermissionSetName,
				PrincipalID:       principalID,
				PrincipalType:     a.PrincipalType,
				PermissionSetName: arn,
				Target:            account,
			}
			if _, dup := seen[rec]; dup {
				continue
			}
			seen[rec] = struct{}{}
			resolved = append(resolved, rec)
		}
	}

	e.log.Infof("expanded %d assignments into %d resolved records", len(assignments), len(resolved))
	return resolved, nil
}

// resolveTargets expands every target of one assignment and concatenates the
// account lists in target order. Duplicate accounts survive here; the
// full-record dedup in Expand absorbs them.
func (e *Expander) resolveTargets(ctx context.Context, targets []string) ([]string, error) {
	var accounts []string
	for _, target := range targets {
		ids, err := e.targets.Resolve(ctx, target)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, ids...)
	}
	return accounts, nil
}

// WriteFile serializes records as a flat JSON array at path. An empty record
// list writes a literal [] so downstream consumers always parse an array.
func WriteFile(path string, records []templates.ResolvedAssignment) error {
	if records == nil {
		records = []templates.ResolvedAssignment{}
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("encode resolved assignments: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
