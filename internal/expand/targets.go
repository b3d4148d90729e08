// Package expand turns repository assignments into concrete per-account
// records: it resolves symbolic targets against the organization tree,
// resolves principal names against the identity store, and emits the
// deduplicated flat list consumed by the downstream applier.
package expand

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	orgtypes "github.com/aws/aws-sdk-go-v2/service/organizations/types"

	"github.com/nicholasgasior/ssopipeline/internal/awsapi"
	"github.com/nicholasgasior/ssopipeline/internal/logging"
)

// TargetResolutionError reports an invalid target expression or an API
// failure during expansion. It is fatal for the assignment that carries the
// target; the run continues.
type TargetResolutionError struct {
	Target string
	Err    error
}

func (e *TargetResolutionError) Error() string {
	return fmt.Sprintf("resolve target %q: %v", e.Target, e.Err)
}

func (e *TargetResolutionError) Unwrap() error { return e.Err }

// accountIDPattern matches a literal 12-digit account ID.
var accountIDPattern = regexp.MustCompile(`^\d{12}$`)

// TargetResolver expands one symbolic target into the set of active account
// IDs it denotes. All organization calls run with the management-role
// credentials baked into the client.
type TargetResolver struct {
	client awsapi.OrganizationsAPI
	log    *logging.Logger
}

// NewTargetResolver constructs a TargetResolver.
func NewTargetResolver(client awsapi.OrganizationsAPI, log *logging.Logger) *TargetResolver {
	return &TargetResolver{client: client, log: log}
}

// Resolve expands target per the symbolic grammar:
//
//   - a literal 12-digit account ID yields itself;
//   - ou-* yields the direct-child accounts of the OU, or the transitive
//     closure under child-OU descent with a :* suffix;
//   - Root or r-* yields every account in the organization.
//
// An optional leading <tag>: prefix is stripped before matching. Only
// accounts with status ACTIVE are kept.
func (tr *TargetResolver) Resolve(ctx context.Context, target string) ([]string, error) {
	t := target

	recursive := strings.HasSuffix(t, ":*")
	if recursive {
		t = strings.TrimSuffix(t, ":*")
	}
	if i := strings.Index(t, ":"); i >= 0 {
		t = t[i+1:]
	}

	var accounts []string
	var err error
	switch {
	case accountIDPattern.MatchString(t):
		return []string{t}, nil
	case strings.HasPrefix(t, "ou-"):
		if recursive {
			accounts, err = tr.walkOU(ctx, target, t)
		} else {
			accounts, err = tr.accountsForParent(ctx, target, t)
		}
	case t == "Root" || strings.HasPrefix(t, "r-"):
		accounts, err = tr.allAccounts(ctx, target)
	default:
		return nil, &TargetResolutionError{Target: target, Err: fmt.Errorf("invalid target format")}
	}
	if err != nil {
		return nil, err
	}

	tr.log.Infof("target %s resolved to %d active accounts", target, len(accounts))
	return accounts, nil
}

// walkOU collects active accounts at every level of the OU tree rooted at
// ouID via depth-first traversal of child OUs.
func (tr *TargetResolver) walkOU(ctx context.Context, target, ouID string) ([]string, error) {
	accounts, err := tr.accountsForParent(ctx, target, ouID)
	if err != nil {
		return nil, err
	}

	paginator := organizations.NewListOrganizationalUnitsForParentPaginator(tr.client, &organizations.ListOrganizationalUnitsForParentInput{
		ParentId: aws.String(ouID),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &TargetResolutionError{Target: target, Err: awsapi.Classify(fmt.Sprintf("list child OUs of %s", ouID), err)}
		}
		for _, child := range page.OrganizationalUnits {
			nested, err := tr.walkOU(ctx, target, aws.ToString(child.Id))
			if err != nil {
				return nil, err
			}
			accounts = append(accounts, nested...)
		}
	}
	return accounts, nil
}

// accountsForParent lists the active direct-child accounts of ouID.
func (tr *TargetResolver) accountsForParent(ctx context.Context, target, ouID string) ([]string, error) {
	var accounts []string
	paginator := organizations.NewListAccountsForParentPaginator(tr.client, &organizations.ListAccountsForParentInput{
		ParentId: aws.String(ouID),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &TargetResolutionError{Target: target, Err: awsapi.Classify(fmt.Sprintf("list accounts of %s", ouID), err)}
		}
		accounts = append(accounts, activeIDs(page.Accounts)...)
	}
	return accounts, nil
}

// allAccounts lists every active account in the organization.
func (tr *TargetResolver) allAccounts(ctx context.Context, target string) ([]string, error) {
	var accounts []string
	paginator := organizations.NewListAccountsPaginator(tr.client, &organizations.ListAccountsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &TargetResolutionError{Target: target, Err: awsapi.Classify("list organization accounts", err)}
		}
		accounts = append(accounts, activeIDs(page.Accounts)...)
	}
	return accounts, nil
}

func activeIDs(accounts []orgtypes.Account) []string {
	var ids []string
	for _, acct := range accounts {
		if acct.Status == orgtypes.AccountStatusActive {
			ids = append(ids, aws.ToString(acct.Id))
		}
	}
	return ids
}
