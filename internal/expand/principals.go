package expand

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/identitystore"
	idstoretypes "github.com/aws/aws-sdk-go-v2/service/identitystore/types"

	"github.com/nicholasgasior/ssopipeline/internal/awsapi"
	"github.com/nicholasgasior/ssopipeline/internal/templates"
)

// PrincipalNotFoundError reports an identity-store lookup miss. The
// assignment carrying the principal is skipped; the run continues.
type PrincipalNotFoundError struct {
	Name string
	Type string
}

func (e *PrincipalNotFoundError) Error() string {
	return fmt.Sprintf("principal %q (%s) not found in identity store", e.Name, e.Type)
}

// PrincipalResolver maps principal display names to identity-store IDs.
// Lookups are memoized for the lifetime of the resolver; the cache never
// outlives a run.
type PrincipalResolver struct {
	client  awsapi.IdentityStoreAPI
	storeID string
	cache   map[string]string
}

// NewPrincipalResolver constructs a resolver bound to one identity store.
func NewPrincipalResolver(client awsapi.IdentityStoreAPI, storeID string) *PrincipalResolver {
	return &PrincipalResolver{
		client:  client,
		storeID: storeID,
		cache:   make(map[string]string),
	}
}

// Resolve returns the identity-store ID for the named USER or GROUP. A
// repeated name is served from the memo without another API call.
func (pr *PrincipalResolver) Resolve(ctx context.Context, name, principalType string) (string, error) {
	if id, ok := pr.cache[name]; ok {
		return id, nil
	}

	var id string
	var err error
	switch principalType {
	case templates.PrincipalTypeUser:
		id, err = pr.lookupUser(ctx, name)
	case templates.PrincipalTypeGroup:
		id, err = pr.lookupGroup(ctx, name)
	default:
		return "", fmt.Errorf("unknown principal type %q for %q", principalType, name)
	}
	if err != nil {
		return "", err
	}

	pr.cache[name] = id
	return id, nil
}

func (pr *PrincipalResolver) lookupUser(ctx context.Context, name string) (string, error) {
	out, err := pr.client.ListUsers(ctx, &identitystore.ListUsersInput{
		IdentityStoreId: aws.String(pr.storeID),
		Filters: []idstoretypes.Filter{{
			AttributePath:  aws.String("UserName"),
			AttributeValue: aws.String(name),
		}},
	})
	if err != nil {
		return "", awsapi.Classify(fmt.Sprintf("look up user %s", name), err)
	}
	if len(out.Users) == 0 {
		return "", &PrincipalNotFoundError{Name: name, Type: templates.PrincipalTypeUser}
	}
	return aws.ToString(out.Users[0].UserId), nil
}

func (pr *PrincipalResolver) lookupGroup(ctx context.Context, name string) (string, error) {
	out, err := pr.client.ListGroups(ctx, &identitystore.ListGroupsInput{
		IdentityStoreId: aws.String(pr.storeID),
		Filters: []idstoretypes.Filter{{
			AttributePath:  aws.String("DisplayName"),
			AttributeValue: aws.String(name),
		}},
	})
	if err != nil {
		return "", awsapi.Classify(fmt.Sprintf("look up group %s", name), err)
	}
	if len(out.Groups) == 0 {
		return "", &PrincipalNotFoundError{Name: name, Type: templates.PrincipalTypeGroup}
	}
	return aws.ToString(out.Groups[0].GroupId), nil
}
