package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jonathan/hr-console/internal/types"
)

const (
	rolesPath     = "/api/candidate-role-skills"
	roleItemRoute = "/api/candidate-role-skills/:id"
)

func rolePath(id string) string {
	return rolesPath + "/" + url.PathEscape(id)
}

// ListRoles fetches every role with its skills.
func (c *Client) ListRoles(ctx context.Context) ([]types.Role, error) {
	var out []types.Role
	if err := c.doJSON(ctx, http.MethodGet, rolesPath, rolesPath, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRole creates a role with no skills.
func (c *Client) CreateRole(ctx context.Context, req types.CreateRoleRequest) (*types.Role, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out types.Role
	if err := c.doJSON(ctx, http.MethodPost, rolesPath, rolesPath, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRole renames a role or replaces its skills.
func (c *Client) UpdateRole(ctx context.Context, id string, req types.UpdateRoleRequest) (*types.Role, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Skills == nil {
		req.Skills = []string{}
	}
	var out types.Role
	if err := c.doJSON(ctx, http.MethodPut, roleItemRoute, rolePath(id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRole deletes a role. The response body is ignored.
func (c *Client) DeleteRole(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, roleItemRoute, rolePath(id), nil, nil, nil)
}
