package types

import (
	"github.com/go-playground/validator/v10"
)

// Role is a job role and the skills interview questions can target.
type Role struct {
	ID     string   `json:"_id"`
	Role   string   `json:"role"`
	Skills []string `json:"skills"`
}

// CreateRoleRequest is the body of POST /api/candidate-role-skills.
type CreateRoleRequest struct {
	Role string `json:"role" validate:"required,min=1"`
}

// UpdateRoleRequest is the body of PUT /api/candidate-role-skills/:id.
// Role is omitted when nil so a skills-only update leaves the name alone.
// Skills is always sent; an empty list clears the role's skills.
type UpdateRoleRequest struct {
	Role   *string  `json:"role,omitempty" validate:"omitempty,min=1"`
	Skills []string `json:"skills"`
}

// Validate validates the CreateRoleRequest using the validator.
func (r *CreateRoleRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the UpdateRoleRequest using the validator.
func (r *UpdateRoleRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
