package auth

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmployeeNotFound is returned by an EmployeeLookup when the identity has
// no staff record.
var ErrEmployeeNotFound = errors.New("employee not found")

// Role is what the server knows about a caller beyond their identity.
type Role struct {
	IsEmployee bool
	EmployeeID string
}

type EmployeeLookup interface {
	EmployeeIDByAuthID(ctx context.Context, authID string) (string, error)
}

type RoleResolver struct {
	employees EmployeeLookup
}

func NewRoleResolver(employees EmployeeLookup) *RoleResolver {
	return &RoleResolver{employees: employees}
}

// ResolveRole looks the identity up in the staff table. A missing row is a
// plain non-employee; any other lookup failure is returned.
func (r *RoleResolver) ResolveRole(ctx context.Context, identity Identity) (Role, error) {
	if identity.ID == "" {
		return Role{}, nil
	}

	id, err := r.employees.EmployeeIDByAuthID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			return Role{}, nil
		}
		return Role{}, fmt.Errorf("resolve role: %w", err)
	}
	return Role{IsEmployee: true, EmployeeID: id}, nil
}
