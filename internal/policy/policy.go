// Package policy is the access-control decision table for appointment
// operations. It is a pure function of (role, operation); persistence
// and field validation live elsewhere.
package policy

import (
	"github.com/odontocare/clinica-server/internal/models"
)

// Operation identifies an appointment operation subject to role checks.
type Operation int

const (
	// OpBook creates a new appointment.
	OpBook Operation = iota
	// OpList queries appointments with role-scoped filters.
	OpList
	// OpCancel transitions an appointment to Cancelada.
	OpCancel
)

func (op Operation) String() string {
	switch op {
	case OpBook:
		return "book"
	case OpList:
		return "list"
	case OpCancel:
		return "cancel"
	}
	return "unknown"
}

// Allow reports whether the role may perform the operation. Unknown
// roles are denied everything. The switch is exhaustive over the closed
// role set so a new role forces this table to be revisited.
func Allow(role models.Role, op Operation) bool {
	switch op {
	case OpBook:
		switch role {
		case models.RoleAdmin, models.RolePaciente:
			return true
		case models.RoleMedico, models.RoleSecretaria:
			return false
		}
	case OpList:
		switch role {
		case models.RoleMedico, models.RoleSecretaria, models.RoleAdmin:
			return true
		case models.RolePaciente:
			return false
		}
	case OpCancel:
		switch role {
		case models.RoleAdmin, models.RoleSecretaria:
			return true
		case models.RoleMedico, models.RolePaciente:
			return false
		}
	}
	return false
}
