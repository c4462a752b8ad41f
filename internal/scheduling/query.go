package scheduling

import (
	"context"
	"errors"

	"github.com/odontocare/clinica-server/internal/apperrors"
	"github.com/odontocare/clinica-server/internal/models"
	"github.com/odontocare/clinica-server/internal/policy"
	"github.com/odontocare/clinica-server/internal/store"
)

// ListFilters carries the optional query parameters of a listing. All
// fields arrive as raw query-string values; empty means not supplied.
type ListFilters struct {
	IDDoctor   string
	IDCentro   string
	IDPaciente string
	Fecha      string
	Estado     string
}

// List returns the appointments the caller's role is scoped to.
// Each role has a fixed scope rather than a generic filter:
//
//   - medico: only their own appointments, supplied filters are ignored
//   - secretaria: every appointment, optionally narrowed by fecha
//   - admin: every appointment, narrowed by the conjunction of all
//     supplied filters
func (s *Service) List(ctx context.Context, caller Identity, filters ListFilters) ([]models.Cita, error) {
	if !policy.Allow(caller.Role, policy.OpList) {
		return nil, apperrors.New(apperrors.KindPermissionDenied, "no tiene permiso para ver citas")
	}

	switch caller.Role {
	case models.RoleMedico:
		doctor, err := s.store.FindDoctorByUsuario(ctx, caller.UsuarioID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperrors.New(apperrors.KindNotFound, "doctor no encontrado")
			}
			return nil, err
		}
		return s.store.SearchCitas(ctx, store.CitaFilter{DoctorID: &doctor.ID})

	case models.RoleSecretaria:
		filter := store.CitaFilter{}
		if filters.Fecha != "" {
			filter.Fecha = &filters.Fecha
		}
		return s.store.SearchCitas(ctx, filter)

	case models.RoleAdmin:
		filter, err := adminFilter(filters)
		if err != nil {
			return nil, err
		}
		return s.store.SearchCitas(ctx, filter)
	}

	// policy.Allow already rejected every other role
	return nil, apperrors.New(apperrors.KindPermissionDenied, "no tiene permiso para ver citas")
}

// adminFilter translates the supplied query parameters into a store
// filter, combined with AND. Integer-valued parameters must parse.
func adminFilter(filters ListFilters) (store.CitaFilter, error) {
	var filter store.CitaFilter
	if filters.IDDoctor != "" {
		id, err := parseID(filters.IDDoctor)
		if err != nil {
			return filter, apperrors.New(apperrors.KindInvalidInput, "id_doctor debe ser numerico")
		}
		filter.DoctorID = &id
	}
	if filters.IDCentro != "" {
		id, err := parseID(filters.IDCentro)
		if err != nil {
			return filter, apperrors.New(apperrors.KindInvalidInput, "id_centro debe ser numerico")
		}
		filter.CentroID = &id
	}
	if filters.IDPaciente != "" {
		id, err := parseID(filters.IDPaciente)
		if err != nil {
			return filter, apperrors.New(apperrors.KindInvalidInput, "id_paciente debe ser numerico")
		}
		filter.PacienteID = &id
	}
	if filters.Fecha != "" {
		filter.Fecha = &filters.Fecha
	}
	if filters.Estado != "" {
		estado := models.EstadoCita(filters.Estado)
		filter.Estado = &estado
	}
	return filter, nil
}
