// Package scheduling implements the appointment lifecycle engine:
// booking with conflict detection, role-scoped listing and cancellation.
package scheduling

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/odontocare/clinica-server/internal/apperrors"
	"github.com/odontocare/clinica-server/internal/models"
	"github.com/odontocare/clinica-server/internal/policy"
	"github.com/odontocare/clinica-server/internal/store"
)

// Identity is the resolved caller of an operation.
type Identity struct {
	UsuarioID uint
	Role      models.Role
}

// Service runs appointment operations against an injected store handle.
type Service struct {
	store store.Store
	log   *zap.Logger
}

// NewService creates a scheduling service.
func NewService(st store.Store, log *zap.Logger) *Service {
	return &Service{store: st, log: log}
}

// BookRequest carries the booking payload. ID fields arrive as strings
// and must parse as integers; IDPaciente is required only when the
// caller is an admin (a paciente books through their own linked record).
type BookRequest struct {
	Fecha      string
	Motivo     string
	IDDoctor   string
	IDCentro   string
	IDPaciente string
}

// Book validates and creates an appointment. Checks run in a fixed
// order and the first failure wins; every read and the insert share one
// unit of work so two simultaneous bookings of the same (doctor, fecha)
// slot cannot both succeed.
func (s *Service) Book(ctx context.Context, caller Identity, req BookRequest) (*models.Cita, error) {
	if !policy.Allow(caller.Role, policy.OpBook) {
		return nil, apperrors.New(apperrors.KindPermissionDenied, "no tienes permisos para agendar citas")
	}

	var missing []string
	if req.Fecha == "" {
		missing = append(missing, "fecha")
	}
	if req.Motivo == "" {
		missing = append(missing, "motivo")
	}
	if req.IDDoctor == "" {
		missing = append(missing, "id_doctor")
	}
	if req.IDCentro == "" {
		missing = append(missing, "id_centro")
	}
	if len(missing) > 0 {
		return nil, apperrors.Newf(apperrors.KindInvalidInput, "faltan datos: %s", strings.Join(missing, ", "))
	}

	doctorID, err := parseID(req.IDDoctor)
	if err != nil {
		return nil, apperrors.New(apperrors.KindInvalidInput, "id_doctor debe ser numerico")
	}
	centroID, err := parseID(req.IDCentro)
	if err != nil {
		return nil, apperrors.New(apperrors.KindInvalidInput, "id_centro debe ser numerico")
	}

	var created *models.Cita
	err = s.store.Atomically(ctx, func(tx store.Store) error {
		paciente, err := s.resolvePaciente(ctx, tx, caller, req.IDPaciente)
		if err != nil {
			return err
		}
		if !paciente.IsActivo() {
			return apperrors.New(apperrors.KindConflict, "paciente inactivo, no se puede agendar cita")
		}

		// The doctor row lock serializes concurrent bookings for the
		// same doctor through the conflict check below.
		if _, err := tx.FindDoctorForUpdate(ctx, doctorID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperrors.New(apperrors.KindNotFound, "el doctor no existe")
			}
			return err
		}
		if _, err := tx.FindCentro(ctx, centroID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperrors.New(apperrors.KindNotFound, "el centro medico no existe")
			}
			return err
		}

		_, err = tx.FindCitaConflict(ctx, doctorID, req.Fecha)
		if err == nil {
			return apperrors.New(apperrors.KindConflict, "el doctor ya tiene una cita en esa fecha/hora")
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		cita := &models.Cita{
			Fecha:           req.Fecha,
			Motivo:          req.Motivo,
			Estado:          models.CitaActiva,
			PacienteID:      paciente.ID,
			DoctorID:        doctorID,
			CentroID:        centroID,
			RegistradaPorID: caller.UsuarioID,
		}
		if err := tx.CreateCita(ctx, cita); err != nil {
			return err
		}
		created = cita
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("cita agendada",
		zap.Uint("citaId", created.ID),
		zap.Uint("doctorId", created.DoctorID),
		zap.String("fecha", created.Fecha),
		zap.Uint("registradaPor", caller.UsuarioID))
	return created, nil
}

// resolvePaciente finds the patient the appointment is for. A paciente
// books through their own linked record; an admin must name one.
func (s *Service) resolvePaciente(ctx context.Context, tx store.Store, caller Identity, idPaciente string) (*models.Paciente, error) {
	if caller.Role == models.RolePaciente {
		paciente, err := tx.FindPacienteByUsuario(ctx, caller.UsuarioID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperrors.New(apperrors.KindInvalidInput, "no existe un paciente asociado a este usuario")
			}
			return nil, err
		}
		return paciente, nil
	}

	if idPaciente == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "un admin debe indicar id_paciente")
	}
	pacienteID, err := parseID(idPaciente)
	if err != nil {
		return nil, apperrors.New(apperrors.KindInvalidInput, "id_paciente debe ser numerico")
	}
	paciente, err := tx.FindPaciente(ctx, pacienteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "el paciente no existe")
		}
		return nil, err
	}
	return paciente, nil
}

// Cancel transitions a cita to Cancelada. Cancelling twice reports a
// conflict rather than a silent success.
func (s *Service) Cancel(ctx context.Context, caller Identity, citaID uint) (*models.Cita, error) {
	if !policy.Allow(caller.Role, policy.OpCancel) {
		return nil, apperrors.New(apperrors.KindPermissionDenied, "no tienes permisos para cancelar citas")
	}

	var cancelled *models.Cita
	err := s.store.Atomically(ctx, func(tx store.Store) error {
		cita, err := tx.FindCita(ctx, citaID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperrors.New(apperrors.KindNotFound, "cita no encontrada")
			}
			return err
		}
		if cita.IsCancelada() {
			return apperrors.New(apperrors.KindConflict, "la cita ya esta cancelada")
		}
		cita.Estado = models.CitaCancelada
		if err := tx.UpdateCita(ctx, cita); err != nil {
			return err
		}
		cancelled = cita
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("cita cancelada", zap.Uint("citaId", cancelled.ID), zap.Uint("canceladaPor", caller.UsuarioID))
	return cancelled, nil
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
