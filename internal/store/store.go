// Package store owns persistence for the clinic core. Callers receive
// an explicit Store handle instead of a package-level database session;
// the gorm implementation backs production and MemStore backs tests.
package store

import (
	"context"
	"errors"

	"github.com/odontocare/clinica-server/internal/models"
)

// ErrNotFound is returned by every Find method when no row matches.
var ErrNotFound = errors.New("record not found")

// CitaFilter narrows a cita search. Nil fields are not applied; set
// fields combine with AND.
type CitaFilter struct {
	DoctorID   *uint
	CentroID   *uint
	PacienteID *uint
	Fecha      *string
	Estado     *models.EstadoCita
}

// Store is the persistence boundary of the scheduling core.
type Store interface {
	// Identity directory
	FindUsuario(ctx context.Context, id uint) (*models.Usuario, error)

	// Reference registries
	FindDoctor(ctx context.Context, id uint) (*models.Doctor, error)
	FindCentro(ctx context.Context, id uint) (*models.Centro, error)
	FindPaciente(ctx context.Context, id uint) (*models.Paciente, error)
	FindPacienteByUsuario(ctx context.Context, usuarioID uint) (*models.Paciente, error)
	FindDoctorByUsuario(ctx context.Context, usuarioID uint) (*models.Doctor, error)

	// FindDoctorForUpdate behaves like FindDoctor but, inside Atomically,
	// additionally serializes concurrent bookings against the same doctor.
	FindDoctorForUpdate(ctx context.Context, id uint) (*models.Doctor, error)

	// Appointment store
	CreateCita(ctx context.Context, cita *models.Cita) error
	FindCita(ctx context.Context, id uint) (*models.Cita, error)
	// FindCitaConflict returns the non-cancelled cita occupying the
	// doctor's slot, or ErrNotFound when the slot is free.
	FindCitaConflict(ctx context.Context, doctorID uint, fecha string) (*models.Cita, error)
	SearchCitas(ctx context.Context, filter CitaFilter) ([]models.Cita, error)
	UpdateCita(ctx context.Context, cita *models.Cita) error

	// Atomically runs fn inside a single unit of work. Any error from fn
	// rolls back every write made through the Store handed to fn.
	Atomically(ctx context.Context, fn func(Store) error) error
}
