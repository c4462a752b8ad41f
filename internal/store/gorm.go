package store

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/odontocare/clinica-server/internal/models"
)

// gormStore implements Store on top of a gorm MySQL connection.
type gormStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewGormStore wraps a gorm connection in the Store interface.
func NewGormStore(db *gorm.DB, log *zap.Logger) Store {
	return &gormStore{db: db, log: log}
}

func (s *gormStore) FindUsuario(ctx context.Context, id uint) (*models.Usuario, error) {
	var usuario models.Usuario
	if err := s.first(ctx, &usuario, "id = ?", id); err != nil {
		return nil, err
	}
	return &usuario, nil
}

func (s *gormStore) FindDoctor(ctx context.Context, id uint) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.first(ctx, &doctor, "id = ?", id); err != nil {
		return nil, err
	}
	return &doctor, nil
}

// FindDoctorForUpdate locks the doctor row for the remainder of the
// surrounding transaction. Two concurrent bookings for the same doctor
// therefore run their conflict check one after the other, which is what
// keeps the (doctor, fecha) slot unique under load.
func (s *gormStore) FindDoctorForUpdate(ctx context.Context, id uint) (*models.Doctor, error) {
	var doctor models.Doctor
	err := s.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&doctor, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error("store: find doctor for update", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &doctor, nil
}

func (s *gormStore) FindCentro(ctx context.Context, id uint) (*models.Centro, error) {
	var centro models.Centro
	if err := s.first(ctx, &centro, "id = ?", id); err != nil {
		return nil, err
	}
	return &centro, nil
}

func (s *gormStore) FindPaciente(ctx context.Context, id uint) (*models.Paciente, error) {
	var paciente models.Paciente
	if err := s.first(ctx, &paciente, "id = ?", id); err != nil {
		return nil, err
	}
	return &paciente, nil
}

func (s *gormStore) FindPacienteByUsuario(ctx context.Context, usuarioID uint) (*models.Paciente, error) {
	var paciente models.Paciente
	if err := s.first(ctx, &paciente, "usuario_id = ?", usuarioID); err != nil {
		return nil, err
	}
	return &paciente, nil
}

func (s *gormStore) FindDoctorByUsuario(ctx context.Context, usuarioID uint) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.first(ctx, &doctor, "usuario_id = ?", usuarioID); err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (s *gormStore) CreateCita(ctx context.Context, cita *models.Cita) error {
	if err := s.db.WithContext(ctx).Create(cita).Error; err != nil {
		s.log.Error("store: create cita", zap.Error(err))
		return err
	}
	return nil
}

func (s *gormStore) FindCita(ctx context.Context, id uint) (*models.Cita, error) {
	var cita models.Cita
	if err := s.first(ctx, &cita, "id = ?", id); err != nil {
		return nil, err
	}
	return &cita, nil
}

// FindCitaConflict must be a locking read: under REPEATABLE READ a plain
// SELECT inside a transaction reads the snapshot taken at the first read,
// which predates a competing booking's commit. FOR UPDATE reads latest
// committed rows, so together with the doctor-row lock the check-then-insert
// sequence cannot miss a cita that another transaction just committed.
func (s *gormStore) FindCitaConflict(ctx context.Context, doctorID uint, fecha string) (*models.Cita, error) {
	var cita models.Cita
	err := s.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("doctor_id = ? AND fecha = ? AND estado <> ?", doctorID, fecha, models.CitaCancelada).
		First(&cita).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error("store: find cita conflict", zap.Uint("doctorId", doctorID), zap.Error(err))
		return nil, err
	}
	return &cita, nil
}

func (s *gormStore) SearchCitas(ctx context.Context, filter CitaFilter) ([]models.Cita, error) {
	query := s.db.WithContext(ctx).Model(&models.Cita{})
	if filter.DoctorID != nil {
		query = query.Where("doctor_id = ?", *filter.DoctorID)
	}
	if filter.CentroID != nil {
		query = query.Where("centro_id = ?", *filter.CentroID)
	}
	if filter.PacienteID != nil {
		query = query.Where("paciente_id = ?", *filter.PacienteID)
	}
	if filter.Fecha != nil {
		query = query.Where("fecha = ?", *filter.Fecha)
	}
	if filter.Estado != nil {
		query = query.Where("estado = ?", *filter.Estado)
	}

	var citas []models.Cita
	if err := query.Order("id asc").Find(&citas).Error; err != nil {
		s.log.Error("store: search citas", zap.Error(err))
		return nil, err
	}
	return citas, nil
}

func (s *gormStore) UpdateCita(ctx context.Context, cita *models.Cita) error {
	if err := s.db.WithContext(ctx).Save(cita).Error; err != nil {
		s.log.Error("store: update cita", zap.Uint("id", cita.ID), zap.Error(err))
		return err
	}
	return nil
}

// Atomically runs fn inside a database transaction. The Store passed to
// fn shares the transaction, so a failed booking rolls back every read
// lock and write it made.
func (s *gormStore) Atomically(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx, log: s.log})
	})
}

func (s *gormStore) first(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	err := s.db.WithContext(ctx).Where(query, args...).First(dest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		s.log.Error("store: lookup", zap.String("query", query), zap.Error(err))
		return err
	}
	return nil
}
