package store

import (
	"context"
	"sort"
	"sync"

	"github.com/odontocare/clinica-server/internal/models"
)

// MemStore is an in-memory Store. A single mutex guards all state and
// Atomically holds it for the whole unit of work, so the read-check-write
// sequence of a booking is serialized exactly like the database
// transaction in the gorm implementation.
type MemStore struct {
	mu        sync.Mutex
	usuarios  map[uint]models.Usuario
	doctores  map[uint]models.Doctor
	centros   map[uint]models.Centro
	pacientes map[uint]models.Paciente
	citas     map[uint]models.Cita
	nextID    map[string]uint
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		usuarios:  make(map[uint]models.Usuario),
		doctores:  make(map[uint]models.Doctor),
		centros:   make(map[uint]models.Centro),
		pacientes: make(map[uint]models.Paciente),
		citas:     make(map[uint]models.Cita),
		nextID:    make(map[string]uint),
	}
}

func (s *MemStore) allocID(table string) uint {
	s.nextID[table]++
	return s.nextID[table]
}

// AddUsuario seeds a user and returns it with an assigned ID.
func (s *MemStore) AddUsuario(u models.Usuario) models.Usuario {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.allocID("usuarios")
	}
	s.usuarios[u.ID] = u
	return u
}

// AddDoctor seeds a doctor and returns it with an assigned ID.
func (s *MemStore) AddDoctor(d models.Doctor) models.Doctor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == 0 {
		d.ID = s.allocID("doctores")
	}
	s.doctores[d.ID] = d
	return d
}

// AddCentro seeds a centro and returns it with an assigned ID.
func (s *MemStore) AddCentro(c models.Centro) models.Centro {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.allocID("centros")
	}
	s.centros[c.ID] = c
	return c
}

// AddPaciente seeds a patient and returns it with an assigned ID.
func (s *MemStore) AddPaciente(p models.Paciente) models.Paciente {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.allocID("pacientes")
	}
	s.pacientes[p.ID] = p
	return p
}

func (s *MemStore) FindUsuario(ctx context.Context, id uint) (*models.Usuario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findUsuario(id)
}

func (s *MemStore) FindDoctor(ctx context.Context, id uint) (*models.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findDoctor(id)
}

func (s *MemStore) FindDoctorForUpdate(ctx context.Context, id uint) (*models.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findDoctor(id)
}

func (s *MemStore) FindCentro(ctx context.Context, id uint) (*models.Centro, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCentro(id)
}

func (s *MemStore) FindPaciente(ctx context.Context, id uint) (*models.Paciente, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findPaciente(id)
}

func (s *MemStore) FindPacienteByUsuario(ctx context.Context, usuarioID uint) (*models.Paciente, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findPacienteByUsuario(usuarioID)
}

func (s *MemStore) FindDoctorByUsuario(ctx context.Context, usuarioID uint) (*models.Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findDoctorByUsuario(usuarioID)
}

func (s *MemStore) CreateCita(ctx context.Context, cita *models.Cita) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createCita(cita)
}

func (s *MemStore) FindCita(ctx context.Context, id uint) (*models.Cita, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCita(id)
}

func (s *MemStore) FindCitaConflict(ctx context.Context, doctorID uint, fecha string) (*models.Cita, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCitaConflict(doctorID, fecha)
}

func (s *MemStore) SearchCitas(ctx context.Context, filter CitaFilter) ([]models.Cita, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchCitas(filter)
}

func (s *MemStore) UpdateCita(ctx context.Context, cita *models.Cita) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateCita(cita)
}

// Atomically holds the store lock across fn. The Store handed to fn is
// an unlocked view; a booking's reads and its insert therefore see a
// single consistent snapshot. Writes are not rolled back on error, which
// matches how the engine uses the store: it only writes once every check
// has passed.
func (s *MemStore) Atomically(ctx context.Context, fn func(Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memTx{s: s})
}

// memTx exposes the MemStore internals without re-acquiring the mutex.
type memTx struct {
	s *MemStore
}

func (t *memTx) FindUsuario(ctx context.Context, id uint) (*models.Usuario, error) {
	return t.s.findUsuario(id)
}

func (t *memTx) FindDoctor(ctx context.Context, id uint) (*models.Doctor, error) {
	return t.s.findDoctor(id)
}

func (t *memTx) FindDoctorForUpdate(ctx context.Context, id uint) (*models.Doctor, error) {
	return t.s.findDoctor(id)
}

func (t *memTx) FindCentro(ctx context.Context, id uint) (*models.Centro, error) {
	return t.s.findCentro(id)
}

func (t *memTx) FindPaciente(ctx context.Context, id uint) (*models.Paciente, error) {
	return t.s.findPaciente(id)
}

func (t *memTx) FindPacienteByUsuario(ctx context.Context, usuarioID uint) (*models.Paciente, error) {
	return t.s.findPacienteByUsuario(usuarioID)
}

func (t *memTx) FindDoctorByUsuario(ctx context.Context, usuarioID uint) (*models.Doctor, error) {
	return t.s.findDoctorByUsuario(usuarioID)
}

func (t *memTx) CreateCita(ctx context.Context, cita *models.Cita) error {
	return t.s.createCita(cita)
}

func (t *memTx) FindCita(ctx context.Context, id uint) (*models.Cita, error) {
	return t.s.findCita(id)
}

func (t *memTx) FindCitaConflict(ctx context.Context, doctorID uint, fecha string) (*models.Cita, error) {
	return t.s.findCitaConflict(doctorID, fecha)
}

func (t *memTx) SearchCitas(ctx context.Context, filter CitaFilter) ([]models.Cita, error) {
	return t.s.searchCitas(filter)
}

func (t *memTx) UpdateCita(ctx context.Context, cita *models.Cita) error {
	return t.s.updateCita(cita)
}

func (t *memTx) Atomically(ctx context.Context, fn func(Store) error) error {
	// Already inside the unit of work; nested calls just run.
	return fn(t)
}

func (s *MemStore) findUsuario(id uint) (*models.Usuario, error) {
	u, ok := s.usuarios[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemStore) findDoctor(id uint) (*models.Doctor, error) {
	d, ok := s.doctores[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (s *MemStore) findCentro(id uint) (*models.Centro, error) {
	c, ok := s.centros[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemStore) findPaciente(id uint) (*models.Paciente, error) {
	p, ok := s.pacientes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemStore) findPacienteByUsuario(usuarioID uint) (*models.Paciente, error) {
	for _, p := range s.pacientes {
		if p.UsuarioID != nil && *p.UsuarioID == usuarioID {
			paciente := p
			return &paciente, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) findDoctorByUsuario(usuarioID uint) (*models.Doctor, error) {
	for _, d := range s.doctores {
		if d.UsuarioID != nil && *d.UsuarioID == usuarioID {
			doctor := d
			return &doctor, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) createCita(cita *models.Cita) error {
	if cita.ID == 0 {
		cita.ID = s.allocID("citas")
	}
	if cita.Estado == "" {
		cita.Estado = models.CitaActiva
	}
	s.citas[cita.ID] = *cita
	return nil
}

func (s *MemStore) findCita(id uint) (*models.Cita, error) {
	c, ok := s.citas[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemStore) findCitaConflict(doctorID uint, fecha string) (*models.Cita, error) {
	for _, c := range s.citas {
		if c.DoctorID == doctorID && c.Fecha == fecha && c.Estado != models.CitaCancelada {
			cita := c
			return &cita, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) searchCitas(filter CitaFilter) ([]models.Cita, error) {
	var citas []models.Cita
	for _, c := range s.citas {
		if filter.DoctorID != nil && c.DoctorID != *filter.DoctorID {
			continue
		}
		if filter.CentroID != nil && c.CentroID != *filter.CentroID {
			continue
		}
		if filter.PacienteID != nil && c.PacienteID != *filter.PacienteID {
			continue
		}
		if filter.Fecha != nil && c.Fecha != *filter.Fecha {
			continue
		}
		if filter.Estado != nil && c.Estado != *filter.Estado {
			continue
		}
		citas = append(citas, c)
	}
	sort.Slice(citas, func(i, j int) bool { return citas[i].ID < citas[j].ID })
	return citas, nil
}

func (s *MemStore) updateCita(cita *models.Cita) error {
	if _, ok := s.citas[cita.ID]; !ok {
		return ErrNotFound
	}
	s.citas[cita.ID] = *cita
	return nil
}
