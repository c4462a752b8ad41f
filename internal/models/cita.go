package models

// EstadoCita represents the status of an appointment
type EstadoCita string

const (
	CitaActiva    EstadoCita = "Activa"
	CitaCancelada EstadoCita = "Cancelada"
)

// Cita represents a scheduled dental appointment. The only mutation it
// ever receives after creation is the one-way Activa -> Cancelada
// transition; date, reason and parties are immutable.
//
// Fecha is an opaque slot token: two citas collide when they carry the
// same doctor and the byte-identical fecha. It is never parsed as a
// calendar date.
type Cita struct {
	BaseModel
	Fecha  string     `gorm:"size:25;not null;index:idx_citas_doctor_fecha" json:"fecha"`
	Motivo string     `gorm:"size:200;not null" json:"motivo"`
	Estado EstadoCita `gorm:"size:20;not null;default:'Activa'" json:"estado"`

	PacienteID      uint `gorm:"not null;index" json:"pacienteId"`
	DoctorID        uint `gorm:"not null;index:idx_citas_doctor_fecha" json:"doctorId"`
	CentroID        uint `gorm:"not null;index" json:"centroId"`
	RegistradaPorID uint `gorm:"not null" json:"registradaPorId"` // audit only, never used for authorization

	// Relations (not always preloaded)
	Paciente      Paciente `gorm:"foreignKey:PacienteID" json:"-"`
	Doctor        Doctor   `gorm:"foreignKey:DoctorID" json:"-"`
	Centro        Centro   `gorm:"foreignKey:CentroID" json:"-"`
	RegistradaPor Usuario  `gorm:"foreignKey:RegistradaPorID" json:"-"`
}

// TableName overrides the default table name
func (Cita) TableName() string {
	return "citas"
}

// IsCancelada reports whether the appointment slot has been released
func (c *Cita) IsCancelada() bool {
	return c.Estado == CitaCancelada
}
