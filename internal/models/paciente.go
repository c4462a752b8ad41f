package models

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// EstadoPaciente represents the activity status of a patient
type EstadoPaciente string

const (
	PacienteActivo   EstadoPaciente = "ACTIVO"
	PacienteInactivo EstadoPaciente = "INACTIVO"
)

// Paciente represents a patient of the clinic network. A patient may
// optionally be linked to a Usuario account; at most one Paciente per Usuario.
type Paciente struct {
	BaseModel
	UsuarioID *uint          `gorm:"uniqueIndex" json:"usuarioId,omitempty"`
	Nombre    string         `gorm:"size:120;not null" json:"nombre"`
	Telefono  string         `gorm:"size:30;not null" json:"telefono"`
	Estado    EstadoPaciente `gorm:"size:10;not null;default:'ACTIVO'" json:"estado"`
}

// TableName overrides the default table name
func (Paciente) TableName() string {
	return "pacientes"
}

// BeforeSave rejects any estado outside the two-value set so a bad value
// can never reach the table. An unset estado takes the ACTIVO default.
func (p *Paciente) BeforeSave(tx *gorm.DB) error {
	if p.Estado == "" {
		p.Estado = PacienteActivo
		return nil
	}
	estado := EstadoPaciente(strings.ToUpper(string(p.Estado)))
	if estado != PacienteActivo && estado != PacienteInactivo {
		return fmt.Errorf("estado de paciente invalido: %q", p.Estado)
	}
	p.Estado = estado
	return nil
}

// IsActivo reports whether the patient can receive new appointments
func (p *Paciente) IsActivo() bool {
	return p.Estado == PacienteActivo
}
