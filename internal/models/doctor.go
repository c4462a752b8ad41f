package models

// Doctor represents a clinician. A doctor may optionally be linked to a
// Usuario account used to log in.
type Doctor struct {
	BaseModel
	UsuarioID    *uint  `gorm:"index" json:"usuarioId,omitempty"`
	Nombre       string `gorm:"size:120;not null" json:"nombre"`
	Especialidad string `gorm:"size:120;not null" json:"especialidad"`
}

// TableName overrides the default table name
func (Doctor) TableName() string {
	return "doctores"
}
