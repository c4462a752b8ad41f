package models

// Centro represents a care center of the clinic network
type Centro struct {
	BaseModel
	Nombre    string `gorm:"uniqueIndex;size:120;not null" json:"nombre"`
	Direccion string `gorm:"size:200;not null" json:"direccion"`
}

// TableName overrides the default table name
func (Centro) TableName() string {
	return "centros"
}
