package models

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role enum
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleMedico     Role = "medico"
	RoleSecretaria Role = "secretaria"
	RolePaciente   Role = "paciente"
)

// ParseRole maps a stored role string onto the closed Role set.
// The second return value reports whether the string is a known role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleMedico, RoleSecretaria, RolePaciente:
		return Role(s), true
	}
	return "", false
}

// Usuario represents a system account. Its role is fixed at creation;
// there is no role-change operation.
type Usuario struct {
	BaseModel
	Username string `gorm:"uniqueIndex;size:80;not null" json:"username"`
	Password string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	Rol      Role   `gorm:"size:20;not null" json:"rol"`
}

// TableName overrides the default table name
func (Usuario) TableName() string {
	return "usuarios"
}

// BeforeSave rejects any rol outside the closed role set so a bad value
// can never reach the table.
func (u *Usuario) BeforeSave(tx *gorm.DB) error {
	if _, ok := ParseRole(string(u.Rol)); !ok {
		return fmt.Errorf("rol de usuario invalido: %q", u.Rol)
	}
	return nil
}

// SetPassword hashes a password and sets it on the user
func (u *Usuario) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *Usuario) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
