package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User roles. Partners and their commercials see only their own records,
// admin and back-office see everything.
const (
	RoleAdmin             = "admin"
	RoleBackOffice        = "bo"
	RolePartner           = "partner"
	RolePartnerCommercial = "partner_commercial"
)

// User is an account that can log in and act on sales.
type User struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	Name               string    `json:"name" gorm:"size:100"`
	Email              string    `json:"email" gorm:"size:100;uniqueIndex"`
	Password           string    `json:"-" gorm:"size:100"`
	Role               string    `json:"role" gorm:"size:30"`
	Position           string    `json:"position" gorm:"size:50"`
	PartnerID          *uint     `json:"partner_id" gorm:"index"` // set for partner_commercial accounts
	MustChangePassword bool      `json:"must_change_password" gorm:"default:true"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// SetPassword stores a bcrypt hash of the plain password.
func (u *User) SetPassword(plain string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword verifies a plain password against the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// ActingUser identifies who triggered an operation. Every service entry
// point takes one explicitly; there is no ambient current-user state.
type ActingUser struct {
	ID        uint
	Name      string
	Role      string
	PartnerID uint // resolved partner, when the role is partner-scoped
}

// IsStaff reports whether the actor may see all partners' records.
func (a ActingUser) IsStaff() bool {
	return a.Role == RoleAdmin || a.Role == RoleBackOffice
}
