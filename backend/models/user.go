package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name           string `gorm:"not null"`
	Email          string `gorm:"unique;not null"`
	PasswordHash   string `gorm:"not null" json:"-"`
	Bio            string
	ProfilePicture string
	Role           string `gorm:"default:user"` // user, admin
}

// Public returns the fields of a user that are safe to embed in
// responses about other users.
func (u *User) Public() map[string]interface{} {
	return map[string]interface{}{
		"id":              u.ID,
		"name":            u.Name,
		"profile_picture": u.ProfilePicture,
	}
}
