package models

import "time"

// Role is a granted authority such as ROLE_ADMIN.
type Role struct {
	ID        int64  `gorm:"primaryKey"`
	Authority string `gorm:"type:varchar(40);uniqueIndex;not null"`
}

// User represents a user of the store.
type User struct {
	ID        int64  `gorm:"primaryKey"`
	Username  string `gorm:"uniqueIndex;type:varchar(100);not null"`
	Email     string `gorm:"uniqueIndex;type:varchar(255);not null"`
	Password  string `gorm:"type:varchar(255);not null"`
	Roles     []Role `gorm:"many2many:user_roles"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Authorities returns the names of the user's roles.
func (u *User) Authorities() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Authority)
	}
	return out
}

func (u *User) HasRole(authority string) bool {
	for _, r := range u.Roles {
		if r.Authority == authority {
			return true
		}
	}
	return false
}
