package models

import "time"

// User represents a registered diet tracker user.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SessionID *string   `json:"-" gorm:"column:session_id;uniqueIndex;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash
	Avatar    *string   `json:"avatar,omitempty" gorm:"type:text"`
	Diets     []Diet    `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Session returns the session token bound to the user, or "" when none is set.
func (u *User) Session() string {
	if u.SessionID == nil {
		return ""
	}
	return *u.SessionID
}
