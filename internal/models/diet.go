package models

import "time"

// Diet is a single meal record owned by exactly one user.
type Diet struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string    `json:"userId" gorm:"type:varchar(36);index;not null"`
	Name        string    `json:"name" gorm:"type:text;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	IsOnDiet    bool      `json:"isOnDiet" gorm:"column:is_on_diet;not null;default:false"`
	Date        time.Time `json:"date" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName keeps the singular table name used by the original schema.
func (Diet) TableName() string {
	return "diet"
}

// DietMetrics summarizes a user's diet entries.
type DietMetrics struct {
	TotalDiets         int `json:"totalDiets"`
	TotalDietsOnDiet   int `json:"totalDietsOnDiet"`
	TotalDietsOffDiet  int `json:"totalDietsOffDiet"`
	BestOnDietSequence int `json:"bestOnDietSequence"`
}
