package Models

import (
	"gorm.io/gorm"
)

// User is a staff account. Permission levels follow the front-desk roles:
// 1 = staff, 2 = supervisor, 3 = manager, 4 = admin.
type User struct {
	gorm.Model
	Name       string `json:"name" gorm:"not null"`
	Email      string `json:"email" gorm:"uniqueIndex;not null"`
	Password   []byte `json:"-" gorm:"not null"`
	Permission int    `json:"permission" gorm:"default:1"`
	Department string `json:"department" gorm:"type:varchar(50)"`
	IsApproved int    `json:"is_approved" gorm:"default:1"`
}

type RegisterUserRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Permission int    `json:"permission" validate:"gte=0,lte=4"`
	Department string `json:"department"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
