package models

import (
	"time"

	"gorm.io/gorm"
)

// Role IDs: 1 Admin, 2 Finance, 3 Partner (mitra), 4 Client.
const (
	RoleAdmin   uint = 1
	RoleFinance uint = 2
	RolePartner uint = 3
	RoleClient  uint = 4
)

// User merepresentasikan tabel 'users' di database
type User struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	RoleID       uint           `gorm:"not null" json:"role_id"`
	FullName     string         `gorm:"size:100;not null" json:"full_name"`
	Email        string         `gorm:"size:100;index" json:"email"`
	PasswordHash string         `json:"-"` // never sent back to the client
	Phone        string         `gorm:"column:phone_number;size:20;index" json:"phone"`
	FirebaseUID  string         `gorm:"size:128;index" json:"-"`
	FCMToken     string         `gorm:"size:255" json:"-"`
	IsVerified   bool           `gorm:"default:false" json:"is_verified"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Struct untuk menangkap Input Register dari user
type RegisterInput struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	RoleID   uint   `json:"role_id" binding:"omitempty,oneof=3 4"` // self-registration: partner or client
	Phone    string `json:"phone" binding:"required"`
}

// Struct untuk menangkap Input Login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FCMToken string `json:"fcm_token"`
}

// FirebaseLoginInput carries an ID token obtained on the device after phone
// OTP (or any other Firebase sign-in method).
type FirebaseLoginInput struct {
	IDToken  string `json:"id_token" binding:"required"`
	FullName string `json:"full_name"`
	FCMToken string `json:"fcm_token"`
}

type UpdateUserInput struct {
	FullName string `json:"full_name" binding:"omitempty,min=2,max=100"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
}

type PasswordResetInput struct {
	Email string `json:"email" binding:"required,email"`
}
