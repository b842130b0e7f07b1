package dto

import (
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserProfileDTO struct {
	Id       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"fullName"`
	Role     string    `json:"role"`
}

type AuthResponse struct {
	Token string         `json:"token"`
	User  UserProfileDTO `json:"user"`
}

type UserStatsResponse struct {
	TotalConversations int64  `json:"totalConversations"`
	DaysActive         int    `json:"daysActive"`
	TotalUserMessages  int64  `json:"totalUserMessages"`
	MemberSince        string `json:"memberSince"`
	AccountType        string `json:"accountType"`
	Status             string `json:"status"`
}

type UserStatsEnvelope struct {
	Stats UserStatsResponse `json:"stats"`
}
