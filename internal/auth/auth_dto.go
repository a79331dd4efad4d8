package auth

type RegisterRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=60"`
	Email      string `json:"email" binding:"required,email"`
	FullName   string `json:"full_name" binding:"required,max=120"`
	Password   string `json:"password" binding:"required,min=8"`
	Role       string `json:"role"`
	Department string `json:"department"`
	IsManager  bool   `json:"is_manager"`
	IsHR       bool   `json:"is_hr"`
}

// LoginRequest accepts either the username or the email in Identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type UserResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	IsManager  bool   `json:"is_manager"`
	IsHR       bool   `json:"is_hr"`
	CreatedAt  string `json:"created_at"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        UserResponse `json:"user"`
}

func mapToResponse(u User) UserResponse {
	return UserResponse{
		ID:         u.ID.String(),
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       u.Role,
		Department: u.Department,
		IsManager:  u.IsManager,
		IsHR:       u.IsHR,
		CreatedAt:  u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
