package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/team-task-api/internal/auth"
	"github.com/yukikurage/team-task-api/internal/models"
)

// UserDTO represents a user in API responses. The password hash never leaves
// the service layer.
type UserDTO struct {
	ID        uuid.UUID       `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	LastLogin *time.Time      `json:"last_login"`
	Links     Links           `json:"_links"`
}

func ToUserDTO(user models.User) UserDTO {
	id := user.ID.String()
	links := standardLinks("/users", id)
	links["tasks"] = get("/tasks?assignee_id=" + id)

	return UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
		LastLogin: user.LastLogin,
		Links:     links,
	}
}

func ToUserDTOs(users []models.User) []UserDTO {
	return mapAll(users, ToUserDTO)
}

// LoginResponse is returned by POST /login.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	Links       Links     `json:"_links"`
}

func ToLoginResponse(user models.User, token auth.IssuedToken) LoginResponse {
	return LoginResponse{
		AccessToken: token.Token,
		TokenType:   "Bearer",
		ExpiresAt:   token.ExpiresAt,
		UserID:      user.ID,
		Username:    user.Username,
		Links: Links{
			"self":         post("/login"),
			"user_profile": get("/users/" + user.ID.String()),
			"tasks":        get("/tasks"),
			"teams":        get("/teams"),
			"projects":     get("/projects"),
		},
	}
}
