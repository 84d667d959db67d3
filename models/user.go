package models

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// AuthUser is the identity the backend hands back on login. The backend uses
// the username as the user id.
type AuthUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    Role   `json:"role"`
	IsAdmin bool   `json:"isAdmin"`
}

type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult is the body of POST /auth/login and /auth/admin/login.
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (r LoginResult) User() AuthUser {
	return AuthUser{ID: r.Username, Name: r.Username, Role: r.Role, IsAdmin: r.Role == RoleAdmin}
}
