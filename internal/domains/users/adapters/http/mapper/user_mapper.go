package mapper

import (
	"strings"

	userdomain "github.com/greenthumb/nursery-api/internal/domains/users/domain"
)

// User is the transport-layer shape exchanged with API clients. Password is
// accepted on writes and never echoed back.
type User struct {
	ID         string `json:"userId,omitempty"`
	Username   string `json:"username"`
	Password   string `json:"password,omitempty"`
	Role       string `json:"role"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	CustomerID string `json:"customerId,omitempty"`
	Address    string `json:"address,omitempty"`
}

// Registration is the self-service customer signup payload.
type Registration struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PasswordChange carries a password rotation request.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// ToDomainUser converts a transport user into the domain model, hashing the
// supplied password. ID and password may be empty: the application layer
// generates missing IDs on create and keeps the stored hash on update.
func ToDomainUser(user User) (*userdomain.User, error) {
	u := &userdomain.User{ID: strings.TrimSpace(user.ID)}
	if err := u.SetUsername(user.Username); err != nil {
		return nil, err
	}
	if err := u.SetRole(userdomain.Role(user.Role)); err != nil {
		return nil, err
	}
	if user.Password != "" {
		if err := u.SetPassword(user.Password); err != nil {
			return nil, err
		}
	}
	if user.Email != "" || user.Phone != "" {
		if err := u.UpdateContact(user.Email, user.Phone); err != nil {
			return nil, err
		}
	}
	u.CustomerID = strings.TrimSpace(user.CustomerID)
	if user.Address != "" {
		if err := u.UpdateAddress(user.Address); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// FromDomainUser converts a domain user to the transport representation.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:         user.ID,
		Username:   user.Username,
		Role:       string(user.Role),
		Email:      user.Email,
		Phone:      user.Phone,
		CustomerID: user.CustomerID,
		Address:    user.Address,
	}
}

// FromDomainUserList maps a slice of domain users.
func FromDomainUserList(users []*userdomain.User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, FromDomainUser(u))
	}
	return out
}
