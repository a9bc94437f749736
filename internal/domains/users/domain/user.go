package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
)

// Role is the closed set of account kinds. Customer-specific fields on User
// are meaningful only when Role is RoleCustomer; callers dispatch by
// switching on Role.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleStaff    Role = "Staff"
	RoleCustomer Role = "Customer"
)

var (
	ErrInvalidRole     = errors.New("role must be Admin, Staff, or Customer")
	ErrInvalidUsername = errors.New("username must be 3-20 letters, digits, or underscores")
	ErrWeakPassword    = errors.New("password must be 6-50 characters with a letter or digit")
	ErrInvalidEmail    = errors.New("email address is malformed")
	ErrInvalidPhone    = errors.New("phone must be 10-15 digits with optional leading '+'")
	ErrInvalidAddress  = errors.New("address must be between 5 and 200 characters")
	ErrEmptyUserID     = errors.New("user id is required")
	ErrEmptyCustomerID = errors.New("customer id is required for customer accounts")
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern    = regexp.MustCompile(`^[+]?[0-9]{10,15}$`)
	alphaNumPattern = regexp.MustCompile(`[a-zA-Z0-9]`)
)

// IsValidRole reports whether the value is a known role.
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleStaff, RoleCustomer:
		return true
	default:
		return false
	}
}

// User is the identity entity. One struct covers all three roles as a
// tagged variant; CustomerID and Address are set only for customers.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	Email        string
	Phone        string

	// Customer-only fields.
	CustomerID string
	Address    string
}

// NewUser builds a user with a freshly hashed password.
func NewUser(id, username, password string, role Role) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyUserID
	}
	u := &User{ID: id}
	if err := u.SetUsername(username); err != nil {
		return nil, err
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	if err := u.SetRole(role); err != nil {
		return nil, err
	}
	return u, nil
}

// SetUsername trims and validates the username.
func (u *User) SetUsername(username string) error {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	u.Username = username
	return nil
}

// SetRole validates and applies the role tag.
func (u *User) SetRole(role Role) error {
	if !IsValidRole(role) {
		return ErrInvalidRole
	}
	u.Role = role
	return nil
}

// SetPassword validates strength and stores a salted digest.
func (u *User) SetPassword(password string) error {
	password = strings.TrimSpace(password)
	if len(password) < 6 || len(password) > 50 || !alphaNumPattern.MatchString(password) {
		return ErrWeakPassword
	}
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return err
	}
	u.PasswordHash = hex.EncodeToString(salt) + ":" + digest(salt, password)
	return nil
}

// CheckPassword compares the supplied credentials with the stored digest.
func (u *User) CheckPassword(password string) bool {
	saltHex, want, ok := strings.Cut(u.PasswordHash, ":")
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	got := digest(salt, strings.TrimSpace(password))
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func digest(salt []byte, password string) string {
	sum := sha256.Sum256(append(append([]byte{}, salt...), []byte(password)...))
	return hex.EncodeToString(sum[:])
}

// UpdateContact applies optional email and phone, validating when present.
func (u *User) UpdateContact(email, phone string) error {
	email = strings.TrimSpace(email)
	if email != "" && !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	phone = strings.TrimSpace(phone)
	if phone != "" && !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}
	u.Email = email
	u.Phone = phone
	return nil
}

// UpdateAddress applies the customer shipping address, validating when present.
func (u *User) UpdateAddress(address string) error {
	address = strings.TrimSpace(address)
	if address != "" {
		if n := len(address); n < 5 || n > 200 {
			return ErrInvalidAddress
		}
	}
	u.Address = address
	return nil
}

// Validate re-applies the core invariants for persistence.
func (u *User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return ErrEmptyUserID
	}
	if !usernamePattern.MatchString(u.Username) {
		return ErrInvalidUsername
	}
	if !IsValidRole(u.Role) {
		return ErrInvalidRole
	}
	if u.Email != "" && !emailPattern.MatchString(u.Email) {
		return ErrInvalidEmail
	}
	if u.Phone != "" && !phonePattern.MatchString(u.Phone) {
		return ErrInvalidPhone
	}
	if u.Role == RoleCustomer && strings.TrimSpace(u.CustomerID) == "" {
		return ErrEmptyCustomerID
	}
	return nil
}
