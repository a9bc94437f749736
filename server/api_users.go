package nurseryserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/greenthumb/nursery-api/internal/domains/users/adapters/http/mapper"
	userdomain "github.com/greenthumb/nursery-api/internal/domains/users/domain"
	userports "github.com/greenthumb/nursery-api/internal/domains/users/ports"
	apierrors "github.com/greenthumb/nursery-api/internal/shared/errors"
)

// UserAPI wires HTTP transport with the users bounded context service.
type UserAPI struct {
	service userports.Service
}

// NewUserAPI creates a UserAPI backed by the provided service.
func NewUserAPI(service userports.Service) UserAPI {
	return UserAPI{service: service}
}

// Post /v1/users
// Create a user account (staff/admin path)
func (api *UserAPI) CreateUser(c *gin.Context) {
	var payload userhttpmapper.User
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	user, err := userhttpmapper.ToDomainUser(payload)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	saved, err := api.service.CreateUser(c.Request.Context(), user)
	if err != nil {
		respondUserServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromDomainUser(saved))
}

// Post /v1/users/register
// Self-service customer signup
func (api *UserAPI) RegisterCustomer(c *gin.Context) {
	var payload userhttpmapper.Registration
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	user, err := api.service.RegisterCustomer(c.Request.Context(),
		payload.Username, payload.Password, payload.Email, payload.Phone, payload.Address)
	if err != nil {
		respondUserServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromDomainUser(user))
}

// Post /v1/users/login
// Exchange credentials for a session token
func (api *UserAPI) Login(c *gin.Context) {
	var payload userhttpmapper.Credentials
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	token, err := api.service.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		respondUserServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Post /v1/users/:username/logout
// Invalidate the user's sessions
func (api *UserAPI) Logout(c *gin.Context) {
	api.service.Logout(c.Request.Context(), c.Param("username"))
	c.Status(http.StatusNoContent)
}

// Post /v1/users/:username/password
// Rotate the password after verifying the current one
func (api *UserAPI) ChangePassword(c *gin.Context) {
	var payload userhttpmapper.PasswordChange
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := api.service.ChangePassword(c.Request.Context(), c.Param("username"),
		payload.CurrentPassword, payload.NewPassword); err != nil {
		respondUserServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/users/:username
// Find user by username
func (api *UserAPI) GetUser(c *gin.Context) {
	user, err := api.service.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondUserServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}

// Put /v1/users/:username
// Update a user's profile
func (api *UserAPI) UpdateUser(c *gin.Context) {
	var payload userhttpmapper.User
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	payload.Username = c.Param("username")
	user, err := userhttpmapper.ToDomainUser(payload)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	updated, err := api.service.Update(c.Request.Context(), c.Param("username"), user)
	if err != nil {
		respondUserServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(updated))
}

// Delete /v1/users/:username
// Remove a user account
func (api *UserAPI) DeleteUser(c *gin.Context) {
	if err := api.service.Delete(c.Request.Context(), c.Param("username")); err != nil {
		respondUserServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/users
// List all users
func (api *UserAPI) ListUsers(c *gin.Context) {
	users, err := api.service.List(c.Request.Context())
	if err != nil {
		respondUserServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUserList(users))
}

// Get /v1/users/role/:role
// List users holding a role
func (api *UserAPI) ListUsersByRole(c *gin.Context) {
	users, err := api.service.ListByRole(c.Request.Context(), userdomain.Role(c.Param("role")))
	if err != nil {
		respondUserServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUserList(users))
}

func respondUserServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, userports.ErrNotFound):
		respondProblem(c, apierrors.NewNotFoundProblem("user", c.Param("username")))
	case errors.Is(err, userports.ErrInvalidCredentials):
		respondProblem(c, apierrors.ErrUnauthorized.WithDetail("invalid credentials"))
	case errors.Is(err, userdomain.ErrInvalidUsername),
		errors.Is(err, userdomain.ErrInvalidRole),
		errors.Is(err, userdomain.ErrWeakPassword),
		errors.Is(err, userdomain.ErrInvalidEmail),
		errors.Is(err, userdomain.ErrInvalidPhone),
		errors.Is(err, userdomain.ErrInvalidAddress),
		errors.Is(err, userdomain.ErrEmptyCustomerID):
		respondError(c, http.StatusBadRequest, err)
	default:
		respondError(c, http.StatusInternalServerError, err)
	}
}
