package handlers

import (
	"errors"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/caiots/vorp-friends/internal/models"
	"github.com/caiots/vorp-friends/internal/repositories"
)

// UserHandler handles profile sync, user search and bio updates
type UserHandler struct {
	userRepository repositories.UserRepository
	authClient     *auth.Client // nil when running with dev tokens
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, authClient *auth.Client) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		authClient:     authClient,
	}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.POST("/auth/sync", h.SyncProfile)
	g.GET("/users/search", h.SearchUsers)
	g.POST("/user/update-bio", h.UpdateBio)
}

// SyncProfile upserts the caller's local profile. With Firebase configured
// the profile comes from the identity provider's record; on the dev token
// path the request body supplies the fields instead.
func (h *UserHandler) SyncProfile(c echo.Context) error {
	userID := currentUserID(c)

	var req models.SyncProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	profile := &models.UserProfile{
		UID:         userID,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Avatar:      req.Avatar,
	}

	if h.authClient != nil {
		record, err := h.authClient.GetUser(c.Request().Context(), userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Falha ao consultar o provedor de identidade")
		}
		if at := strings.Index(record.Email, "@"); at > 0 {
			profile.Username = record.Email[:at]
		}
		profile.DisplayName = record.DisplayName
		profile.Avatar = record.PhotoURL
	}

	if profile.Username == "" {
		profile.Username = "user"
	}
	if profile.DisplayName == "" {
		profile.DisplayName = "Usuário"
	}

	if err := h.userRepository.Upsert(profile); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    profile.ToInfo(),
	})
}

// SearchUsers finds users by username or display name. Queries shorter
// than 2 characters return an empty list with a hint instead of an error.
func (h *UserHandler) SearchUsers(c echo.Context) error {
	userID := currentUserID(c)
	query := strings.TrimSpace(c.QueryParam("q"))

	if len([]rune(query)) < 2 {
		return c.JSON(http.StatusOK, echo.Map{
			"users":   []models.UserInfo{},
			"message": "Digite pelo menos 2 caracteres para pesquisar",
		})
	}

	profiles, err := h.userRepository.Search(query, userID, 20)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	users := make([]models.UserInfo, 0, len(profiles))
	for i := range profiles {
		users = append(users, profiles[i].ToInfo())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"users": users,
		"total": len(users),
	})
}

// UpdateBio sets the caller's profile bio. The profile must have been
// synced first.
func (h *UserHandler) UpdateBio(c echo.Context) error {
	userID := currentUserID(c)

	var req models.UpdateBioRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.userRepository.GetByUID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Usuário não encontrado")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.userRepository.UpdateBio(userID, req.Bio); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"ok":  true,
		"bio": req.Bio,
	})
}
