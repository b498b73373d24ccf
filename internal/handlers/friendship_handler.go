package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/caiots/vorp-friends/internal/friendship"
	"github.com/caiots/vorp-friends/internal/identity"
	"github.com/caiots/vorp-friends/internal/models"
	"github.com/caiots/vorp-friends/internal/repositories"
)

// FriendshipHandler handles HTTP requests related to friendships
type FriendshipHandler struct {
	friendshipRepository repositories.FriendshipRepository
	identity             *identity.Service
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(friendshipRepo repositories.FriendshipRepository, identitySvc *identity.Service) *FriendshipHandler {
	return &FriendshipHandler{
		friendshipRepository: friendshipRepo,
		identity:             identitySvc,
	}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.GET("/friends", h.ListFriendships)
	g.POST("/friends", h.SendFriendRequest)
	g.PUT("/friends/:friendshipId", h.RespondFriendRequest)
	g.DELETE("/friends/:friendshipId", h.RemoveFriendship)
	g.GET("/friends/status/:userId", h.GetFriendshipStatus)
}

// ListFriendships lists friendship records where the subject user is either
// side, filtered by status
func (h *FriendshipHandler) ListFriendships(c echo.Context) error {
	userID := currentUserID(c)

	subjectID := c.QueryParam("userId")
	if subjectID == "" {
		subjectID = userID
	}
	status := c.QueryParam("status")
	if status == "" {
		status = models.FriendshipStatusAccepted
	}
	page, limit := parsePagination(c, 20, 100)

	ctx := c.Request().Context()
	records, err := h.friendshipRepository.ListBySubject(ctx, subjectID, status, (page-1)*limit, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	total, err := h.friendshipRepository.CountBySubject(ctx, subjectID, status)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	ids := make([]string, 0, len(records)*2)
	for i := range records {
		ids = append(ids, records[i].RequesterID, records[i].AddresseeID)
	}
	users := h.identity.GetUsers(ctx, ids)

	friendships := make([]models.FriendshipData, 0, len(records))
	for i := range records {
		f := &records[i]
		friendships = append(friendships, models.FriendshipData{
			ID:          f.ID.Hex(),
			RequesterID: f.RequesterID,
			AddresseeID: f.AddresseeID,
			Status:      f.Status,
			Requester:   users[f.RequesterID],
			Addressee:   users[f.AddresseeID],
			CreatedAt:   f.CreatedAt,
			UpdatedAt:   f.UpdatedAt,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"friendships": friendships,
		"pagination": echo.Map{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": (total + limit - 1) / limit,
		},
	})
}

// SendFriendRequest opens a pending friendship towards another user. A
// rejected record may be reopened, but only by the side that rejected; any
// other existing record is a conflict.
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	userID := currentUserID(c)

	var req models.SendFriendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.AddresseeID == userID {
		return echo.NewHTTPError(http.StatusBadRequest, "Você não pode adicionar a si mesmo")
	}

	ctx := c.Request().Context()
	existing, err := h.friendshipRepository.FindBetween(ctx, userID, req.AddresseeID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if existing != nil {
		if !friendship.CanResend(existing, userID) {
			return echo.NewHTTPError(http.StatusBadRequest, "Já existe uma solicitação de amizade entre vocês")
		}
		if err := h.friendshipRepository.Reopen(ctx, existing.ID.Hex(), userID, req.AddresseeID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusCreated, echo.Map{
			"success":      true,
			"friendshipId": existing.ID.Hex(),
			"message":      "Solicitação de amizade enviada",
		})
	}

	record := &models.Friendship{
		RequesterID: userID,
		AddresseeID: req.AddresseeID,
		Status:      models.FriendshipStatusPending,
	}
	if err := h.friendshipRepository.Create(ctx, record); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success":      true,
		"friendshipId": record.ID.Hex(),
		"message":      "Solicitação de amizade enviada",
	})
}

// RespondFriendRequest accepts, rejects or blocks a pending request. Only
// the addressee of a still-pending record can respond; anything else is a
// 404 so callers cannot discover records they are not part of.
func (h *FriendshipHandler) RespondFriendRequest(c echo.Context) error {
	userID := currentUserID(c)
	friendshipID := c.Param("friendshipId")

	var req models.RespondFriendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	status := friendship.RespondStatus(req.Action)
	matched, err := h.friendshipRepository.Respond(c.Request().Context(), friendshipID, userID, status)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !matched {
		return echo.NewHTTPError(http.StatusNotFound, "Solicitação não encontrada")
	}

	messages := map[string]string{
		models.FriendshipStatusAccepted: "Solicitação de amizade aceita",
		models.FriendshipStatusRejected: "Solicitação de amizade rejeitada",
		models.FriendshipStatusBlocked:  "Usuário bloqueado",
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": messages[status],
	})
}

// RemoveFriendship deletes a friendship record. Either party may remove it.
func (h *FriendshipHandler) RemoveFriendship(c echo.Context) error {
	userID := currentUserID(c)
	friendshipID := c.Param("friendshipId")

	matched, err := h.friendshipRepository.Delete(c.Request().Context(), friendshipID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !matched {
		return echo.NewHTTPError(http.StatusNotFound, "Nenhuma amizade")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Amizade removida com sucesso",
	})
}

// GetFriendshipStatus reports the relationship between the caller and
// another user, from the caller's point of view
func (h *FriendshipHandler) GetFriendshipStatus(c echo.Context) error {
	userID := currentUserID(c)
	otherID := c.Param("userId")

	var record *models.Friendship
	if otherID != userID {
		var err error
		record, err = h.friendshipRepository.FindBetween(c.Request().Context(), userID, otherID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, friendship.Resolve(record, userID, otherID))
}
