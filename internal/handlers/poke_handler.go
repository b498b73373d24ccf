package handlers

import (
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/caiots/vorp-friends/internal/identity"
	"github.com/caiots/vorp-friends/internal/models"
	"github.com/caiots/vorp-friends/internal/repositories"
)

// PokeHandler handles HTTP requests related to pokes. The clock is a field
// so the sliding rate-limit window can be tested deterministically.
type PokeHandler struct {
	pokeRepository repositories.PokeRepository
	identity       *identity.Service
	now            func() time.Time
}

// NewPokeHandler creates a new PokeHandler
func NewPokeHandler(pokeRepo repositories.PokeRepository, identitySvc *identity.Service) *PokeHandler {
	return &PokeHandler{
		pokeRepository: pokeRepo,
		identity:       identitySvc,
		now:            time.Now,
	}
}

// RegisterPokeRoutes registers poke-related routes
func (h *PokeHandler) RegisterPokeRoutes(g *echo.Group) {
	g.POST("/pokes", h.SendPoke)
	g.GET("/pokes", h.GetPokes)
	g.PATCH("/pokes", h.PokeAction)
}

// SendPoke pokes another user. A repeat poke to the same target inside the
// sliding window is rejected with 429 and the minutes left until the next
// one is allowed.
func (h *PokeHandler) SendPoke(c echo.Context) error {
	userID := currentUserID(c)

	var req models.SendPokeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.TargetUserID == userID {
		return echo.NewHTTPError(http.StatusBadRequest, "Você não pode cutucar a si mesmo")
	}

	ctx := c.Request().Context()
	now := h.now()
	recent, err := h.pokeRepository.FindRecent(ctx, userID, req.TargetUserID, now.Add(-models.PokeWindow))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if recent != nil {
		return c.JSON(http.StatusTooManyRequests, echo.Map{
			"error":            "Você já cutucou este usuário recentemente",
			"remainingMinutes": remainingMinutes(recent.CreatedAt, now),
		})
	}

	poke := &models.Poke{
		FromUserID: userID,
		ToUserID:   req.TargetUserID,
		Seen:       false,
		CreatedAt:  now,
	}
	if err := h.pokeRepository.Create(ctx, poke); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"pokeId":  poke.ID.Hex(),
		"message": "Cutucada enviada com sucesso!",
	})
}

// GetPokes is a multi-view read selected by the type query param: "stats"
// (received total), "canPoke" (window check against targetUserId) and
// "notifications" (latest received pokes with sender info and unseen count)
func (h *PokeHandler) GetPokes(c echo.Context) error {
	userID := currentUserID(c)
	ctx := c.Request().Context()

	switch c.QueryParam("type") {
	case "stats":
		received, err := h.pokeRepository.CountReceived(ctx, userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, echo.Map{"received": received})

	case "canPoke":
		targetID := c.QueryParam("targetUserId")
		if targetID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "Parâmetro targetUserId é obrigatório")
		}
		now := h.now()
		recent, err := h.pokeRepository.FindRecent(ctx, userID, targetID, now.Add(-models.PokeWindow))
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if recent != nil {
			return c.JSON(http.StatusOK, echo.Map{
				"canPoke":          false,
				"remainingMinutes": remainingMinutes(recent.CreatedAt, now),
			})
		}
		return c.JSON(http.StatusOK, echo.Map{"canPoke": true})

	case "notifications":
		pokes, err := h.pokeRepository.ListReceived(ctx, userID, 20)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		unseen, err := h.pokeRepository.CountUnseen(ctx, userID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		ids := make([]string, 0, len(pokes))
		for i := range pokes {
			ids = append(ids, pokes[i].FromUserID)
		}
		users := h.identity.GetUsers(ctx, ids)

		type pokeData struct {
			ID         string          `json:"id"`
			FromUserID string          `json:"fromUserId"`
			FromUser   models.UserInfo `json:"fromUser"`
			Seen       bool            `json:"seen"`
			CreatedAt  time.Time       `json:"createdAt"`
		}
		data := make([]pokeData, 0, len(pokes))
		for i := range pokes {
			p := &pokes[i]
			data = append(data, pokeData{
				ID:         p.ID.Hex(),
				FromUserID: p.FromUserID,
				FromUser:   users[p.FromUserID],
				Seen:       p.Seen,
				CreatedAt:  p.CreatedAt,
			})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"pokes":       data,
			"unseenCount": unseen,
		})
	}

	return echo.NewHTTPError(http.StatusBadRequest, "Parâmetro type inválido")
}

// PokeAction applies a bulk action; markAllSeen is the only one
func (h *PokeHandler) PokeAction(c echo.Context) error {
	userID := currentUserID(c)

	var req models.PokeActionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.pokeRepository.MarkAllSeen(c.Request().Context(), userID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// remainingMinutes is the whole minutes, rounded up, until a poke sent at
// pokedAt leaves the rate-limit window
func remainingMinutes(pokedAt, now time.Time) int {
	remaining := pokedAt.Add(models.PokeWindow).Sub(now)
	if remaining < 0 {
		return 0
	}
	return int(math.Ceil(remaining.Minutes()))
}
