package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/caiots/vorp-friends/internal/location"
)

// LocationHandler proxies place search to the geocoder
type LocationHandler struct {
	locations *location.Client
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(locations *location.Client) *LocationHandler {
	return &LocationHandler{locations: locations}
}

// RegisterLocationRoutes registers location search routes
func (h *LocationHandler) RegisterLocationRoutes(g *echo.Group) {
	g.GET("/locations/search", h.SearchLocations)
}

// SearchLocations searches for places matching the q query param. An empty
// query is an empty result, not an error.
func (h *LocationHandler) SearchLocations(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return c.JSON(http.StatusOK, []location.Place{})
	}

	places, err := h.locations.Search(c.Request().Context(), query)
	if err != nil {
		// Clients always get an array body, even when the geocoder is down.
		return c.JSON(http.StatusBadGateway, []location.Place{})
	}
	if places == nil {
		places = []location.Place{}
	}
	return c.JSON(http.StatusOK, places)
}
