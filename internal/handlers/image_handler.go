package handlers

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/caiots/vorp-friends/internal/imaging"
	"github.com/caiots/vorp-friends/internal/models"
)

// ImageHandler proxies image traffic between clients and the hosted image
// service, so the service token never reaches the browser
type ImageHandler struct {
	images *imaging.Client
}

// NewImageHandler creates a new ImageHandler
func NewImageHandler(images *imaging.Client) *ImageHandler {
	return &ImageHandler{images: images}
}

// RegisterImageRoutes registers image proxy routes
func (h *ImageHandler) RegisterImageRoutes(g *echo.Group) {
	g.POST("/images/upload", h.UploadImages)
	g.GET("/images/:imageId/download", h.DownloadImage)
}

// UploadImages forwards multipart image files to the hosted service and
// returns the normalized references
func (h *ImageHandler) UploadImages(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	files := form.File["images"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Nenhuma imagem enviada")
	}

	refs := make([]models.ImageRef, 0, len(files))
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		ref, err := h.images.Upload(c.Request().Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadGateway, "Falha ao enviar imagem")
		}
		refs = append(refs, models.ImageRef{UUID: ref.UUID, URL: ref.URL})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"images":  refs,
	})
}

// DownloadImage streams an image body from the hosted service, preserving
// its content type
func (h *ImageHandler) DownloadImage(c echo.Context) error {
	body, contentType, err := h.images.Download(c.Request().Context(), c.Param("imageId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "Falha ao baixar imagem")
	}
	defer body.Close()

	return c.Stream(http.StatusOK, contentType, body)
}
