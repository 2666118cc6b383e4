package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"lucidframe/internal/pipeline"

	"github.com/labstack/echo/v4"
)

// ImageHandler serves single-image enhancement requests. These run inline
// and are not gated by the video pipeline's concurrency budget.
type ImageHandler struct {
	processor *pipeline.Processor
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(processor *pipeline.Processor) *ImageHandler {
	return &ImageHandler{processor: processor}
}

// Upscale enhances one uploaded image and streams the PNG back
// POST /image/upscale
func (h *ImageHandler) Upscale(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no file uploaded"})
	}

	opts := pipeline.ImageOptions{Mode: pipeline.ModePhoto, Scale: 2}
	if s := c.FormValue("scale"); s != "" {
		scale, err := strconv.Atoi(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "scale must be 2 or 4"})
		}
		opts.Scale = scale
	}
	if mode := c.FormValue("mode"); mode != "" {
		opts.Mode = mode
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to open file"})
	}
	defer f.Close()

	data, elapsed, err := h.processor.ProcessImage(c.Request().Context(), pipeline.Upload{
		Filename: fh.Filename,
		Reader:   f,
	}, opts)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	c.Response().Header().Set("X-Process-Time", fmt.Sprintf("%.3f", elapsed.Seconds()))
	return c.Blob(http.StatusOK, "image/png", data)
}
