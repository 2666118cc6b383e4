package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"lucidframe/internal/jobs"
	"lucidframe/internal/pipeline"
	"lucidframe/internal/youtube"

	"github.com/labstack/echo/v4"
)

// VideoHandler handles video enhancement submissions.
type VideoHandler struct {
	processor *pipeline.Processor
	source    *youtube.Client
}

// NewVideoHandler creates a new VideoHandler. source may be nil to disable
// submit-by-URL.
func NewVideoHandler(processor *pipeline.Processor, source *youtube.Client) *VideoHandler {
	return &VideoHandler{processor: processor, source: source}
}

// Upscale handles a video upload
// POST /video/upscale
func (h *VideoHandler) Upscale(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no file uploaded"})
	}

	opts, err := parseOptions(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to open file"})
	}
	defer f.Close()

	return h.submit(c, pipeline.Upload{Filename: fh.Filename, Reader: f}, opts)
}

// UpscaleFromURL downloads a video and runs the same pipeline on it
// POST /video/from-url
func (h *VideoHandler) UpscaleFromURL(c echo.Context) error {
	if h.source == nil {
		return c.JSON(http.StatusNotImplemented, map[string]string{"error": "url submission disabled"})
	}

	url := c.FormValue("url")
	if url == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "url is required"})
	}

	opts, err := parseOptions(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	stream, info, err := h.source.OpenVideoStream(c.Request().Context(), url)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	defer stream.Close()

	return h.submit(c, pipeline.Upload{Filename: info.Filename(), Reader: stream}, opts)
}

func (h *VideoHandler) submit(c echo.Context, upload pipeline.Upload, opts pipeline.Options) error {
	job, err := h.processor.Submit(c.Request().Context(), upload, opts)
	switch {
	case errors.Is(err, jobs.ErrBusy), errors.Is(err, jobs.ErrRegistryFull):
		// Retryable: nothing was allocated.
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": err.Error()})
	case err != nil:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"job_id":  job.ID,
		"status":  job.Status,
		"message": job.Message,
	})
}

func parseOptions(c echo.Context) (pipeline.Options, error) {
	opts := pipeline.Options{Scale: 2}

	if s := c.FormValue("scale"); s != "" {
		scale, err := strconv.Atoi(s)
		if err != nil {
			return opts, errors.New("scale must be 2 or 4")
		}
		opts.Scale = scale
	}

	if v := c.FormValue("interpolate"); v != "" {
		interpolate, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("interpolate must be a boolean")
		}
		opts.Interpolate = interpolate
	}

	return opts, nil
}
