package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"lucidframe/internal/jobs"

	"github.com/labstack/echo/v4"
)

// JobHandler serves job status, summary, and result downloads.
type JobHandler struct {
	registry *jobs.Registry
	tempRoot string
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(registry *jobs.Registry, tempRoot string) *JobHandler {
	return &JobHandler{registry: registry, tempRoot: tempRoot}
}

// Get returns one job
// GET /jobs/:id
func (h *JobHandler) Get(c echo.Context) error {
	job, err := h.registry.Get(c.Param("id"))
	if errors.Is(err, jobs.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, job.ToResponse())
}

// Summary returns per-status counts and the tracked jobs
// GET /jobs
func (h *JobHandler) Summary(c echo.Context) error {
	return c.JSON(http.StatusOK, h.registry.Summarize())
}

// Result serves a completed job's output file
// GET /jobs/:id/result
func (h *JobHandler) Result(c echo.Context) error {
	job, err := h.registry.Get(c.Param("id"))
	if errors.Is(err, jobs.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if job.Status != jobs.StatusCompleted || job.ResultPath == "" {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "result not ready"})
	}

	path, err := resolveUnder(h.tempRoot, job.ResultPath)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid result path"})
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "result file missing"})
	}

	contentType := "application/octet-stream"
	if strings.EqualFold(filepath.Ext(path), ".mp4") {
		contentType = "video/mp4"
	}

	f, err := os.Open(path)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "result file missing"})
	}
	defer f.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	return c.Stream(http.StatusOK, contentType, f)
}

// resolveUnder resolves path and verifies it stays inside root. Result
// paths come from the registry, but the check keeps a corrupted or
// spoofed record from serving arbitrary files.
func resolveUnder(root, path string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.New("path escapes temp root")
	}
	return absPath, nil
}
