package server

import (
	"bytes"
	"time"

	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// GetSiteMetrics handles GET /api/admin/metrics
func (s *Server) GetSiteMetrics(c *fiber.Ctx) error {
	metrics, err := s.adminService.Metrics(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(metrics)
}

// ExportPosts handles GET /api/admin/export/posts and streams a CSV snapshot
// of every post regardless of status.
func (s *Server) ExportPosts(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := s.adminService.ExportPostsCSV(c.Context(), &buf); err != nil {
		return respondServiceError(c, err)
	}

	filename := "posts-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}

// TriggerPublishSweep handles POST /api/admin/publish/sweep. It runs a sweep
// on demand and reports how many posts were promoted.
func (s *Server) TriggerPublishSweep(c *fiber.Ctx) error {
	promoted, err := s.publisher.Sweep(c.Context(), observability.SweepTriggerManual)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"promoted": promoted,
	})
}
