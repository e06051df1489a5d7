package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kurihiro0119/github-org-repo-access/internal/audit"
	apperrors "github.com/kurihiro0119/github-org-repo-access/internal/errors"
	"github.com/kurihiro0119/github-org-repo-access/internal/export"
)

// Enumerator runs an enumeration pass
type Enumerator interface {
	Enumerate(ctx context.Context, orgs []string) (*audit.Report, error)
}

// EnumeratorFactory builds an enumerator for the options of one request
type EnumeratorFactory func(options audit.Options) Enumerator

// Handler handles API requests
type Handler struct {
	newEnumerator EnumeratorFactory
	logger        *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(factory EnumeratorFactory, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		newEnumerator: factory,
		logger:        logger,
	}
}

// HealthCheck returns the health status
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// GetOrgAccess returns the access report of one organization
// GET /api/v1/orgs/:org/access
func (h *Handler) GetOrgAccess(c *gin.Context) {
	h.respondAccess(c, []string{c.Param("org")})
}

// GetAccess returns the access report of several organizations
// GET /api/v1/access?org=a&org=b
func (h *Handler) GetAccess(c *gin.Context) {
	var orgs []string
	for _, value := range c.QueryArray("org") {
		for _, org := range strings.Split(value, ",") {
			if org = strings.TrimSpace(org); org != "" {
				orgs = append(orgs, org)
			}
		}
	}
	if len(orgs) == 0 {
		respondError(c, apperrors.NewBadRequestError("at least one org query parameter is required"))
		return
	}
	h.respondAccess(c, orgs)
}

func (h *Handler) respondAccess(c *gin.Context, orgs []string) {
	options, err := parseOptions(c)
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := h.newEnumerator(options).Enumerate(c.Request.Context(), orgs)
	if err != nil {
		h.logger.Warn("Enumeration failed", zap.Strings("orgs", orgs), zap.Error(err))
		respondError(c, err)
		return
	}

	exportOpts := export.Options{IncludeMaintainers: options.IncludeMaintainers}
	switch c.DefaultQuery("format", "json") {
	case "csv":
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Status(http.StatusOK)
		if err := export.WriteCSV(c.Writer, report.Results, exportOpts); err != nil {
			h.logger.Error("Failed to write CSV response", zap.Error(err))
		}
	default:
		failures := make([]gin.H, 0, len(report.Failures))
		for _, f := range report.Failures {
			failures = append(failures, gin.H{"org": f.Org, "error": f.Err.Error()})
		}
		body := gin.H{"data": report.Results}
		if len(failures) > 0 {
			body["failures"] = failures
		}
		c.JSON(http.StatusOK, body)
	}
}

// parseOptions reads enumeration options from query parameters
func parseOptions(c *gin.Context) (audit.Options, error) {
	options := audit.DefaultOptions()

	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "csv" {
		return options, apperrors.NewBadRequestError("format must be 'json' or 'csv'")
	}

	flags := []struct {
		name   string
		target *bool
	}{
		{"maintainers", &options.IncludeMaintainers},
		{"profiles", &options.ResolveProfiles},
		{"continue_on_error", &options.ContinueOnError},
	}
	for _, flag := range flags {
		raw, ok := c.GetQuery(flag.name)
		if !ok {
			continue
		}
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return options, apperrors.NewBadRequestError(flag.name + " must be a boolean")
		}
		*flag.target = value
	}

	return options, nil
}

// respondError writes an error response
func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.StatusCode(err), gin.H{
		"error": gin.H{
			"code":    apperrors.CodeOf(err),
			"message": err.Error(),
		},
	})
}
