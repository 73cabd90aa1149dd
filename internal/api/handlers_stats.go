// handlers_stats.go - Processing log summary
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// StatsHandlerImpl implements the StatsHandler interface
type StatsHandlerImpl struct {
	source StatsSource
}

// NewStatsHandler creates a stats handler over source
func NewStatsHandler(source StatsSource) StatsHandler {
	return &StatsHandlerImpl{source: source}
}

// HandleStats returns counts per outcome and the mean processing time
func (h *StatsHandlerImpl) HandleStats(c echo.Context) error {
	stats, err := h.source.Stats(c.Request().Context())
	if err != nil {
		return NewInternalError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
