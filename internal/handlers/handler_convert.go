package handlers

import (
	"log/slog"
	"net/http"

	"github.com/fxmirror/fxmirror/internal/dto"
	"github.com/fxmirror/fxmirror/internal/middleware"
	"github.com/gin-gonic/gin"
)

// convert godoc
// @Summary Convert between currencies
// @Description Converts an amount between two currencies at the current rates; the base currency (EUR) needs no stored record
// @Tags currencies
// @Accept  json
// @Produce  json
// @Param   conversion body dto.ConvertRequest true "Conversion request"
// @Success 200 {object} dto.ConvertResponse
// @Failure 400 {object} map[string]string "Identical currencies or invalid input"
// @Failure 404 {object} map[string]string "Currency not found"
// @Failure 502 {object} map[string]string "Upstream feed unavailable"
// @Router /currencies/convert [post]
func (h *currencyHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Convert", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(
		slog.String("from_currency", req.FromCurrency),
		slog.String("to_currency", req.ToCurrency),
	)
	logger.Info("Received conversion request")

	result, err := h.currencyService.Convert(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, logger, err, "Failed to convert")
		return
	}

	logger.Info("Conversion completed", slog.String("result", result.Result))
	c.JSON(http.StatusOK, result)
}
