package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fxmirror/fxmirror/internal/apperrors"
	portssvc "github.com/fxmirror/fxmirror/internal/core/ports/services"
	"github.com/fxmirror/fxmirror/internal/dto"
	"github.com/fxmirror/fxmirror/internal/middleware"
	"github.com/gin-gonic/gin"
)

// currencyHandler handles HTTP requests related to currencies.
type currencyHandler struct {
	currencyService portssvc.CurrencySvcFacade
}

// newCurrencyHandler creates a new currencyHandler.
func newCurrencyHandler(cs portssvc.CurrencySvcFacade) *currencyHandler {
	return &currencyHandler{
		currencyService: cs,
	}
}

// registerCurrencyRoutes registers routes related to currencies.
func registerCurrencyRoutes(rg *gin.RouterGroup, currencyService portssvc.CurrencySvcFacade) {
	h := newCurrencyHandler(currencyService)

	currencies := rg.Group("/currencies")
	{
		currencies.GET("", h.listCurrencies)
		currencies.GET("/:code", h.getCurrencyByCode)
		currencies.PUT("/:code", h.updateCurrency)
		currencies.PATCH("/:code", h.updateCurrency)
		currencies.DELETE("/:code", h.deleteCurrency)
		currencies.POST("/convert", h.convert)
	}
}

// listCurrencies godoc
// @Summary List current exchange rates
// @Description Retrieves the active rate set, refreshed from the upstream feed when stale
// @Tags currencies
// @Produce  json
// @Success 200 {array} dto.CurrencyResponse
// @Failure 502 {object} map[string]string "Upstream feed unavailable"
// @Failure 500 {object} map[string]string "Failed to list currencies"
// @Router /currencies [get]
func (h *currencyHandler) listCurrencies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to list currencies")

	currencies, err := h.currencyService.ListCurrencies(c.Request.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrUpstream) {
			logger.Warn("Upstream feed unavailable", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Rate feed unavailable, please retry"})
			return
		}
		logger.Error("Failed to list currencies from service", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list currencies"})
		return
	}

	logger.Info("Currencies listed successfully", slog.Int("count", len(currencies)))
	c.JSON(http.StatusOK, dto.ToListCurrencyResponse(currencies))
}

// getCurrencyByCode godoc
// @Summary Get the rate of one currency
// @Description Retrieves a single active currency by its 3-letter code (case-insensitive)
// @Tags currencies
// @Produce  json
// @Param   code path string true "Currency Code (3 letters)" MinLength(3) MaxLength(3)
// @Success 200 {object} dto.CurrencyResponse
// @Failure 404 {object} map[string]string "Currency not found"
// @Failure 502 {object} map[string]string "Upstream feed unavailable"
// @Router /currencies/{code} [get]
func (h *currencyHandler) getCurrencyByCode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	logger = logger.With(slog.String("currency_code", code))
	logger.Info("Received request to get currency by code")

	currency, err := h.currencyService.GetCurrencyByCode(c.Request.Context(), code)
	if err != nil {
		h.renderError(c, logger, err, "Failed to retrieve currency")
		return
	}

	logger.Info("Currency retrieved successfully")
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(currency))
}

// updateCurrency godoc
// @Summary Update a currency rate
// @Description Applies a manual edit to rate and/or as-of date; the record is excluded from automatic refresh afterwards
// @Tags currencies
// @Accept  json
// @Produce  json
// @Param   code path string true "Currency Code (3 letters)"
// @Param   currency body dto.UpdateCurrencyRequest true "Fields to update"
// @Success 200 {object} dto.CurrencyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Currency not found"
// @Router /currencies/{code} [patch]
func (h *currencyHandler) updateCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	var req dto.UpdateCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateCurrency", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("currency_code", code))
	logger.Info("Received request to update currency")

	updated, err := h.currencyService.UpdateCurrency(c.Request.Context(), code, req)
	if err != nil {
		h.renderError(c, logger, err, "Failed to update currency")
		return
	}

	logger.Info("Currency updated successfully")
	c.JSON(http.StatusOK, dto.ToCurrencyResponse(updated))
}

// deleteCurrency godoc
// @Summary Delete a currency (soft delete)
// @Description Marks a currency deleted; it is retained for the retention window but excluded from all rate queries
// @Tags currencies
// @Produce  json
// @Param   code path string true "Currency Code (3 letters)"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Currency not found"
// @Router /currencies/{code} [delete]
func (h *currencyHandler) deleteCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	code := c.Param("code")

	logger = logger.With(slog.String("currency_code", code))
	logger.Info("Received request to delete currency")

	if err := h.currencyService.DeleteCurrency(c.Request.Context(), code); err != nil {
		h.renderError(c, logger, err, "Failed to delete currency")
		return
	}

	logger.Info("Currency deleted successfully")
	c.Status(http.StatusNoContent)
}

// renderError maps engine errors onto HTTP statuses in one place.
func (h *currencyHandler) renderError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Currency not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Currency not found"})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUpstream):
		logger.Warn("Upstream feed unavailable", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Rate feed unavailable, please retry"})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
