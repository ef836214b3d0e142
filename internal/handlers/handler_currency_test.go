package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fxmirror/fxmirror/internal/apperrors"
	"github.com/fxmirror/fxmirror/internal/core/domain"
	portssvc "github.com/fxmirror/fxmirror/internal/core/ports/services"
	"github.com/fxmirror/fxmirror/internal/dto"
	"github.com/fxmirror/fxmirror/internal/handlers"
	"github.com/fxmirror/fxmirror/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock CurrencyService ---

type MockCurrencyService struct {
	mock.Mock
}

var _ portssvc.CurrencySvcFacade = (*MockCurrencyService)(nil)

func (m *MockCurrencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	var set []domain.Currency
	if args.Get(0) != nil {
		set = args.Get(0).([]domain.Currency)
	}
	return set, args.Error(1)
}

func (m *MockCurrencyService) GetCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	args := m.Called(ctx, code)
	var currency *domain.Currency
	if args.Get(0) != nil {
		currency = args.Get(0).(*domain.Currency)
	}
	return currency, args.Error(1)
}

func (m *MockCurrencyService) Convert(ctx context.Context, req dto.ConvertRequest) (*dto.ConvertResponse, error) {
	args := m.Called(ctx, req)
	var resp *dto.ConvertResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*dto.ConvertResponse)
	}
	return resp, args.Error(1)
}

func (m *MockCurrencyService) UpdateCurrency(ctx context.Context, code string, req dto.UpdateCurrencyRequest) (*domain.Currency, error) {
	args := m.Called(ctx, code, req)
	var currency *domain.Currency
	if args.Get(0) != nil {
		currency = args.Get(0).(*domain.Currency)
	}
	return currency, args.Error(1)
}

func (m *MockCurrencyService) DeleteCurrency(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

// --- Test Suite ---

type CurrencyHandlerTestSuite struct {
	suite.Suite
	router  *gin.Engine
	service *MockCurrencyService
}

func (s *CurrencyHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.service = new(MockCurrencyService)
	s.router = gin.New()

	cfg := &config.Config{IsProduction: true}
	container := &portssvc.ServiceContainer{Currency: s.service}
	handlers.RegisterRoutes(s.router, cfg, container)
}

func (s *CurrencyHandlerTestSuite) perform(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func sampleCurrency() *domain.Currency {
	return &domain.Currency{
		ID:       1,
		Code:     "USD",
		Rate:     decimal.RequireFromString("1.1057"),
		AsOfDate: time.Date(2025, 4, 4, 0, 0, 0, 0, time.UTC),
	}
}

func (s *CurrencyHandlerTestSuite) TestHealthCheck() {
	w := s.perform(http.MethodGet, "/health", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("OK", w.Body.String())
}

func (s *CurrencyHandlerTestSuite) TestListCurrencies() {
	set := []domain.Currency{*sampleCurrency()}
	s.service.On("ListCurrencies", mock.Anything).Return(set, nil).Once()

	w := s.perform(http.MethodGet, "/api/v1/currencies", nil)

	s.Require().Equal(http.StatusOK, w.Code)
	var resp []dto.CurrencyResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().Len(resp, 1)
	s.Equal("USD", resp[0].Code)
	s.Equal("1.1057000", resp[0].Rate)
	s.Equal("2025-04-04", resp[0].AsOfDate)
	s.service.AssertExpectations(s.T())
}

func (s *CurrencyHandlerTestSuite) TestListCurrenciesUpstreamFailure() {
	s.service.On("ListCurrencies", mock.Anything).
		Return(nil, fmt.Errorf("%w: feed returned status 503", apperrors.ErrUpstream)).Once()

	w := s.perform(http.MethodGet, "/api/v1/currencies", nil)

	s.Equal(http.StatusBadGateway, w.Code)
}

func (s *CurrencyHandlerTestSuite) TestGetCurrencyByCode() {
	s.service.On("GetCurrencyByCode", mock.Anything, "USD").Return(sampleCurrency(), nil).Once()

	w := s.perform(http.MethodGet, "/api/v1/currencies/USD", nil)

	s.Require().Equal(http.StatusOK, w.Code)
	var resp dto.CurrencyResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("USD", resp.Code)
	s.False(resp.ManuallyEdited)
}

func (s *CurrencyHandlerTestSuite) TestGetCurrencyByCodeNotFound() {
	s.service.On("GetCurrencyByCode", mock.Anything, "XXX").
		Return(nil, fmt.Errorf("%w: currency XXX", apperrors.ErrNotFound)).Once()

	w := s.perform(http.MethodGet, "/api/v1/currencies/XXX", nil)

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *CurrencyHandlerTestSuite) TestUpdateCurrency() {
	updated := sampleCurrency()
	updated.Rate = decimal.RequireFromString("2.9328321")
	updated.ManuallyEdited = true
	s.service.On("UpdateCurrency", mock.Anything, "USD", mock.AnythingOfType("dto.UpdateCurrencyRequest")).
		Return(updated, nil).Once()

	w := s.perform(http.MethodPatch, "/api/v1/currencies/USD", gin.H{"rate": "2.9328321"})

	s.Require().Equal(http.StatusOK, w.Code)
	var resp dto.CurrencyResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("2.9328321", resp.Rate)
	s.True(resp.ManuallyEdited)
}

func (s *CurrencyHandlerTestSuite) TestUpdateCurrencyBadDateRejectedByBinding() {
	w := s.perform(http.MethodPatch, "/api/v1/currencies/USD", gin.H{"asOfDate": "04-04-2025"})

	s.Equal(http.StatusBadRequest, w.Code)
	s.service.AssertNotCalled(s.T(), "UpdateCurrency", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CurrencyHandlerTestSuite) TestUpdateCurrencyValidationError() {
	s.service.On("UpdateCurrency", mock.Anything, "USD", mock.AnythingOfType("dto.UpdateCurrencyRequest")).
		Return(nil, fmt.Errorf("%w: no updatable fields provided", apperrors.ErrValidation)).Once()

	w := s.perform(http.MethodPatch, "/api/v1/currencies/USD", gin.H{})

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *CurrencyHandlerTestSuite) TestDeleteCurrency() {
	s.service.On("DeleteCurrency", mock.Anything, "USD").Return(nil).Once()

	w := s.perform(http.MethodDelete, "/api/v1/currencies/USD", nil)

	s.Require().Equal(http.StatusNoContent, w.Code)
	s.Empty(w.Body.String())
	s.service.AssertExpectations(s.T())
}

func (s *CurrencyHandlerTestSuite) TestDeleteCurrencyNotFound() {
	s.service.On("DeleteCurrency", mock.Anything, "XXX").
		Return(fmt.Errorf("%w: currency XXX", apperrors.ErrNotFound)).Once()

	w := s.perform(http.MethodDelete, "/api/v1/currencies/XXX", nil)

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *CurrencyHandlerTestSuite) TestConvert() {
	s.service.On("Convert", mock.Anything, mock.AnythingOfType("dto.ConvertRequest")).
		Return(&dto.ConvertResponse{Result: "700.9134485"}, nil).Once()

	w := s.perform(http.MethodPost, "/api/v1/currencies/convert", gin.H{
		"fromCurrency": "USD",
		"toCurrency":   "TRY",
		"amount":       "20",
	})

	s.Require().Equal(http.StatusOK, w.Code)
	var resp dto.ConvertResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("700.9134485", resp.Result)
}

func (s *CurrencyHandlerTestSuite) TestConvertIdenticalCurrencies() {
	s.service.On("Convert", mock.Anything, mock.AnythingOfType("dto.ConvertRequest")).
		Return(nil, fmt.Errorf("%w: identical source and target currencies", apperrors.ErrValidation)).Once()

	w := s.perform(http.MethodPost, "/api/v1/currencies/convert", gin.H{
		"fromCurrency": "USD",
		"toCurrency":   "USD",
		"amount":       "5",
	})

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *CurrencyHandlerTestSuite) TestConvertMalformedCodeRejectedByBinding() {
	w := s.perform(http.MethodPost, "/api/v1/currencies/convert", gin.H{
		"fromCurrency": "US",
		"toCurrency":   "TRY",
		"amount":       "5",
	})

	s.Equal(http.StatusBadRequest, w.Code)
	s.service.AssertNotCalled(s.T(), "Convert", mock.Anything, mock.Anything)
}

func (s *CurrencyHandlerTestSuite) TestConvertMissingAmountRejectedByBinding() {
	w := s.perform(http.MethodPost, "/api/v1/currencies/convert", gin.H{
		"fromCurrency": "USD",
		"toCurrency":   "TRY",
	})

	s.Equal(http.StatusBadRequest, w.Code)
	s.service.AssertNotCalled(s.T(), "Convert", mock.Anything, mock.Anything)
}

func TestCurrencyHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(CurrencyHandlerTestSuite))
}
