package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"expense-tracker/internal/analytics"
	"expense-tracker/internal/dto"
	"expense-tracker/internal/models"
	"expense-tracker/internal/services"
	"expense-tracker/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AnalyticsHandlerTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	mockService *service_mocks.MockAnalyticsServiceInterface
	handler     *AnalyticsHandler
	echo        *echo.Echo
	userID      uuid.UUID
}

func TestAnalyticsHandlerSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsHandlerTestSuite))
}

func (s *AnalyticsHandlerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = service_mocks.NewMockAnalyticsServiceInterface(s.ctrl)
	s.handler = NewAnalyticsHandler(s.mockService)
	s.echo = echo.New()
	s.userID = uuid.New()
}

func (s *AnalyticsHandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AnalyticsHandlerTestSuite) newContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.Set("user_id", s.userID)
	return c, rec
}

func marchReport() *models.MonthlyReport {
	daily := make([]decimal.Decimal, 31)
	for i := range daily {
		daily[i] = decimal.Zero
	}
	daily[4] = decimal.RequireFromString("40")
	daily[19] = decimal.RequireFromString("60")

	return &models.MonthlyReport{
		Year:           2024,
		Month:          time.March,
		TotalSpent:     decimal.RequireFromString("100"),
		PrevTotalSpent: decimal.RequireFromString("80"),
		Trend: models.Trend{
			Value:      decimal.RequireFromString("25"),
			IsIncrease: true,
			IsPositive: false,
		},
		CategoryBreakdown: []models.CategoryAmount{
			{Category: "Transport", Amount: decimal.RequireFromString("60")},
			{Category: "Food", Amount: decimal.RequireFromString("40")},
		},
		DailyStats: daily,
	}
}

func (s *AnalyticsHandlerTestSuite) TestGetDashboardStats_ExplicitPeriod() {
	c, rec := s.newContext("/api/v1/dashboard/stats?month=3&year=2024")

	s.mockService.EXPECT().
		GetMonthlyReport(gomock.Any(), s.userID, gomock.Any()).
		DoAndReturn(func(_ interface{}, _ uuid.UUID, query services.PeriodQuery) (*models.MonthlyReport, error) {
			s.Require().NotNil(query.Month)
			s.Require().NotNil(query.Year)
			s.Equal(3, *query.Month)
			s.Equal(2024, *query.Year)
			return marchReport(), nil
		})

	err := s.handler.GetDashboardStats(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.DashboardStatsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(3, resp.Month)
	s.Equal(2024, resp.Year)
	s.Equal("100.00", resp.TotalSpent)
	s.Equal("80.00", resp.PrevTotalSpent)
	s.Equal(dto.TrendResponse{Value: "25.0", IsIncrease: true, IsPositive: false}, resp.Trend)
	s.Equal([]dto.CategoryAmountResponse{
		{Category: "Transport", Amount: "60.00"},
		{Category: "Food", Amount: "40.00"},
	}, resp.CategoryBreakdown)
	s.Len(resp.DailyStats, 31)
	s.Equal("40.00", resp.DailyStats[4])
	s.Equal("0.00", resp.DailyStats[0])
}

func (s *AnalyticsHandlerTestSuite) TestGetDashboardStats_MissingParamsArePassedThrough() {
	c, rec := s.newContext("/api/v1/dashboard/stats?month=3")

	s.mockService.EXPECT().
		GetMonthlyReport(gomock.Any(), s.userID, gomock.Any()).
		DoAndReturn(func(_ interface{}, _ uuid.UUID, query services.PeriodQuery) (*models.MonthlyReport, error) {
			s.NotNil(query.Month)
			s.Nil(query.Year)
			return marchReport(), nil
		})

	err := s.handler.GetDashboardStats(c)
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *AnalyticsHandlerTestSuite) TestGetDashboardStats_EmptyBreakdownIsArray() {
	c, rec := s.newContext("/api/v1/dashboard/stats")

	report := marchReport()
	report.CategoryBreakdown = []models.CategoryAmount{}
	s.mockService.EXPECT().GetMonthlyReport(gomock.Any(), s.userID, services.PeriodQuery{}).Return(report, nil)

	err := s.handler.GetDashboardStats(c)
	s.NoError(err)
	s.Contains(rec.Body.String(), `"categoryBreakdown":[]`)
}

func (s *AnalyticsHandlerTestSuite) TestGetDashboardStats_NonNumericParams() {
	for _, target := range []string{
		"/api/v1/dashboard/stats?month=march",
		"/api/v1/dashboard/stats?month=3&year=twenty",
	} {
		s.Run(target, func() {
			c, rec := s.newContext(target)

			err := s.handler.GetDashboardStats(c)
			s.NoError(err)
			s.Equal(http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
			s.Equal("ANALYTICS_001", resp.Error.Code)
		})
	}
}

func (s *AnalyticsHandlerTestSuite) TestGetDashboardStats_OutOfRangePeriod() {
	for _, serviceErr := range []error{analytics.ErrInvalidMonth, analytics.ErrInvalidYear} {
		s.Run(serviceErr.Error(), func() {
			c, rec := s.newContext("/api/v1/dashboard/stats?month=13&year=2024")
			s.mockService.EXPECT().GetMonthlyReport(gomock.Any(), s.userID, gomock.Any()).Return(nil, serviceErr)

			err := s.handler.GetDashboardStats(c)
			s.NoError(err)
			s.Equal(http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
			s.Equal("ANALYTICS_001", resp.Error.Code)
			s.Equal([]string{serviceErr.Error()}, resp.Error.Details)
		})
	}
}

func (s *AnalyticsHandlerTestSuite) TestGetDashboardStats_StoreFailureIsOpaque() {
	c, rec := s.newContext("/api/v1/dashboard/stats?month=3&year=2024")
	s.mockService.EXPECT().
		GetMonthlyReport(gomock.Any(), s.userID, gomock.Any()).
		Return(nil, errors.New("pq: relation \"transactions\" does not exist"))

	err := s.handler.GetDashboardStats(c)
	s.NoError(err)
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.NotContains(rec.Body.String(), "relation")
}

func (s *AnalyticsHandlerTestSuite) TestGetDashboardStats_Unauthenticated() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/stats", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	err := s.handler.GetDashboardStats(c)
	s.NoError(err)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *AnalyticsHandlerTestSuite) TestGetTrends() {
	c, rec := s.newContext("/api/v1/dashboard/trends?months=2")

	s.mockService.EXPECT().
		GetSpendingTrends(gomock.Any(), s.userID, gomock.Any()).
		DoAndReturn(func(_ interface{}, _ uuid.UUID, query services.TrendQuery) (*models.SpendingTrends, error) {
			s.Require().NotNil(query.Months)
			s.Equal(2, *query.Months)
			return &models.SpendingTrends{
				Months: []models.MonthTotal{
					{Year: 2024, Month: time.February, Total: decimal.Zero},
					{Year: 2024, Month: time.March, Total: decimal.RequireFromString("100")},
				},
				CategorySplit: []models.CategoryAmount{{Category: "Food", Amount: decimal.RequireFromString("100")}},
				Total:         decimal.RequireFromString("100"),
			}, nil
		})

	s.NoError(s.handler.GetTrends(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.SpendingTrendsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("100.00", resp.Total)
	s.Equal([]dto.MonthTotalResponse{
		{Year: 2024, Month: 2, Label: "February 2024", Total: "0.00"},
		{Year: 2024, Month: 3, Label: "March 2024", Total: "100.00"},
	}, resp.MonthlyTrend)
	s.Equal([]dto.CategorySplitResponse{{Name: "Food", Value: "100.00"}}, resp.CategorySplit)
}

func (s *AnalyticsHandlerTestSuite) TestGetTrends_DefaultCountIsPassedThrough() {
	c, rec := s.newContext("/api/v1/dashboard/trends")
	s.mockService.EXPECT().
		GetSpendingTrends(gomock.Any(), s.userID, services.TrendQuery{}).
		Return(&models.SpendingTrends{Months: []models.MonthTotal{}, CategorySplit: []models.CategoryAmount{}, Total: decimal.Zero}, nil)

	s.NoError(s.handler.GetTrends(c))
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"categorySplit":[]`)
}

func (s *AnalyticsHandlerTestSuite) TestGetTrends_InvalidCount() {
	c, rec := s.newContext("/api/v1/dashboard/trends?months=dozen")
	s.NoError(s.handler.GetTrends(c))
	s.Equal(http.StatusBadRequest, rec.Code)

	c, rec = s.newContext("/api/v1/dashboard/trends?months=61")
	s.mockService.EXPECT().GetSpendingTrends(gomock.Any(), s.userID, gomock.Any()).Return(nil, analytics.ErrInvalidMonthCount)
	s.NoError(s.handler.GetTrends(c))
	s.Equal(http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("ANALYTICS_001", resp.Error.Code)
	s.Equal([]string{analytics.ErrInvalidMonthCount.Error()}, resp.Error.Details)
}

func (s *AnalyticsHandlerTestSuite) TestGetTrends_StoreFailureIsOpaque() {
	c, rec := s.newContext("/api/v1/dashboard/trends")
	s.mockService.EXPECT().GetSpendingTrends(gomock.Any(), s.userID, gomock.Any()).Return(nil, errors.New("pq: timeout"))

	s.NoError(s.handler.GetTrends(c))
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.NotContains(rec.Body.String(), "pq")
}
