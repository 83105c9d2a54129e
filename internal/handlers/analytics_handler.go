package handlers

import (
	"errors"
	"net/http"

	"expense-tracker/internal/analytics"
	"expense-tracker/internal/dto"
	apierrors "expense-tracker/internal/errors"
	"expense-tracker/internal/services"

	"github.com/labstack/echo/v4"
)

// AnalyticsHandler serves the dashboard statistics and trend endpoints
type AnalyticsHandler struct {
	analyticsService services.AnalyticsServiceInterface
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService services.AnalyticsServiceInterface) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetDashboardStats returns the monthly report for the authenticated user
// @Summary Monthly dashboard statistics
// @Description Total spent, previous month total, trend, category breakdown and daily series for one calendar month.
// @Description When month or year is omitted, both default to the current month.
// @Tags Analytics
// @Security BearerAuth
// @Produce json
// @Param month query int false "Month (1-12)"
// @Param year query int false "Year"
// @Success 200 {object} dto.DashboardStatsResponse "Monthly report"
// @Failure 400 {object} errors.ErrorResponse "ANALYTICS_001 - Invalid month or year"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /dashboard/stats [get]
func (h *AnalyticsHandler) GetDashboardStats(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	month, ok := getIntQueryParam(c, "month")
	if !ok {
		return SendError(c, apierrors.AnalyticsInvalidPeriod, apierrors.WithDetails("month must be an integer"))
	}

	year, ok := getIntQueryParam(c, "year")
	if !ok {
		return SendError(c, apierrors.AnalyticsInvalidPeriod, apierrors.WithDetails("year must be an integer"))
	}

	report, err := h.analyticsService.GetMonthlyReport(c.Request().Context(), userID, services.PeriodQuery{
		Month: month,
		Year:  year,
	})
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidMonth) || errors.Is(err, analytics.ErrInvalidYear) {
			return SendError(c, apierrors.AnalyticsInvalidPeriod, apierrors.WithDetails(err.Error()))
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ToDashboardStatsResponse(report))
}

// GetTrends returns per-month totals and the category split over a trailing span
// @Summary Spending trends
// @Description One total per calendar month, oldest first and ending with the current month, plus the category split of the same window.
// @Tags Analytics
// @Security BearerAuth
// @Produce json
// @Param months query int false "Number of months (1-60, default 12)"
// @Success 200 {object} dto.SpendingTrendsResponse "Trend series"
// @Failure 400 {object} errors.ErrorResponse "ANALYTICS_001 - Invalid month count"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /dashboard/trends [get]
func (h *AnalyticsHandler) GetTrends(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	months, ok := getIntQueryParam(c, "months")
	if !ok {
		return SendError(c, apierrors.AnalyticsInvalidPeriod, apierrors.WithDetails("months must be an integer"))
	}

	trends, err := h.analyticsService.GetSpendingTrends(c.Request().Context(), userID, services.TrendQuery{Months: months})
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidMonthCount) {
			return SendError(c, apierrors.AnalyticsInvalidPeriod, apierrors.WithDetails(err.Error()))
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.ToSpendingTrendsResponse(trends))
}
