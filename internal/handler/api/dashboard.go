package api

import (
	"context"
	"net/http"

	"FinDash/internal/domain/models"
	xhttp "FinDash/pkg/http"
	xlogger "FinDash/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DashboardService is the read side of the dashboard collections.
type DashboardService interface {
	KPIs(ctx context.Context) ([]models.KPI, error)
	Products(ctx context.Context) ([]models.Product, error)
	Transactions(ctx context.Context, limit int) ([]models.Transaction, error)
	Summary(ctx context.Context) (*models.DashboardSummary, error)
}

// DashboardHandler serves the collection endpoints under the paths the
// dashboard client already uses.
type DashboardHandler struct {
	logger *xlogger.Logger
	svc    DashboardService
}

func NewDashboardHandler(logger *xlogger.Logger, svc DashboardService) *DashboardHandler {
	return &DashboardHandler{logger: logger, svc: svc}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	get := func(path string, fn echo.HandlerFunc) {
		e.GET(path, fn)
		e.GET(path+"/", fn)
	}
	get("/kpi/kpis", h.KPIs)
	get("/product/products", h.Products)
	get("/transaction/transactions", h.Transactions)
	get("/dashboard/summary", h.Summary)
}

func (h *DashboardHandler) KPIs(c echo.Context) error {
	res, err := h.svc.KPIs(c.Request().Context())
	if err != nil {
		return h.fail(c, "kpis", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardHandler) Products(c echo.Context) error {
	res, err := h.svc.Products(c.Request().Context())
	if err != nil {
		return h.fail(c, "products", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardHandler) Transactions(c echo.Context) error {
	req := &models.TransactionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.svc.Transactions(c.Request().Context(), req.Limit)
	if err != nil {
		return h.fail(c, "transactions", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardHandler) Summary(c echo.Context) error {
	res, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		return h.fail(c, "summary", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardHandler) fail(c echo.Context, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status == http.StatusInternalServerError {
		h.logger.Error(op+" usecase error", xlogger.Error(err))
	} else {
		h.logger.Warn(op+" usecase error", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}
