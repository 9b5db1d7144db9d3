package api

import (
	"context"
	"net/http"

	"FinDash/internal/domain/models"
	"FinDash/internal/service/live"
	xhttp "FinDash/pkg/http"
	xlogger "FinDash/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

type ForecastService interface {
	RevenueForecast(ctx context.Context, offset int) (*models.RevenueForecast, error)
	History(ctx context.Context, limit int) ([]models.ForecastRecord, error)
	DefaultOffset() int
}

// ForecastHandler serves the revenue forecast over HTTP and websocket.
type ForecastHandler struct {
	logger   *xlogger.Logger
	svc      ForecastService
	hub      *live.Hub
	upgrader websocket.Upgrader
}

func NewForecastHandler(logger *xlogger.Logger, svc ForecastService, hub *live.Hub) *ForecastHandler {
	return &ForecastHandler{
		logger: logger,
		svc:    svc,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *ForecastHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/forecast")
	g.GET("/revenue", h.Revenue)
	g.GET("/history", h.History)
	if h.hub != nil {
		e.GET("/ws/forecast", h.Live)
	}
}

func (h *ForecastHandler) Revenue(c echo.Context) error {
	req := &models.ForecastRequest{Offset: h.svc.DefaultOffset()}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.svc.RevenueForecast(c.Request().Context(), req.Offset)
	if err != nil {
		appErr := toAppError(err)
		h.logger.Warn("forecast usecase error", xlogger.Int("offset", req.Offset), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appErr)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.svc.History(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("forecast history error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.ListResponse(c, res, int64(len(res)))
}

// Live upgrades to a websocket, sends the current forecast and then every
// refreshed one.
func (h *ForecastHandler) Live(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}

	var initial []byte
	if f, err := h.svc.RevenueForecast(c.Request().Context(), h.svc.DefaultOffset()); err == nil {
		initial, err = live.Encode("forecast", f)
		if err != nil {
			h.logger.Error("encode initial forecast", xlogger.Error(err))
		}
	} else {
		initial, _ = live.Encode("error", toAppError(err))
	}

	h.hub.Serve(conn, initial)
	return nil
}
