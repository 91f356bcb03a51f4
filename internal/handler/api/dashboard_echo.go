package api

import (
	"context"
	"errors"
	"time"

	models "SectorVol/internal/domain/models"
	"SectorVol/internal/usecase"
	xhttp "SectorVol/pkg/http"
	xlogger "SectorVol/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DashboardEchoHandler serves the sector dashboard over Echo.
type DashboardEchoHandler struct {
	logger *xlogger.Logger
	dash   *usecase.Dashboard
}

func NewDashboardEchoHandler(logger *xlogger.Logger, dash *usecase.Dashboard) *DashboardEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &DashboardEchoHandler{logger: logger, dash: dash}
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/sectors", h.Sectors)
	g.GET("/dashboard", h.Dashboard)
	g.GET("/performance", h.Performance)
	g.GET("/correlation", h.Correlation)
	g.GET("/volatility", h.Volatility)
	g.GET("/anomalies", h.Anomalies)
}

type seriesResponse struct {
	Sector string        `json:"sector"`
	Start  string        `json:"start"`
	End    string        `json:"end"`
	NoData bool          `json:"no_data"`
	Series models.Series `json:"series"`
}

func (h *DashboardEchoHandler) Sectors(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.SuccessResponse(c, h.dash.Sectors())
}

func (h *DashboardEchoHandler) Dashboard(c echo.Context) error {
	req := &models.DashboardRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	start, end := parseRange(req.Start, req.End)

	res, err := h.dash.Build(c.Request().Context(), usecase.DashboardParams{
		Sector:      req.Sector,
		Start:       start,
		End:         end,
		Correlation: req.Correlation,
		Anomalies:   req.Anomalies,
	})
	if err != nil {
		return h.fail(c, "dashboard", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) Performance(c echo.Context) error {
	return h.section(c, "performance", func(ctx context.Context, sec models.Sector, prices models.Series) (interface{}, error) {
		return h.dash.NormalizedSeries(prices), nil
	})
}

func (h *DashboardEchoHandler) Correlation(c echo.Context) error {
	return h.section(c, "correlation", func(ctx context.Context, sec models.Sector, prices models.Series) (interface{}, error) {
		return h.dash.CorrelationMatrix(h.dash.NormalizedSeries(prices)), nil
	})
}

func (h *DashboardEchoHandler) Volatility(c echo.Context) error {
	return h.section(c, "volatility", func(ctx context.Context, sec models.Sector, prices models.Series) (interface{}, error) {
		return h.dash.VolatilitySeries(prices), nil
	})
}

func (h *DashboardEchoHandler) Anomalies(c echo.Context) error {
	req := &models.SectionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	start, end := parseRange(req.Start, req.End)

	res, err := h.dash.Build(c.Request().Context(), usecase.DashboardParams{
		Sector:    req.Sector,
		Start:     start,
		End:       end,
		Anomalies: true,
	})
	if err != nil {
		return h.fail(c, "anomalies", err)
	}
	return xhttp.SuccessResponse(c, res.Anomalies)
}

type sectionFunc func(ctx context.Context, sec models.Sector, prices models.Series) (interface{}, error)

// section loads prices for a SectionRequest and renders fn's result.
func (h *DashboardEchoHandler) section(c echo.Context, name string, fn sectionFunc) error {
	req := &models.SectionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	start, end := parseRange(req.Start, req.End)
	ctx := c.Request().Context()

	sec, prices, err := h.dash.LoadPrices(ctx, req.Sector, start, end)
	if err != nil {
		return h.fail(c, name, err)
	}
	out, err := fn(ctx, sec, prices)
	if err != nil {
		return h.fail(c, name, err)
	}
	if s, ok := out.(models.Series); ok {
		out = seriesResponse{
			Sector: sec.Name,
			Start:  start.Format(time.DateOnly),
			End:    end.Format(time.DateOnly),
			NoData: s.Empty(),
			Series: s,
		}
	}
	return xhttp.SuccessResponse(c, out)
}

func (h *DashboardEchoHandler) fail(c echo.Context, op string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= 500 {
		h.logger.Error(op+" usecase error", xlogger.Error(err))
	} else {
		h.logger.Debug(op+" rejected", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func toAppError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, models.ErrUnknownSector):
		e := xhttp.BadRequestError(err.Error())
		e.Field = "sector"
		return e.WithParam("options", sectorNames())
	case errors.Is(err, models.ErrInvalidRange):
		return xhttp.BadRequestError(err.Error())
	case errors.Is(err, models.ErrProviderUnavailable), errors.Is(err, context.DeadlineExceeded):
		return xhttp.BadGatewayError("market data is unavailable, try again later").WithError(err)
	default:
		return xhttp.InternalError("could not build dashboard").WithError(err)
	}
}

func sectorNames() []string {
	all := models.Sectors()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name
	}
	return names
}

// parseRange reads already validated YYYY-MM-DD values.
func parseRange(start, end string) (time.Time, time.Time) {
	return xhttp.ParseDateDefault(start, time.Time{}), xhttp.ParseDateDefault(end, time.Time{})
}
