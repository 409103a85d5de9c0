package api

import (
	"net/http"
	"strings"
	"time"

	"FishMoney/internal/domain/models"
	drepo "FishMoney/internal/domain/repository"
	"FishMoney/internal/service/broadcast"
	"FishMoney/internal/service/ratelimit"
	"FishMoney/internal/usecase"
	xhttp "FishMoney/pkg/http"
	xlogger "FishMoney/pkg/logger"
	xutil "FishMoney/pkg/util"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// analyzeFailedMessage is the caller-facing failure text, kept verbatim from
// the frontend contract.
const analyzeFailedMessage = "Failed to analyze ticker. The fish aren't biting today."

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// AnalysisEchoHandler implements the Echo-based HTTP handlers.
type AnalysisEchoHandler struct {
	logger   *xlogger.Logger
	analyzer *usecase.Analyzer
	recent   drepo.RecentTracker
	hub      *broadcast.Hub
	limiter  *ratelimit.Limiter
	rateCap  float64
	rateRate float64
}

func NewAnalysisEchoHandler(
	logger *xlogger.Logger,
	analyzer *usecase.Analyzer,
	recent drepo.RecentTracker,
	hub *broadcast.Hub,
	rateCap, rateRate float64,
) *AnalysisEchoHandler {
	return &AnalysisEchoHandler{
		logger:   logger,
		analyzer: analyzer,
		recent:   recent,
		hub:      hub,
		limiter:  ratelimit.New(),
		rateCap:  rateCap,
		rateRate: rateRate,
	}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/health", h.Health)
	g.POST("/analyze", h.Analyze, h.limiter.Middleware(h.rateCap, h.rateRate))
	g.GET("/recent", h.Recent)
	g.GET("/live", h.Live)
}

func (h *AnalysisEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AnalysisEchoHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ticker := strings.TrimSpace(req.Ticker)
	if ticker == "" {
		return xhttp.BadRequestResponse(c, "ticker must not be blank")
	}

	record, err := h.analyzer.Analyze(c.Request().Context(), ticker)
	if err != nil {
		h.logger.Error("analyze usecase error", xlogger.String("ticker", ticker), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError(analyzeFailedMessage).WithError(err))
	}
	return xhttp.SuccessResponse(c, record)
}

func (h *AnalysisEchoHandler) Recent(c echo.Context) error {
	req := &models.RecentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if h.recent == nil {
		return xhttp.ListResponse(c, []*models.RecentAnalysis{}, 0)
	}
	entries, err := h.recent.Recent(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("recent tracker error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("failed to load recent analyses").WithError(err))
	}

	if since := xutil.ParseTimeDefault(c.QueryParam("since"), time.Time{}); !since.IsZero() {
		filtered := entries[:0]
		for _, e := range entries {
			if e.At.After(since) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

func (h *AnalysisEchoHandler) Live(c echo.Context) error {
	if h.hub == nil {
		return xhttp.NotFoundResponse(c, "live feed disabled")
	}
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	h.hub.Add(conn)

	// Reader loop only detects departure; clients do not send data.
	go func() {
		defer h.hub.Remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}
