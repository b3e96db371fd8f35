// Package api exposes the coordinator's snapshot and parameters over HTTP
// and streams snapshot updates over WebSocket.
package api

import (
	"context"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"spotwatch/internal/analysis"
	"spotwatch/internal/coordinator"
	"spotwatch/internal/domain"
	"spotwatch/internal/observability"
)

// Server wires the HTTP routes around a Coordinator.
type Server struct {
	coord  *coordinator.Coordinator
	logger *log.Logger
	echo   *echo.Echo
	hub    *Hub
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithLogger sets the logger used for request and stream events.
func WithLogger(logger *log.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// NewServer builds the route table and the stream hub.
func NewServer(coord *coordinator.Coordinator, opts ...ServerOption) *Server {
	s := &Server{
		coord:  coord,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = newHub(coord, s.logger)
	s.hub.start()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(observability.Handler()))
	e.GET("/stream", s.hub.handleStream)

	e.GET("/api/snapshot", s.handleSnapshot)
	e.GET("/api/price/current", s.handleCurrentPrice)
	e.GET("/api/price/next", s.handleNextHoursAll)
	e.GET("/api/price/next/:hours", s.handleNextHours)
	e.GET("/api/windows", s.handleWindows)
	e.GET("/api/windows/custom", s.handleCustomWindow)
	e.GET("/api/daily", s.handleDaily)
	e.GET("/api/narration/:lang", s.handleNarration)
	e.GET("/api/wind", s.handleWind)
	e.GET("/api/params", s.handleGetParams)
	e.PUT("/api/params", s.handlePutParams)

	s.echo = e
	return s
}

// Start begins serving on addr and blocks until the listener fails or the
// server is shut down.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops the listener and disconnects stream clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.stop()
	return s.echo.Shutdown(ctx)
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler { return s.echo }

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c echo.Context) error {
	status := map[string]any{"status": "ok"}
	if snap := s.coord.Snapshot(); snap != nil {
		status["last_refresh"] = snap.Now
	}
	return c.JSON(http.StatusOK, status)
}

func (s *Server) handleSnapshot(c echo.Context) error {
	snap := s.coord.Snapshot()
	if snap == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "no snapshot yet"})
	}
	return c.JSON(http.StatusOK, snap)
}

type currentPriceResponse struct {
	Timestamp     time.Time `json:"timestamp"`
	Price         float64   `json:"price"`
	PriceWithFee  float64   `json:"price_with_fee"`
	ExtraFeeCents float64   `json:"extra_fee_cents"`
}

func (s *Server) handleCurrentPrice(c echo.Context) error {
	snap := s.coord.Snapshot()
	if snap == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "no snapshot yet"})
	}
	if snap.Current == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "no current price"})
	}
	fee := s.coord.ExtraFeeCents()
	return c.JSON(http.StatusOK, currentPriceResponse{
		Timestamp:     snap.Current.Timestamp,
		Price:         snap.Current.Value,
		PriceWithFee:  withFee(snap.Current.Value, fee),
		ExtraFeeCents: fee,
	})
}

// withFee applies the extra fee at read time and rounds to one decimal, so
// a fee change shows up immediately without a refresh.
func withFee(price, fee float64) float64 {
	return math.Round((price+fee)*10) / 10
}

type nextHoursResponse struct {
	Hours   int       `json:"hours"`
	Start   time.Time `json:"start"`
	Average float64   `json:"average"`
}

// handleNextHoursAll returns the standard near-term horizons in one response.
// Horizons the forecast cannot cover are omitted.
func (s *Server) handleNextHoursAll(c echo.Context) error {
	snap := s.coord.Snapshot()
	if snap == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "no snapshot yet"})
	}
	results := make([]nextHoursResponse, 0, len(coordinator.NextHours))
	for _, hours := range coordinator.NextHours {
		avg, start, ok := analysis.AverageNextHours(snap.Series, snap.Now, hours)
		if !ok {
			continue
		}
		results = append(results, nextHoursResponse{Hours: hours, Start: start, Average: avg})
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) handleNextHours(c echo.Context) error {
	snap := s.coord.Snapshot()
	if snap == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "no snapshot yet"})
	}
	hours, err := strconv.Atoi(c.Param("hours"))
	if err != nil || hours < 1 || hours > 48 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "hours must be between 1 and 48"})
	}
	avg, start, ok := analysis.AverageNextHours(snap.Series, snap.Now, hours)
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "not enough forecast data"})
	}
	return c.JSON(http.StatusOK, nextHoursResponse{Hours: hours, Start: start, Average: avg})
}

func (s *Server) handleWindows(c echo.Context) error {
	snap := s.coord.Snapshot()
	if snap == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "no snapshot yet"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"windows": snap.CheapestWindows,
		"meta":    snap.CheapestMeta,
	})
}

func (s *Server) handleCustomWindow(c echo.Context) error {
	snap := s.coord.Snapshot()
	if snap == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "no snapshot yet"})
	}
	return c.JSON(http.StatusOK, snap.CustomWindow)
}

func (s *Server) handleDaily(c echo.Context) error {
	snap := s.coord.Snapshot()
	if snap == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "no snapshot yet"})
	}
	return c.JSON(http.StatusOK, snap.DailyAverages)
}

func (s *Server) handleNarration(c echo.Context) error {
	snap := s.coord.Snapshot()
	if snap == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "no snapshot yet"})
	}
	var section *domain.NarrationSection
	switch c.Param("lang") {
	case "fi":
		section = snap.NarrationFI
	case "en":
		section = snap.NarrationEN
	default:
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "lang must be fi or en"})
	}
	if section == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "narration not available"})
	}
	return c.JSON(http.StatusOK, section)
}

func (s *Server) handleWind(c echo.Context) error {
	snap := s.coord.Snapshot()
	if snap == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "no snapshot yet"})
	}
	if snap.Wind == nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "wind data not available"})
	}
	return c.JSON(http.StatusOK, snap.Wind)
}

func (s *Server) handleGetParams(c echo.Context) error {
	return c.JSON(http.StatusOK, s.coord.Params())
}

// paramsUpdate uses pointers so a PUT body may carry any subset of fields;
// absent fields leave their parameter unchanged.
type paramsUpdate struct {
	ExtraFeeCents                *float64 `json:"extra_fee_cents"`
	CustomWindowHours            *int     `json:"custom_window_hours"`
	CustomWindowStartHour        *int     `json:"custom_window_start_hour"`
	CustomWindowEndHour          *int     `json:"custom_window_end_hour"`
	CustomWindowLookaheadHours   *int     `json:"custom_window_lookahead_hours"`
	CheapestWindowStartHour      *int     `json:"cheapest_window_start_hour"`
	CheapestWindowEndHour        *int     `json:"cheapest_window_end_hour"`
	CheapestWindowLookaheadHours *int     `json:"cheapest_window_lookahead_hours"`
}

func (s *Server) handlePutParams(c echo.Context) error {
	var update paramsUpdate
	if err := c.Bind(&update); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if update.ExtraFeeCents != nil {
		s.coord.SetExtraFeeCents(*update.ExtraFeeCents)
	}
	if update.CustomWindowHours != nil {
		s.coord.SetCustomWindowHours(*update.CustomWindowHours)
	}
	if update.CustomWindowStartHour != nil {
		s.coord.SetCustomWindowStartHour(*update.CustomWindowStartHour)
	}
	if update.CustomWindowEndHour != nil {
		s.coord.SetCustomWindowEndHour(*update.CustomWindowEndHour)
	}
	if update.CustomWindowLookaheadHours != nil {
		s.coord.SetCustomWindowLookaheadHours(*update.CustomWindowLookaheadHours)
	}
	if update.CheapestWindowStartHour != nil {
		s.coord.SetCheapestWindowStartHour(*update.CheapestWindowStartHour)
	}
	if update.CheapestWindowEndHour != nil {
		s.coord.SetCheapestWindowEndHour(*update.CheapestWindowEndHour)
	}
	if update.CheapestWindowLookaheadHours != nil {
		s.coord.SetCheapestWindowLookaheadHours(*update.CheapestWindowLookaheadHours)
	}
	return c.JSON(http.StatusOK, s.coord.Params())
}
