package server

import (
	"errors"
	"net/http"
	"time"

	"hub2mqtt/internal/core/domain"
	"hub2mqtt/internal/core/flow"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)

	if s.flows != nil {
		e.POST("/link", s.LinkStartHandler)
		e.POST("/link/:id", s.LinkSubmitHandler)
	}

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

// LinkStartHandler begins an account-link flow and returns its first step.
func (s *Server) LinkStartHandler(c echo.Context) error {
	return flowResultResponse(c, s.flows.Begin())
}

// LinkSubmitHandler feeds one step's input into a running flow.
func (s *Server) LinkSubmitHandler(c echo.Context) error {
	var input map[string]string
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	result, err := s.flows.Submit(c.Param("id"), input)
	if err != nil {
		if errors.Is(err, flow.ErrUnknownFlow) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown flow"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return flowResultResponse(c, result)
}

func flowResultResponse(c echo.Context, result flow.Result) error {
	switch r := result.(type) {
	case flow.ShowForm:
		return c.JSON(http.StatusOK, map[string]any{"type": "form", "form": r})
	case flow.CreateEntry:
		return c.JSON(http.StatusCreated, map[string]any{"type": "create_entry", "title": r.Title})
	case flow.Abort:
		return c.JSON(http.StatusConflict, map[string]any{"type": "abort", "reason": r.Reason})
	default:
		return c.NoContent(http.StatusInternalServerError)
	}
}
