package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/extractd/errors"
	"github.com/kbukum/extractd/extract"
	"github.com/kbukum/extractd/logger"
	"github.com/kbukum/extractd/server"
)

// RunSource exposes the recorded run.
type RunSource interface {
	Current() *extract.Run
}

// Handler serves the control endpoints.
type Handler struct {
	control *extract.Control
	runs    RunSource
	log     *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(control *extract.Control, runs RunSource, log *logger.Logger) *Handler {
	return &Handler{control: control, runs: runs, log: log}
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/start/:n", h.Start)
	r.GET("/active", h.Active)
	r.GET("/cancel", h.Cancel)
	r.GET("/runs/current", h.CurrentRun)
}

// startParams binds the path of /start/:n.
type startParams struct {
	N string `uri:"n" binding:"required"`
}

// Start launches a run unless one is active. An invalid n gets a 400 AppError
// body instead of a status string.
func (h *Handler) Start(c *gin.Context) {
	var p startParams
	if err := c.ShouldBindUri(&p); err != nil {
		server.RespondWithError(c, errors.InvalidInput("n", err.Error()))
		return
	}
	n, err := strconv.Atoi(p.N)
	if err != nil {
		server.RespondWithError(c, errors.InvalidFormat("n", "integer"))
		return
	}

	status, err := h.control.Start(n)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.log.WithContext(c.Request.Context()).Info("Start requested", map[string]interface{}{
		"n":                n,
		logger.FieldStatus: string(status),
	})
	server.RespondText(c, string(status))
}

// Active reports whether a run is executing.
func (h *Handler) Active(c *gin.Context) {
	server.RespondText(c, h.control.Active())
}

// Cancel requests cancellation of the active run.
func (h *Handler) Cancel(c *gin.Context) {
	status := h.control.Cancel()
	h.log.WithContext(c.Request.Context()).Info("Cancel requested", map[string]interface{}{
		logger.FieldStatus: string(status),
	})
	server.RespondText(c, string(status))
}

// CurrentRun returns the recorded run's snapshot, or 404 before the first run.
func (h *Handler) CurrentRun(c *gin.Context) {
	run := h.runs.Current()
	if run == nil {
		server.RespondWithError(c, errors.NotFound("run", "current"))
		return
	}
	server.RespondOK(c, run.Info())
}
