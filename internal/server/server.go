package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"DrawdownSentinel/internal/cache"
	"DrawdownSentinel/internal/common"
	"DrawdownSentinel/internal/model"
	"DrawdownSentinel/internal/recorder"
)

// BoardSource exposes the latest published board.
type BoardSource interface {
	Latest() *model.Board
	Instruments() []string
}

// Handler serves the dashboard over HTTP.
type Handler struct {
	Board           BoardSource
	Recorder        recorder.Recorder
	Cache           *cache.Cache // optional, reported on /healthz
	RefreshInterval time.Duration
	Logger          *common.Logger
}

// NewEngine builds a gin engine with the dashboard routes registered.
func NewEngine(h *Handler) *gin.Engine {
	if h.Logger == nil {
		h.Logger = common.NewSilentLogger()
	}
	if h.Recorder == nil {
		h.Recorder = recorder.NewNoopRecorder()
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(h.Logger))
	engine.SetHTMLTemplate(pageTemplate)
	h.Register(engine)
	return engine
}

// Register mounts the routes on r.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", h.page)
	r.GET("/healthz", h.health)
	api := r.Group("/api")
	api.GET("/board", h.board)
	api.GET("/board/:symbol", h.sheet)
	api.GET("/history", h.history)
}

func (h *Handler) tracked(symbol string) bool {
	for _, s := range h.Board.Instruments() {
		if s == symbol {
			return true
		}
	}
	return false
}

func (h *Handler) board(c *gin.Context) {
	b := h.Board.Latest()
	if b == nil {
		fail(c, http.StatusServiceUnavailable, "no board yet")
		return
	}
	ok(c, b, nil)
}

func (h *Handler) sheet(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))
	if !h.tracked(symbol) {
		fail(c, http.StatusNotFound, "unknown symbol "+symbol)
		return
	}
	b := h.Board.Latest()
	if b == nil {
		fail(c, http.StatusServiceUnavailable, "no board yet")
		return
	}
	s, found := b.Sheet(symbol)
	if !found {
		fail(c, http.StatusServiceUnavailable, "symbol not in latest board")
		return
	}
	ok(c, s, map[string]any{"cycle_id": b.CycleID, "seq": b.Seq})
}

func (h *Handler) history(c *gin.Context) {
	records := h.Recorder.History()
	if records == nil {
		records = []recorder.CycleRecord{}
	}
	ok(c, records, map[string]any{"count": len(records)})
}

func (h *Handler) health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if b := h.Board.Latest(); b != nil {
		resp["seq"] = b.Seq
		resp["generated_at"] = b.GeneratedAt
	} else {
		resp["status"] = "warming_up"
	}
	if h.Cache != nil {
		resp["cache"] = h.Cache.Stats()
	}
	c.JSON(http.StatusOK, resp)
}

type pageData struct {
	Board   *model.Board
	Refresh int
}

func (h *Handler) page(c *gin.Context) {
	secs := int(h.RefreshInterval / time.Second)
	if secs <= 0 {
		secs = 10
	}
	c.HTML(http.StatusOK, "board", pageData{Board: h.Board.Latest(), Refresh: secs})
}

func requestLogger(l *common.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	}
}
