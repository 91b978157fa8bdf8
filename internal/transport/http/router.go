package enginehttp

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"verdict/internal/decision"
	"verdict/internal/rule"
	"verdict/internal/signal"
	"verdict/internal/store/decisionlog"
	"verdict/internal/types"
)

// ProducerFunc 从K线生成技术信号（可选能力）。
type ProducerFunc func(symbol string, candles []types.Candle, now time.Time) ([]signal.Signal, error)

// Router 暴露决策与规则管理接口。
type Router struct {
	Engine   *decision.Engine
	Logs     *decisionlog.Store
	Producer ProducerFunc
}

// NewRouter 构造 API router；logs 与 producer 可为 nil。
func NewRouter(engine *decision.Engine, logs *decisionlog.Store, producer ProducerFunc) *Router {
	return &Router{Engine: engine, Logs: logs, Producer: producer}
}

// Register 将 /api 路由挂载到给定分组下。
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.POST("/decisions", r.handleProcessDecision)
	group.GET("/decisions", r.handleListDecisions)
	group.GET("/decisions/:id", r.handleDecisionByID)
	group.GET("/rules", r.handleListRules)
	group.POST("/rules", r.handleCreateRule)
	group.POST("/rules/:id/enable", r.handleSetRuleEnabled(true))
	group.POST("/rules/:id/disable", r.handleSetRuleEnabled(false))
	group.GET("/history/chart", r.handleHistoryChart)
	if r.Producer != nil {
		group.POST("/signals/technical", r.handleTechnicalSignals)
	}
}

func (r *Router) handleProcessDecision(c *gin.Context) {
	var body DecisionRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid json body: " + err.Error()})
		return
	}
	d, err := r.Engine.ProcessDecision(c.Request.Context(), body.Request, body.Signals, body.Market)
	if err != nil {
		var vErr *decision.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: vErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (r *Router) handleListDecisions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	symbol := c.Query("symbol")
	if r.Logs != nil {
		out, err := r.Logs.ListDecisions(c.Request.Context(), decisionlog.Query{Symbol: symbol, Limit: limit})
		if err != nil {
			c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, out)
		return
	}
	c.JSON(http.StatusOK, r.Engine.History().Recent(limit))
}

func (r *Router) handleDecisionByID(c *gin.Context) {
	id := c.Param("id")
	if d, ok := r.Engine.History().Get(id); ok {
		c.JSON(http.StatusOK, d)
		return
	}
	if r.Logs != nil {
		d, err := r.Logs.GetDecision(c.Request.Context(), id)
		if err == nil {
			c.JSON(http.StatusOK, d)
			return
		}
	}
	c.JSON(http.StatusNotFound, errorResponse{Error: "decision not found: " + id})
}

func (r *Router) handleListRules(c *gin.Context) {
	c.JSON(http.StatusOK, r.Engine.ListActiveRules())
}

func (r *Router) handleCreateRule(c *gin.Context) {
	var body rule.Rule
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid json body: " + err.Error()})
		return
	}
	created, err := r.Engine.CreateRule(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (r *Router) handleSetRuleEnabled(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := r.Engine.SetRuleEnabled(id, enabled); err != nil {
			if errors.Is(err, rule.ErrNotFound) {
				c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "enabled": enabled})
	}
}

func (r *Router) handleTechnicalSignals(c *gin.Context) {
	var body TechnicalSignalsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid json body: " + err.Error()})
		return
	}
	signals, err := r.Producer(body.Symbol, body.Candles, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, signals)
}
