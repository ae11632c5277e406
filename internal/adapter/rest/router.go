package rest

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig collects what NewRouter needs to assemble the engine
type RouterConfig struct {
	Mode        string
	CORSOrigins []string
	Logger      *zap.Logger
	Plans       *PlanHandler
	Health      *HealthHandler
}

// NewRouter builds the gin engine with recovery, access log and CORS in front of every route
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(AccessLog(logger))
	engine.Use(CORS(cfg.CORSOrigins))

	if cfg.Health != nil {
		cfg.Health.Register(engine)
	}
	if cfg.Plans != nil {
		cfg.Plans.Register(engine)
	}
	return engine
}
