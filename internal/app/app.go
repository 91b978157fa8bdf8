package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	vcfg "verdict/internal/config"
	"verdict/internal/decision"
	"verdict/internal/logger"
	"verdict/internal/rule"
	"verdict/internal/store/decisionlog"
	"verdict/internal/store/gormstore"
	enginehttp "verdict/internal/transport/http"
)

// App 负责应用级编排：加载配置→装配依赖→启动 HTTP 服务。
type App struct {
	cfg      *vcfg.Config
	engine   *decision.Engine
	server   *enginehttp.Server
	logs     *decisionlog.Store
	ruleDB   *gormstore.RuleStore
	registry *rule.Registry
}

// NewApp 根据配置构建应用对象（不启动）。
func NewApp(cfg *vcfg.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return NewAppBuilder(cfg).Build(context.Background())
}

// Run 启动 HTTP 服务并阻塞到 ctx 取消。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.server == nil {
		return fmt.Errorf("http server not initialized")
	}
	logger.Infof("✓ 决策服务启动 (env=%s, addr=%s)", a.cfg.App.Env, a.server.Addr())

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer a.Close()
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	return group.Wait()
}

// Engine exposes the underlying decision engine (for testing/replay harnesses).
func (a *App) Engine() *decision.Engine {
	if a == nil {
		return nil
	}
	return a.engine
}

// Close releases the SQLite handles. Safe to call multiple times.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.logs != nil {
		if err := a.logs.Close(); err != nil {
			logger.Warnf("closing decision log failed: %v", err)
		}
		a.logs = nil
	}
	if a.ruleDB != nil {
		if err := a.ruleDB.Close(); err != nil {
			logger.Warnf("closing rule db failed: %v", err)
		}
		a.ruleDB = nil
	}
}
