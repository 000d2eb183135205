// Package backup implements the backup.cron module: scheduled JSON
// exports of the full durable state, with retention-based pruning.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/parleychat/parley/internal/chat"
	"github.com/parleychat/parley/internal/core"
	"github.com/parleychat/parley/internal/cron"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// Module schedules periodic archive exports against the storage gateway.
type Module struct {
	config    Config
	appCtx    *core.AppContext
	scheduler *cron.Scheduler
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "backup.cron",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("backup: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.appCtx = ctx

	if m.config.Dir == "" {
		m.config.Dir = filepath.Join(ctx.DataDir, defaultDirName)
	}
	if err := os.MkdirAll(m.config.Dir, 0o700); err != nil {
		return fmt.Errorf("backup: create directory %s: %w", m.config.Dir, err)
	}
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	return m.config.validate()
}

// Start implements core.Starter. The storage gateway is resolved here
// rather than in Provision so module ordering does not matter.
func (m *Module) Start() error {
	svc, ok := m.appCtx.Service("storage.gateway")
	if !ok {
		return fmt.Errorf("backup: storage.gateway service not available")
	}
	gateway, ok := svc.(chat.Gateway)
	if !ok {
		return fmt.Errorf("backup: storage.gateway service has unexpected type %T", svc)
	}

	m.scheduler = cron.NewScheduler(m.appCtx.Logger)
	job := &exportJob{
		gateway:  gateway,
		dir:      m.config.Dir,
		keep:     m.config.Keep,
		schedule: m.config.Schedule,
		logger:   m.appCtx.Logger,
		now:      time.Now,
	}
	if err := m.scheduler.RegisterJob(job); err != nil {
		return err
	}
	return m.scheduler.Start()
}

// Stop implements core.Stopper.
func (m *Module) Stop(ctx context.Context) error {
	if m.scheduler == nil {
		return nil
	}
	return m.scheduler.Stop(ctx)
}
