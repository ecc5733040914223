package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/trailhead/internal/bracketcode"
	"github.com/yanizio/trailhead/internal/config"
	"github.com/yanizio/trailhead/internal/database"
	"github.com/yanizio/trailhead/internal/email"
	"github.com/yanizio/trailhead/internal/generation"
	"github.com/yanizio/trailhead/internal/metrics"
	"github.com/yanizio/trailhead/internal/progress"
	"github.com/yanizio/trailhead/internal/render"
	"github.com/yanizio/trailhead/internal/resolver"
	"github.com/yanizio/trailhead/internal/settings"
	"github.com/yanizio/trailhead/internal/site"
	"github.com/yanizio/trailhead/internal/store"
	"github.com/yanizio/trailhead/internal/theme"
	"github.com/yanizio/trailhead/internal/view"
	"github.com/yanizio/trailhead/internal/viewhelpers"
)

// app holds the wired collaborators of one command.
type app struct {
	cfg      *config.Config
	db       *sqlx.DB
	store    *store.Store
	site     *settings.Site
	resolver *resolver.Resolver
	codes    *bracketcode.Engine
	view     *view.Engine
	pages    *site.Builder
	emails   *email.Builder
	orch     *generation.Orchestrator
}

func openApp(ctx context.Context) (*app, error) {
	// ── 4. Database and wiring ──
	db, err := database.OpenWithOptions(ctx, cfg.DatabaseDSN(), cfg.Database.MaxOpen, cfg.Database.MaxIdle)
	if err != nil {
		return nil, fmt.Errorf("connect content DB: %w", err)
	}
	zap.S().Infow("content DB online")

	a := &app{cfg: cfg, db: db}
	a.store = store.New(db, cfg.Generation.IDBatchSize)
	a.site = settings.New(cfg.Site)
	a.resolver = resolver.New(a.store, resolver.DefaultCapacity)

	th, err := (&theme.Manager{BaseDir: filepath.Join(cfg.Paths.Root, "themes")}).
		Load(cfg.Site.Theme, viewhelpers.FuncMap(cfg.Site.BaseURL))
	if err != nil {
		db.Close()
		return nil, err
	}
	a.view = view.New(th)

	sink := progress.Zap(zap.S())
	pics := render.FileLocator{Paths: a.site}
	formatter := render.NewFormatter()
	a.codes = bracketcode.New(bracketcode.Deps{
		Resolver:         a.resolver,
		URLs:             a.site,
		Pictures:         pics,
		GalleryRowHeight: cfg.Site.GalleryRowHeight,
	})
	a.pages = site.New(site.Deps{
		Site:      a.site,
		Store:     a.store,
		Resolver:  a.resolver,
		Codes:     a.codes,
		Pictures:  pics,
		Formatter: formatter,
		View:      a.view,
		Progress:  sink,
	})
	a.emails = &email.Builder{
		Site:      a.site,
		Codes:     a.codes,
		Formatter: formatter,
		View:      a.view,
		Progress:  sink,
	}
	a.orch = &generation.Orchestrator{
		Store:    a.store,
		Pages:    a.pages,
		Settings: a.site,
		Cache:    a.resolver,
		Config:   cfg.Generation,
		Excluded: cfg.Site.ExcludedTags,
		Progress: sink,
	}
	return a, nil
}

// close releases the database and flushes metrics.
func (a *app) close() {
	if err := metrics.Flush(a.cfg.Metrics.Textfile); err != nil {
		zap.S().Warnw("metrics flush failed", "file", a.cfg.Metrics.Textfile, "err", err)
	}
	if err := a.db.Close(); err != nil {
		zap.S().Warnw("close content DB", "err", err)
	}
}
