// Package app assembles the full server process: configuration, logging
// pipeline, match engine, hub and HTTP transport.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"fightstate/runtime/internal/config"
	"fightstate/runtime/internal/geom"
	"fightstate/runtime/internal/match"
	"fightstate/runtime/internal/pack"
	"fightstate/runtime/internal/server"
	"fightstate/runtime/internal/sim"
	"fightstate/runtime/internal/telemetry"
	"fightstate/runtime/logging"
	"fightstate/runtime/logging/sinks"
)

// Run boots the server and blocks until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}
	roster, err := config.LoadRoster(cfg.RosterPath)
	if err != nil {
		return err
	}

	logCfg := logging.DefaultConfig()
	logCfg.MinimumSeverity = parseSeverity(cfg.LogSeverity)
	namedSinks := []logging.NamedSink{
		{Name: "console", Sink: sinks.NewConsole(os.Stdout, logCfg.Console.UseColor)},
	}
	var jsonFile *os.File
	if cfg.LogJSONPath != "" {
		jsonFile, err = os.OpenFile(cfg.LogJSONPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("app: open log file: %w", err)
		}
		namedSinks = append(namedSinks, logging.NamedSink{
			Name: "json",
			Sink: sinks.NewJSON(jsonFile, logCfg.JSON.FlushInterval),
		})
	}
	router := logging.NewRouter(logging.SystemClock{}, logCfg, namedSinks)
	defer func() {
		if cerr := router.Close(context.Background()); cerr != nil {
			log.Printf("app: close logging router: %v", cerr)
		}
		if jsonFile != nil {
			_ = jsonFile.Close()
		}
	}()

	metrics := logging.NewMetrics()
	deps := sim.Deps{
		Logger:    log.Default(),
		Metrics:   metrics,
		Clock:     logging.SystemClock{},
		Publisher: router,
	}

	engine, rosterIDs, err := buildEngine(roster, deps)
	if err != nil {
		return err
	}

	hub := server.NewHub(engine, server.HubConfig{
		TickRate:         cfg.TickRate,
		KeyframeInterval: cfg.KeyframeInterval,
		JournalCapacity:  cfg.JournalCapacity,
		CommandCapacity:  cfg.CommandCapacity,
		PerActorLimit:    cfg.PerActorLimit,
	}, rosterIDs)

	stop := make(chan struct{})
	go hub.Run(stop)
	defer close(stop)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.Handler(hub, metrics, telemetry.WrapLogger(log.Default())),
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	log.Printf("listening on %s (tick rate %d)", cfg.Addr, cfg.TickRate)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("app: shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func buildEngine(roster config.Roster, deps sim.Deps) (*match.Engine, []string, error) {
	matchCfg := match.DefaultConfig()
	if roster.Stage.HalfWidth > 0 {
		matchCfg.StageHalfWidth = geom.CoordFromPixels(roster.Stage.HalfWidth)
	}
	engine := match.New(matchCfg, deps)

	ids := make([]string, 0, len(roster.Combatants))
	for _, entry := range roster.Combatants {
		data, err := os.ReadFile(entry.PackPath)
		if err != nil {
			return nil, nil, fmt.Errorf("app: read pack for %q: %w", entry.ID, err)
		}
		pk, err := pack.Parse(data)
		if err != nil {
			return nil, nil, fmt.Errorf("app: parse pack for %q: %w", entry.ID, err)
		}
		if err := engine.AddCombatant(match.CombatantConfig{
			ID:        entry.ID,
			Character: entry.Character,
			Pack:      &pk,
			Pos: geom.Vec{
				X: geom.CoordFromPixels(entry.X),
				Y: geom.CoordFromPixels(entry.Y),
			},
			Facing:    entry.Facing,
			MaxHealth: entry.MaxHealth,
		}); err != nil {
			return nil, nil, err
		}
		ids = append(ids, entry.ID)
	}
	return engine, ids, nil
}

func parseSeverity(s string) logging.Severity {
	switch s {
	case "debug":
		return logging.SeverityDebug
	case "warn":
		return logging.SeverityWarn
	case "error":
		return logging.SeverityError
	default:
		return logging.SeverityInfo
	}
}
