package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/grottogame/server/internal/config"
	"github.com/grottogame/server/internal/core/event"
	coresys "github.com/grottogame/server/internal/core/system"
	"github.com/grottogame/server/internal/data"
	"github.com/grottogame/server/internal/handler"
	gonet "github.com/grottogame/server/internal/net"
	"github.com/grottogame/server/internal/net/packet"
	"github.com/grottogame/server/internal/persist"
	"github.com/grottogame/server/internal/scripting"
	"github.com/grottogame/server/internal/spectate"
	"github.com/grottogame/server/internal/system"
	"github.com/grottogame/server/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              Grotto  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        bubble arena · game server         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mserver:\033[0m %s \033[90m(id: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("GROTTO_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Connect to PostgreSQL and run migrations
	printSection("database")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("PostgreSQL connected")

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("migrations applied")
	fmt.Println()

	// 4. Create repositories
	accountRepo := persist.NewAccountRepo(db)
	scoreRepo := persist.NewScoreRepo(db)
	statsRepo := persist.NewStatsRepo(db)

	// 5. Load data tables
	printSection("data tables")

	bubbleTable, err := data.LoadBubbleTable("data/yaml/bubble_list.yaml")
	if err != nil {
		return fmt.Errorf("load bubble table: %w", err)
	}
	printStat("bubble types", bubbleTable.Count())
	warnSkipped(log, bubbleTable.Skipped)

	monsterTable, err := data.LoadMonsterTable("data/yaml/monster_list.yaml")
	if err != nil {
		return fmt.Errorf("load monster table: %w", err)
	}
	printStat("monster types", monsterTable.Count())
	warnSkipped(log, monsterTable.Skipped)

	arenaTable, err := data.LoadArenaTable("data/yaml/arena_list.yaml")
	if err != nil {
		return fmt.Errorf("load arena table: %w", err)
	}
	printStat("arenas", arenaTable.Count())
	warnSkipped(log, arenaTable.Skipped)

	abilityTable, err := data.LoadAbilityTable("data/yaml/ability_list.yaml")
	if err != nil {
		return fmt.Errorf("load ability table: %w", err)
	}
	printStat("abilities", abilityTable.Count())
	warnSkipped(log, abilityTable.Skipped)

	// 6. Create world state, event bus, Lua scripting engine
	worldState := world.NewState(cfg.Game.RNGSeed, cfg.Game.MaxDifficulty)
	bus := event.NewBus()

	luaEngine, err := scripting.NewEngine("scripts", log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("Lua scripts loaded")
	fmt.Println()

	// 7. Create packet handler registry and register handlers
	sessions := gonet.NewSessionStore()
	pktReg := packet.NewRegistry(log)
	deps := &handler.Deps{
		AccountRepo: accountRepo,
		ScoreRepo:   scoreRepo,
		StatsRepo:   statsRepo,
		Config:      cfg,
		Log:         log,
		World:       worldState,
		Scripting:   luaEngine,
		Bus:         bus,
		Sessions:    sessions,
		Bubbles:     bubbleTable,
		Monsters:    monsterTable,
		Arenas:      arenaTable,
		Abilities:   abilityTable,
	}
	handler.RegisterAll(pktReg, deps)

	// 8. Create network server
	pktPerSec := 0
	if cfg.RateLimit.Enabled {
		pktPerSec = cfg.RateLimit.PacketsPerSecond
	}
	netServer, err := gonet.NewServer(
		cfg.Network.BindAddress,
		cfg.Network.InQueueSize,
		cfg.Network.OutQueueSize,
		pktPerSec,
		log,
	)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.AcceptLoop()

	// 9. Create systems and register with runner. The runner sorts by phase
	// with a stable sort, so registration order here is execution order
	// within a phase.
	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewInputSystem(netServer, pktReg, deps, cfg.Network.MaxPacketsPerTick, log))
	runner.Register(system.NewDifficultySystem(deps, cfg.Game.DifficultyInterval))
	bubbleSys := system.NewBubbleSystem(deps)
	runner.Register(bubbleSys)
	monsterSys := system.NewMonsterSystem(deps)
	runner.Register(monsterSys)
	runner.Register(system.NewPlayerSystem(deps))
	runner.Register(system.NewScoreSystem(deps))
	runner.Register(system.NewSnapshotSystem(deps, cfg.Game.SnapshotEvery))

	var specServer *spectate.Server
	if cfg.Server.SpectateAddress != "" {
		hub := spectate.NewHub(log)
		go hub.Run()
		specServer = spectate.NewServer(cfg.Server.SpectateAddress, hub, log)
		go specServer.ListenAndServe()
		runner.Register(system.NewSpectateSystem(deps, hub, cfg.Game.SpectateEvery))
	}

	statsSys := system.NewStatsSystem(deps, cfg.Game.StatsFlushEvery, cfg.Game.AutosaveEvery)
	runner.Register(statsSys)
	runner.Register(system.NewCleanupSystem(deps, netServer))

	// Handlers reach the lifecycle managers through Deps. Wired after
	// construction because the systems themselves need Deps to build.
	deps.BubbleOps = bubbleSys
	deps.MonsterOps = monsterSys

	// 10. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()

	printSection("server ready")
	printReady(fmt.Sprintf("listening on %s", netServer.Addr().String()))
	if cfg.Server.SpectateAddress != "" {
		printReady(fmt.Sprintf("spectator feed on ws://%s/spectate", cfg.Server.SpectateAddress))
	}
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Network.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			saveAllRuns(worldState, scoreRepo, log)
			statsSys.Flush()
			netServer.Shutdown()
			if specServer != nil {
				stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
				specServer.Shutdown(stopCtx)
				stopCancel()
			}
			log.Info("server stopped")
			return nil
		}
	}
}

func warnSkipped(log *zap.Logger, skipped []string) {
	for _, msg := range skipped {
		log.Warn("data entry skipped", zap.String("entry", msg))
	}
}

// saveAllRuns persists every open run so scores survive a restart. Same
// rules as the disconnect path: zero-activity runs are not worth a row.
func saveAllRuns(ws *world.State, scoreRepo *persist.ScoreRepo, log *zap.Logger) {
	count := 0
	for _, p := range ws.Players() {
		if p.Score == 0 && p.Pops == 0 && p.Kills == 0 {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		row := &persist.RunRow{
			Account:   p.Account,
			Player:    p.Name,
			ArenaID:   p.ArenaID,
			Score:     p.Score,
			Pops:      p.Pops,
			Kills:     p.Kills,
			BestCombo: p.BestCombo,
			Duration:  time.Since(p.StartedAt),
			EndedAt:   time.Now(),
		}
		if err := scoreRepo.InsertRun(ctx, row); err != nil {
			log.Error("run save failed", zap.String("player", p.Name), zap.Error(err))
		} else {
			count++
		}
		cancel()
	}
	if count > 0 {
		log.Info("open runs persisted", zap.Int("count", count))
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
