package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxelcore/internal/camera"
	"github.com/annel0/voxelcore/internal/config"
	"github.com/annel0/voxelcore/internal/eventbus"
	"github.com/annel0/voxelcore/internal/logging"
	"github.com/annel0/voxelcore/internal/observability"
	"github.com/annel0/voxelcore/internal/render"
	"github.com/annel0/voxelcore/internal/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config (falls back to VOXEL_CONFIG)")
		ticks      = flag.Int("ticks", 0, "Stop after N update ticks (0 = run until signal)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("❌ Ошибка уровня логирования: %v", err)
	}
	if cfg.Logging.File {
		if err := logging.InitDefaultLogger("voxeld"); err != nil {
			log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
		}
		defer logging.CloseDefaultLogger()
	}
	logging.SetDefaultLevel(level)

	logs := logging.NewManager(level, cfg.Logging.File, os.Stdout)
	defer func() {
		if err := logs.Close(); err != nil {
			log.Printf("⚠️ %v", err)
		}
	}()

	logging.Info("🧊 Запуск voxeld: чанк %s, мир %s, воркеров %d", cfg.World.Chunk, cfg.World.Grid, cfg.World.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTelemetry(ctx, cfg.Tracing)
	if err != nil {
		log.Fatalf("❌ Ошибка инициализации трейсинга: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logging.Warn("Ошибка остановки трейсинга: %v", err)
		}
	}()

	if err := run(ctx, cfg, *ticks, logs); err != nil {
		logging.Error("❌ %v", err)
		os.Exit(1)
	}
	logging.Info("👋 voxeld остановлен")
}

func run(ctx context.Context, cfg *config.Config, ticks int, logs *logging.Manager) error {
	worldLog, renderLog, eventsLog := logs.World(), logs.Render(), logs.Events()
	logging.Debug("логгеры компонентов: %v", logs.Components())

	// === МЕТРИКИ ===
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	addr := fmt.Sprintf(":%d", cfg.Metrics.GetMetricsPort())
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	// === ШИНА СОБЫТИЙ ===
	bus, err := eventbus.Open(cfg.Events)
	if err != nil {
		return fmt.Errorf("event bus: %w", err)
	}
	defer bus.Close()
	logging.Info("📨 Шина событий: %s", cfg.Events.Backend)
	if _, err := eventbus.StartLoggingListener(bus, eventsLog); err != nil {
		return fmt.Errorf("logging listener: %w", err)
	}
	exporter := eventbus.NewMetricsExporter(bus, promReg)
	exporter.Start(time.Second)
	defer exporter.Stop()

	// === МИР ===
	cache := render.NewMeshCache(render.WithMetrics(promReg), render.WithLogger(renderLog))
	publisher := render.NewEventPublisher(ctx, bus, "world", eventsLog)
	reg := world.NewRegistry(cfg.World.Chunk, render.Fanout{cache, publisher},
		world.WithMetrics(world.NewMetrics(promReg)),
		world.WithLogger(worldLog),
	)

	gen, err := world.NewGenerator(cfg.Generator, cfg.World.Chunk)
	if err != nil {
		return err
	}

	report, err := world.Build(ctx, reg, gen, cfg.World.Grid, cfg.World.Workers)
	if err != nil {
		if report.Inserted == 0 {
			return err
		}
		worldLog.Warn("build %s завершён с ошибками: %v", report.ID, err)
	}
	logging.Info("🌍 Мир построен: %d чанков, %d вершин за %v", reg.Len(), cache.TotalVertices(), report.Duration)
	if ps, err := observability.NewProcessStats(); err == nil {
		logging.Info("📊 Процесс: %s", ps.Snapshot())
	}

	cam := camera.New(overviewCamera(cfg))

	// === ЦИКЛ ОБНОВЛЕНИЯ ===
	ticker := time.NewTicker(cfg.World.UpdateInterval)
	defer ticker.Stop()

	for tick := 1; ticks == 0 || tick <= ticks; tick++ {
		select {
		case <-ctx.Done():
			logging.Info("📡 Получен сигнал завершения")
			return nil
		case <-ticker.C:
		}

		updated := reg.Update()
		calls := cache.DrawList(cam)
		if updated > 0 {
			renderLog.Debug("tick %d: %d чанков перестроено, %d групп к отрисовке", tick, updated, len(calls))
		}
		cam.OffsetOrientation(0.5, 0)
	}
	return nil
}

// overviewCamera ставит камеру над углом мира с видом на его центр
func overviewCamera(cfg *config.Config) camera.Properties {
	c, g := cfg.World.Chunk, cfg.World.Grid
	w := float32(c.W * g.W)
	h := float32(c.H * g.H)
	d := float32(c.D * g.D)

	p := camera.DefaultProperties()
	p.Eye = mgl32.Vec3{-w / 4, h * 1.5, -d / 4}
	p.LookAt = mgl32.Vec3{w / 2, h / 2, d / 2}
	p.ZFar = 4 * (w + h + d)
	return p
}
