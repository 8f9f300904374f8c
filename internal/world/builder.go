package world

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/annel0/voxelcore/internal/vec"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/annel0/voxelcore/internal/world"

// BuildReport итог построения мира
type BuildReport struct {
	ID        uuid.UUID
	Generated int
	Inserted  int
	Skipped   int
	Duration  time.Duration
}

// GridKeys возвращает ключи чанков сетки grid: x∈[0,W), y∈[0,H), z∈[0,D), порядок z, y, x
func GridKeys(grid vec.Extent) []ChunkKey {
	keys := make([]ChunkKey, 0, grid.Volume())
	for z := 0; z < grid.D; z++ {
		for y := 0; y < grid.H; y++ {
			for x := 0; x < grid.W; x++ {
				keys = append(keys, ChunkKey{X: x, Y: y, Z: z})
			}
		}
	}
	return keys
}

// Build генерирует все чанки сетки параллельно (не более workers задач одновременно),
// дожидается их завершения и только потом последовательно сливает результат в реестр.
// Ошибки вставки отдельных чанков объединяются в возвращаемую ошибку; вставленные чанки остаются.
func Build(ctx context.Context, reg *Registry, gen Generator, grid vec.Extent, workers int) (BuildReport, error) {
	report := BuildReport{ID: uuid.New()}
	start := time.Now()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "world.Build")
	defer span.End()
	span.SetAttributes(
		attribute.String("build.id", report.ID.String()),
		attribute.String("build.grid", grid.String()),
		attribute.Int("build.workers", workers),
	)

	genCtx, genSpan := otel.Tracer(tracerName).Start(ctx, "world.generate")
	entries, err := generate(genCtx, gen, GridKeys(grid), workers)
	genSpan.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation aborted")
		return report, fmt.Errorf("build %s: generation aborted: %w", report.ID, err)
	}
	report.Generated = len(entries)
	reg.metrics.generatedChunks(len(entries))
	reg.log.Debug("build %s: %d chunks generated with %d workers", report.ID, len(entries), workers)

	// слияние — строго после join всех задач генерации
	_, mergeSpan := otel.Tracer(tracerName).Start(ctx, "world.merge")
	defer mergeSpan.End()
	var errs []error
	for i, err := range reg.InsertBatch(entries) {
		if err != nil {
			errs = append(errs, fmt.Errorf("chunk %s: %w", entries[i].Key, err))
			report.Skipped++
			continue
		}
		report.Inserted++
	}

	report.Duration = time.Since(start)
	span.SetAttributes(attribute.Int("build.inserted", report.Inserted), attribute.Int("build.skipped", report.Skipped))
	reg.metrics.observeBuild(report.Duration)
	reg.log.Info("build %s: %d inserted, %d skipped in %v", report.ID, report.Inserted, report.Skipped, report.Duration)
	return report, errors.Join(errs...)
}

// generate запускает по задаче на чанк; каждая задача пишет только в свой слот
func generate(ctx context.Context, gen Generator, keys []ChunkKey, workers int) ([]Entry, error) {
	entries := make([]Entry, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, key := range keys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = Entry{Key: key, Chunk: gen.Generate(key)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
