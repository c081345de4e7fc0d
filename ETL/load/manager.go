package load

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LilVoxy/db_restore/ETL/models"
	"github.com/LilVoxy/db_restore/ETL/utils"
)

// Сколько ошибок импорта показывать по каждой категории
const maxShownErrors = 3

// LoadManager отвечает за загрузку всех категорий на продакшн-сервер
type LoadManager struct {
	loader  Loader
	logger  *utils.ETLLogger
	console *utils.Console
}

// NewLoadManager создает новый экземпляр LoadManager
func NewLoadManager(loader Loader, logger *utils.ETLLogger, console *utils.Console) *LoadManager {
	return &LoadManager{
		loader:  loader,
		logger:  logger,
		console: console,
	}
}

// Load загружает категории по одной в порядке models.Categories.
// Пустые категории пропускаются без запроса. Сбой одной категории не останавливает остальные.
func (m *LoadManager) Load(ctx context.Context, dataset models.Dataset, session *Session) *models.UploadResult {
	startTime := time.Now()
	m.logger.Info("Начало фазы Load (Загрузка данных)")
	m.console.Println("  Using chunked import endpoints (one per data type)...")

	result := &models.UploadResult{}

	for _, category := range models.Categories {
		records := dataset[category]
		if len(records) == 0 {
			m.console.Printf("  Skipping %s: no data\n", category)
			continue
		}

		m.console.Printf("  Uploading %s (%d records)... ", category, len(records))

		stats, err := m.loader.LoadCategory(ctx, category, records, session)
		if err != nil {
			stats = m.recordFailure(result, category, len(records), err)
		} else {
			m.printStats(stats)
		}

		result.Results = append(result.Results, models.CategoryResult{Category: category, Stats: stats})
		result.TotalImported += stats.Imported
		result.TotalFailed += stats.Failed
		m.logger.LogCategoryLoaded(category, len(records), stats.Imported, stats.Failed)
	}

	m.console.Printf("\n  Total: %d imported, %d failed\n", result.TotalImported, result.TotalFailed)

	if !result.Success() {
		m.console.Printf("\n  WARNING: %d endpoint(s) had issues:\n", len(result.FailedEndpoints))
		for _, failed := range result.FailedEndpoints {
			m.console.Printf("    - %s: %s\n", failed.Category, failed.Reason)
		}
	}

	m.logger.Info("Фаза Load завершена. Длительность: %v", time.Since(startTime))
	return result
}

// recordFailure помечает всю категорию как неудачную
func (m *LoadManager) recordFailure(result *models.UploadResult, category string, count int, err error) models.ImportStats {
	m.logger.Error("Ошибка при загрузке %s: %v", category, err)

	var endpointErr *models.EndpointError
	if !errors.As(err, &endpointErr) {
		endpointErr = &models.EndpointError{Category: category, Err: err}
	}

	var shortError string
	switch {
	case endpointErr.Timeout:
		m.console.Println("✗ Timeout")
		shortError = "Timeout"
	case endpointErr.Status != 0:
		m.console.Printf("✗ Error %d\n", endpointErr.Status)
		shortError = fmt.Sprintf("HTTP %d", endpointErr.Status)
	default:
		m.console.Printf("✗ Error: %v\n", endpointErr)
		shortError = endpointErr.Error()
	}

	result.FailedEndpoints = append(result.FailedEndpoints, models.FailedEndpoint{
		Category: category,
		Reason:   endpointErr.Error(),
	})

	return models.ImportStats{
		Imported: 0,
		Failed:   count,
		Errors:   []string{shortError},
	}
}

// printStats печатает итог категории и первые ошибки импорта
func (m *LoadManager) printStats(stats models.ImportStats) {
	status := "✓"
	if stats.Failed > 0 {
		status = "⚠"
	}
	m.console.Printf("%s %d imported, %d failed\n", status, stats.Imported, stats.Failed)

	shown := stats.Errors
	if len(shown) > maxShownErrors {
		shown = shown[:maxShownErrors]
	}
	for _, e := range shown {
		m.console.Printf("      - %s\n", e)
	}
	if rest := len(stats.Errors) - len(shown); rest > 0 {
		m.console.Printf("      ... and %d more errors\n", rest)
	}
}
