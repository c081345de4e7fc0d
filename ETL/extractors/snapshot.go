package extractors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/LilVoxy/db_restore/ETL/models"
	"github.com/LilVoxy/db_restore/ETL/utils"
	"github.com/LilVoxy/db_restore/processor"
)

// ReadSnapshot читает JSON-снимок данных.
// Старый формат - массив пользователей, новый - объект {категория: [записи]}.
// Путь с расширением .sz читается как сжатый Snappy.
//
// Ключи верхнего уровня, не являющиеся категориями и не содержащие массив
// записей (например, "exported_at"), пропускаются.
func ReadSnapshot(path string) (models.Dataset, error) {
	dataset, _, err := readSnapshot(path)
	return dataset, err
}

// readSnapshot дополнительно возвращает пропущенные ключи, отсортированные по имени
func readSnapshot(path string) (models.Dataset, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &models.FallbackReadError{Path: path, Err: err}
	}

	if processor.IsCompressed(path) {
		data, err = processor.DecompressSnapshot(data)
		if err != nil {
			return nil, nil, &models.FallbackReadError{Path: path, Err: err}
		}
	}

	dataset, skipped, err := decodeSnapshot(data)
	if err != nil {
		return nil, nil, &models.FallbackReadError{Path: path, Err: err}
	}
	return dataset, skipped, nil
}

func decodeSnapshot(data []byte) (models.Dataset, []string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("empty document")
	}

	switch data[0] {
	case '[':
		var users []models.Record
		if err := json.Unmarshal(data, &users); err != nil {
			return nil, nil, fmt.Errorf("invalid users array: %w", err)
		}
		return models.Dataset{models.CategoryUsers: users}, nil, nil

	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, nil, fmt.Errorf("invalid document: %w", err)
		}

		dataset := make(models.Dataset, len(raw))
		var skipped []string
		for key, value := range raw {
			var records []models.Record
			if err := json.Unmarshal(value, &records); err != nil {
				if models.IsCategory(key) {
					return nil, nil, fmt.Errorf("category %q is not an array of records: %w", key, err)
				}
				skipped = append(skipped, key)
				continue
			}
			dataset[key] = records
		}
		sort.Strings(skipped)
		return dataset, skipped, nil

	default:
		return nil, nil, fmt.Errorf("unknown data format in JSON file")
	}
}

// WriteSnapshot сохраняет данные в формате {категория: [записи]}
func WriteSnapshot(path string, dataset models.Dataset) error {
	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if processor.IsCompressed(path) {
		data = processor.CompressSnapshot(data)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return nil
}

// SnapshotSource - запасной источник данных на основе JSON-снимка
type SnapshotSource struct {
	path    string
	logger  *utils.ETLLogger
	console *utils.Console
}

// NewSnapshotSource создает источник данных поверх снимка
func NewSnapshotSource(path string, logger *utils.ETLLogger, console *utils.Console) *SnapshotSource {
	return &SnapshotSource{
		path:    path,
		logger:  logger,
		console: console,
	}
}

// ExtractAll читает снимок и печатает количество записей по категориям
func (s *SnapshotSource) ExtractAll(_ context.Context) (models.Dataset, error) {
	s.console.Printf("  Reading data from %s...\n", s.path)

	dataset, skipped, err := readSnapshot(s.path)
	if err != nil {
		s.logger.Error("Ошибка чтения снимка: %v", err)
		return nil, err
	}

	for _, key := range skipped {
		s.console.Printf("    Skipping %s: not a list of records\n", key)
		s.logger.Info("Ключ %s в снимке %s пропущен: значение не является массивом записей", key, s.path)
	}

	for _, category := range dataset.Keys() {
		s.console.Printf("    Found %d %s\n", dataset.Count(category), category)
	}
	s.logger.Info("Снимок %s прочитан, категорий: %d", s.path, len(dataset))
	return dataset, nil
}
