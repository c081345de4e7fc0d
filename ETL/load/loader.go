package load

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/LilVoxy/db_restore/ETL/models"
	"github.com/LilVoxy/db_restore/ETL/utils"
)

// Loader загружает записи одной категории на продакшн-сервер
type Loader interface {
	// LoadCategory отправляет все записи категории одним запросом.
	// Сбой на уровне HTTP возвращается как *models.EndpointError.
	LoadCategory(ctx context.Context, category string, records []models.Record, session *Session) (models.ImportStats, error)
}

// HTTPLoader реализация Loader поверх эндпоинтов импорта
type HTTPLoader struct {
	client *http.Client
	urlFor func(category string) string
	logger *utils.ETLLogger
}

// NewHTTPLoader создает загрузчик с таймаутом на каждый запрос
func NewHTTPLoader(urlFor func(category string) string, timeout time.Duration, logger *utils.ETLLogger) *HTTPLoader {
	return &HTTPLoader{
		client: &http.Client{Timeout: timeout},
		urlFor: urlFor,
		logger: logger,
	}
}

// LoadCategory отправляет {<category>: [записи]} и разбирает статистику из ответа
func (l *HTTPLoader) LoadCategory(ctx context.Context, category string, records []models.Record, session *Session) (models.ImportStats, error) {
	payload, err := json.Marshal(map[string][]models.Record{category: records})
	if err != nil {
		return models.ImportStats{}, &models.EndpointError{Category: category, Err: fmt.Errorf("encode payload: %w", err)}
	}

	url := l.urlFor(category)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return models.ImportStats{}, &models.EndpointError{Category: category, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(originHeader, originClient)
	session.apply(req)

	l.logger.Debug("POST %s (%d записей, %d байт)", url, len(records), len(payload))

	resp, err := l.client.Do(req)
	if err != nil {
		return models.ImportStats{}, &models.EndpointError{Category: category, Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ImportStats{}, &models.EndpointError{Category: category, Timeout: isTimeout(err), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		l.logger.Error("Импорт %s: статус %d, ответ: %s", category, resp.StatusCode, truncate(body, 512))
		return models.ImportStats{}, &models.EndpointError{
			Category: category,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("HTTP %d", resp.StatusCode),
		}
	}

	return parseImportStats(category, body)
}

// parseImportStats читает {<category>: {imported, failed, errors}} из тела ответа
func parseImportStats(category string, body []byte) (models.ImportStats, error) {
	if !gjson.ValidBytes(body) {
		return models.ImportStats{}, &models.EndpointError{
			Category: category,
			Err:      fmt.Errorf("invalid JSON in response body"),
		}
	}

	result := gjson.GetBytes(body, category)
	stats := models.ImportStats{
		Imported: int(result.Get("imported").Int()),
		Failed:   int(result.Get("failed").Int()),
	}
	for _, e := range result.Get("errors").Array() {
		stats.Errors = append(stats.Errors, e.String())
	}
	return stats, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
