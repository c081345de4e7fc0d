package models

// ImportStats - статистика импорта одной категории, как её возвращает API:
// {"<category>": {"imported": N, "failed": M, "errors": [...]}}
type ImportStats struct {
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
}

// CategoryResult связывает категорию с результатом её загрузки
type CategoryResult struct {
	Category string
	Stats    ImportStats
}

// FailedEndpoint - категория, запрос которой не дошёл до успешного ответа
type FailedEndpoint struct {
	Category string
	Reason   string
}

// UploadResult содержит итог загрузки всех категорий
type UploadResult struct {
	Results         []CategoryResult
	FailedEndpoints []FailedEndpoint
	TotalImported   int
	TotalFailed     int
}

// Success сообщает, прошли ли все запросы успешно.
// Ошибки отдельных записей внутри ответа 2xx на результат не влияют.
func (r *UploadResult) Success() bool {
	return len(r.FailedEndpoints) == 0
}

// Stats возвращает статистику категории, если она загружалась
func (r *UploadResult) Stats(category string) (ImportStats, bool) {
	for _, result := range r.Results {
		if result.Category == category {
			return result.Stats, true
		}
	}
	return ImportStats{}, false
}
