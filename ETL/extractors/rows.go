package extractors

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/LilVoxy/db_restore/ETL/models"
)

// row - строка таблицы как есть: имя колонки -> значение
type row map[string]interface{}

// queryRows выполняет запрос и возвращает строки с нормализованными значениями
func queryRows(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]row, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var result []row
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r := make(row, len(columns))
		for i, column := range columns {
			r[column] = normalizeValue(values[i])
		}
		result = append(result, r)
	}

	// Проверяем ошибки после итерации по результатам
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed after iterating rows: %w", err)
	}

	return result, nil
}

// isoLayout совпадает с datetime.isoformat() на стороне API: микросекунды сохраняются
const isoLayout = "2006-01-02T15:04:05.999999"

// Форматы, в которых sqlite и mysql хранят дату-время в текстовых колонках.
// Дробная часть секунд при разборе принимается и без указания в формате.
var textTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// normalizeValue приводит значения драйверов к виду, пригодному для JSON
func normalizeValue(v interface{}) interface{} {
	switch value := v.(type) {
	case []byte:
		return string(value)
	case time.Time:
		return value.Format(isoLayout)
	default:
		return value
	}
}

// isoTime приводит дату-время из строки или time.Time к ISO-8601.
// Нераспознанные строки и NULL возвращаются без изменений.
func isoTime(v interface{}) interface{} {
	switch value := v.(type) {
	case time.Time:
		return value.Format(isoLayout)
	case string:
		for _, layout := range textTimeLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t.Format(isoLayout)
			}
		}
		return value
	default:
		return value
	}
}

// id возвращает целочисленное значение колонки, если оно есть
func (r row) id(column string) (int64, bool) {
	switch value := r[column].(type) {
	case int64:
		return value, true
	case int:
		return int64(value), true
	case int32:
		return int64(value), true
	case float64:
		return int64(value), true
	case string:
		// mysql в текстовом протоколе отдаёт числа строками
		n, err := strconv.ParseInt(value, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// str возвращает строковое значение первой непустой колонки
func (r row) str(columns ...string) string {
	for _, column := range columns {
		if s, ok := r[column].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// toRecord переводит колонки в ключи API: ведущее подчёркивание снимается,
// snake_case становится camelCase. Колонки из omit не попадают в запись.
func (r row) toRecord(omit ...string) models.Record {
	skip := make(map[string]bool, len(omit))
	for _, column := range omit {
		skip[column] = true
	}

	record := make(models.Record, len(r))
	for column, value := range r {
		if skip[column] {
			continue
		}
		record[exportKey(column)] = value
	}
	return record
}

func exportKey(column string) string {
	parts := strings.Split(strings.TrimLeft(column, "_"), "_")
	var b strings.Builder
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 {
			b.WriteString(part)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
