package transform

import (
	"github.com/LilVoxy/db_restore/ETL/models"
)

// stringField возвращает строковое значение поля или пустую строку
func stringField(record models.Record, key string) string {
	s, _ := record[key].(string)
	return s
}

// topicPath читает путь страницы темы в любом из двух написаний
func topicPath(record models.Record) string {
	if path := stringField(record, "pagePath"); path != "" {
		return path
	}
	return stringField(record, "page_path")
}

// authorUID возвращает uid автора: сначала денормализованное поле userUid,
// затем вложенный объект user
func authorUID(record models.Record) (string, bool) {
	if uid := stringField(record, "userUid"); uid != "" {
		return uid, true
	}

	var nested map[string]interface{}
	switch user := record["user"].(type) {
	case map[string]interface{}:
		nested = user
	case models.Record:
		nested = user
	}

	if uid, ok := nested["uid"].(string); ok && uid != "" {
		return uid, true
	}
	return "", false
}
