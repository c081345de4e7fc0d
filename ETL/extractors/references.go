package extractors

import (
	"github.com/LilVoxy/db_restore/ETL/models"
)

// references хранит соответствие внутренних ID естественным ключам.
// Заполняется по ходу извлечения: сначала разделы и пользователи, потом то, что на них ссылается.
type references struct {
	userUIDs       map[int64]string
	sections       map[int64]models.Record
	topicPaths     map[int64]string
	personaAliases map[int64]string
}

func newReferences() *references {
	return &references{
		userUIDs:       make(map[int64]string),
		sections:       make(map[int64]models.Record),
		topicPaths:     make(map[int64]string),
		personaAliases: make(map[int64]string),
	}
}

// userUID возвращает uid пользователя, на которого ссылается колонка
func (refs *references) userUID(r row, column string) (string, bool) {
	id, ok := r.id(column)
	if !ok {
		return "", false
	}
	uid, ok := refs.userUIDs[id]
	return uid, ok && uid != ""
}

// topicPath возвращает путь страницы темы, на которую ссылается колонка
func (refs *references) topicPath(r row, column string) (string, bool) {
	id, ok := r.id(column)
	if !ok {
		return "", false
	}
	path, ok := refs.topicPaths[id]
	return path, ok && path != ""
}

// personaAlias возвращает alias персоны, на которую ссылается колонка
func (refs *references) personaAlias(r row, column string) (string, bool) {
	id, ok := r.id(column)
	if !ok {
		return "", false
	}
	alias, ok := refs.personaAliases[id]
	return alias, ok && alias != ""
}

// optional превращает пару (значение, найдено) в значение или nil для JSON
func optional(value string, ok bool) interface{} {
	if !ok {
		return nil
	}
	return value
}
