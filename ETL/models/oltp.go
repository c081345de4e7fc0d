package models

import (
	"sort"
)

// Названия категорий данных, переносимых в продакшн
const (
	CategorySections     = "sections"
	CategoryUsers        = "users"
	CategoryTopics       = "topics"
	CategoryMicroblogs   = "microblogs"
	CategoryPosts        = "posts"
	CategoryClassrooms   = "classrooms"
	CategoryFeedback     = "feedback"
	CategoryStudy        = "study"
	CategoryPersonas     = "personas"
	CategoryUserPersonas = "user_personas"
)

// Categories - порядок загрузки категорий.
// Разделы и пользователи идут первыми, остальные данные ссылаются на них.
var Categories = []string{
	CategorySections,
	CategoryUsers,
	CategoryTopics,
	CategoryMicroblogs,
	CategoryPosts,
	CategoryClassrooms,
	CategoryFeedback,
	CategoryStudy,
	CategoryPersonas,
	CategoryUserPersonas,
}

// IsCategory сообщает, является ли имя одной из переносимых категорий
func IsCategory(name string) bool {
	for _, category := range Categories {
		if category == name {
			return true
		}
	}
	return false
}

// Record представляет одну запись в том виде, в котором она уходит в API:
// внутренние ID связей заменены естественными ключами (uid, путь, alias)
type Record map[string]interface{}

// Dataset содержит записи, сгруппированные по категориям
type Dataset map[string][]Record

// Count возвращает количество записей в категории
func (d Dataset) Count(category string) int {
	return len(d[category])
}

// Keys возвращает непустые категории: сначала известные в порядке загрузки,
// затем неизвестные (например, из JSON-снимка) по алфавиту
func (d Dataset) Keys() []string {
	known := make(map[string]bool, len(Categories))
	var keys []string
	for _, category := range Categories {
		known[category] = true
		if len(d[category]) > 0 {
			keys = append(keys, category)
		}
	}

	var extra []string
	for category, records := range d {
		if !known[category] && len(records) > 0 {
			extra = append(extra, category)
		}
	}
	sort.Strings(extra)

	return append(keys, extra...)
}
