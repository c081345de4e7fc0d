package transform

import (
	"github.com/LilVoxy/db_restore/ETL/config"
	"github.com/LilVoxy/db_restore/ETL/models"
	"github.com/LilVoxy/db_restore/ETL/utils"
)

// DefaultFilter убирает данные, которые продакшн-сервер создаёт сам при инициализации
type DefaultFilter struct {
	users       map[string]bool
	sections    map[string]bool
	topics      map[string]bool
	keepOrphans bool
	logger      *utils.ETLLogger
	console     *utils.Console
}

// NewDefaultFilter создает фильтр по спискам из конфигурации
func NewDefaultFilter(cfg config.FilterConfig, logger *utils.ETLLogger, console *utils.Console) *DefaultFilter {
	return &DefaultFilter{
		users:       toSet(cfg.Users),
		sections:    toSet(cfg.Sections),
		topics:      toSet(cfg.Topics),
		keepOrphans: cfg.KeepOrphans,
		logger:      logger,
		console:     console,
	}
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// IsDefaultUser сообщает, является ли пользователь тестовым
func (f *DefaultFilter) IsDefaultUser(uid string) bool {
	return f.users[uid]
}

// IsDefaultSection сообщает, является ли раздел разделом по умолчанию
func (f *DefaultFilter) IsDefaultSection(abbreviation string) bool {
	return f.sections[abbreviation]
}

// IsDefaultTopic сообщает, является ли тема темой по умолчанию
func (f *DefaultFilter) IsDefaultTopic(pagePath string) bool {
	return f.topics[pagePath]
}

// Apply возвращает новый набор данных без записей по умолчанию.
// Исходный набор не изменяется. Категории без правил переносятся как есть.
func (f *DefaultFilter) Apply(dataset models.Dataset) models.Dataset {
	filtered := make(models.Dataset, len(dataset))
	for category, records := range dataset {
		filtered[category] = records
	}

	f.filterCategory(filtered, models.CategoryUsers, "default users", func(r models.Record) bool {
		return f.IsDefaultUser(stringField(r, "uid"))
	})
	f.filterCategory(filtered, models.CategorySections, "default sections", func(r models.Record) bool {
		return f.IsDefaultSection(stringField(r, "abbreviation"))
	})
	f.filterCategory(filtered, models.CategoryTopics, "default topics", func(r models.Record) bool {
		return f.IsDefaultTopic(topicPath(r))
	})
	f.filterCategory(filtered, models.CategoryMicroblogs, "microblogs from default users", f.isDefaultAuthored)
	f.filterCategory(filtered, models.CategoryPosts, "posts from default users", f.isDefaultAuthored)

	return filtered
}

// filterCategory заменяет записи категории отфильтрованной копией
func (f *DefaultFilter) filterCategory(dataset models.Dataset, category, label string, isDefault func(models.Record) bool) {
	records := dataset[category]
	if len(records) == 0 {
		return
	}

	kept := make([]models.Record, 0, len(records))
	for _, record := range records {
		if !isDefault(record) {
			kept = append(kept, record)
		}
	}
	dataset[category] = kept

	if skipped := len(records) - len(kept); skipped > 0 {
		f.console.Printf("  Filtered out %d %s\n", skipped, label)
		f.logger.Info("Отфильтровано %d записей категории %s", skipped, category)
	}
}

// isDefaultAuthored проверяет автора микроблога или поста.
// Запись без определимого автора считается принадлежащей тестовому пользователю,
// если не включён keepOrphans.
func (f *DefaultFilter) isDefaultAuthored(record models.Record) bool {
	uid, ok := authorUID(record)
	if !ok {
		f.logger.Debug("Запись без автора: %v", record["id"])
		return !f.keepOrphans
	}
	return f.IsDefaultUser(uid)
}
