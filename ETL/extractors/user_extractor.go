package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LilVoxy/db_restore/ETL/models"
	"github.com/LilVoxy/db_restore/ETL/utils"
)

// UserExtractor извлекает разделы и пользователей из локальной БД
type UserExtractor struct {
	db     *sql.DB
	logger *utils.ETLLogger
}

// NewUserExtractor создает новый экземпляр UserExtractor
func NewUserExtractor(db *sql.DB, logger *utils.ETLLogger) *UserExtractor {
	return &UserExtractor{
		db:     db,
		logger: logger,
	}
}

// extractSections извлекает все разделы
func (e *UserExtractor) extractSections(ctx context.Context, refs *references) ([]models.Record, error) {
	e.logger.Debug("Начало извлечения разделов")

	rows, err := queryRows(ctx, e.db, `SELECT * FROM sections ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sections: %w", err)
	}

	sections := make([]models.Record, 0, len(rows))
	for _, r := range rows {
		record := r.toRecord()
		if id, ok := r.id("id"); ok {
			refs.sections[id] = record
		}
		sections = append(sections, record)
	}

	e.logger.Debug("Извлечено %d разделов", len(sections))
	return sections, nil
}

// extractUsers извлекает пользователей вместе с их разделами.
// Хеш пароля не выгружается.
func (e *UserExtractor) extractUsers(ctx context.Context, refs *references) ([]models.Record, error) {
	e.logger.Debug("Начало извлечения пользователей")

	rows, err := queryRows(ctx, e.db, `SELECT * FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}

	links, err := queryRows(ctx, e.db, `SELECT user_id, section_id FROM user_sections ORDER BY user_id, section_id`)
	if err != nil {
		return nil, fmt.Errorf("user_sections: %w", err)
	}

	userSections := make(map[int64][]models.Record)
	for _, link := range links {
		userID, ok := link.id("user_id")
		if !ok {
			continue
		}
		sectionID, ok := link.id("section_id")
		if !ok {
			continue
		}
		if section, exists := refs.sections[sectionID]; exists {
			userSections[userID] = append(userSections[userID], section)
		}
	}

	users := make([]models.Record, 0, len(rows))
	for _, r := range rows {
		record := r.toRecord("password", "_password")

		sections := []models.Record{}
		if id, ok := r.id("id"); ok {
			refs.userUIDs[id] = r.str("uid", "_uid")
			if linked, exists := userSections[id]; exists {
				sections = linked
			}
		}
		record["sections"] = sections

		users = append(users, record)
	}

	e.logger.Debug("Извлечено %d пользователей", len(users))
	return users, nil
}
