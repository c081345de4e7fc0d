package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LilVoxy/db_restore/ETL/models"
	"github.com/LilVoxy/db_restore/ETL/utils"
)

// PersonaExtractor извлекает персоны и их связи с пользователями
type PersonaExtractor struct {
	db     *sql.DB
	logger *utils.ETLLogger
}

// NewPersonaExtractor создает новый экземпляр PersonaExtractor
func NewPersonaExtractor(db *sql.DB, logger *utils.ETLLogger) *PersonaExtractor {
	return &PersonaExtractor{
		db:     db,
		logger: logger,
	}
}

// extractPersonas извлекает персоны и запоминает их alias
func (e *PersonaExtractor) extractPersonas(ctx context.Context, refs *references) ([]models.Record, error) {
	rows, err := queryRows(ctx, e.db, `SELECT * FROM personas ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("personas: %w", err)
	}

	personas := make([]models.Record, 0, len(rows))
	for _, r := range rows {
		if id, ok := r.id("id"); ok {
			refs.personaAliases[id] = r.str("alias", "_alias")
		}
		personas = append(personas, r.toRecord())
	}
	return personas, nil
}

// extractUserPersonas извлекает связи пользователь-персона.
// Неразрешённые ссылки выгружаются как null, selected_at - в ISO-8601.
func (e *PersonaExtractor) extractUserPersonas(ctx context.Context, refs *references) ([]models.Record, error) {
	rows, err := queryRows(ctx, e.db, `SELECT * FROM user_personas`)
	if err != nil {
		return nil, fmt.Errorf("user_personas: %w", err)
	}

	associations := make([]models.Record, 0, len(rows))
	for _, r := range rows {
		associations = append(associations, models.Record{
			"userUid":      optional(refs.userUID(r, "user_id")),
			"personaAlias": optional(refs.personaAlias(r, "persona_id")),
			"weight":       r["weight"],
			"selectedAt":   isoTime(r["selected_at"]),
		})
	}
	return associations, nil
}
