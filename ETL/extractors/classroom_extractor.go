package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LilVoxy/db_restore/ETL/models"
	"github.com/LilVoxy/db_restore/ETL/utils"
)

// ClassroomExtractor извлекает классы и записи трекера учёбы
type ClassroomExtractor struct {
	db     *sql.DB
	logger *utils.ETLLogger
}

// NewClassroomExtractor создает новый экземпляр ClassroomExtractor
func NewClassroomExtractor(db *sql.DB, logger *utils.ETLLogger) *ClassroomExtractor {
	return &ClassroomExtractor{
		db:     db,
		logger: logger,
	}
}

// extractClassrooms извлекает классы с uid преподавателя и uid учеников
func (e *ClassroomExtractor) extractClassrooms(ctx context.Context, refs *references) ([]models.Record, error) {
	rows, err := queryRows(ctx, e.db, `SELECT * FROM classrooms ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("classrooms: %w", err)
	}

	links, err := queryRows(ctx, e.db, `SELECT classroom_id, student_id FROM classroom_students ORDER BY classroom_id, student_id`)
	if err != nil {
		return nil, fmt.Errorf("classroom_students: %w", err)
	}

	students := make(map[int64][]string)
	for _, link := range links {
		classroomID, ok := link.id("classroom_id")
		if !ok {
			continue
		}
		if uid, ok := refs.userUID(link, "student_id"); ok {
			students[classroomID] = append(students[classroomID], uid)
		}
	}

	classrooms := make([]models.Record, 0, len(rows))
	for _, r := range rows {
		record := r.toRecord()
		if uid, ok := refs.userUID(r, "owner_teacher_id"); ok {
			record["ownerUid"] = uid
		}

		studentUIDs := []string{}
		if id, ok := r.id("id"); ok && len(students[id]) > 0 {
			studentUIDs = students[id]
		}
		record["studentUids"] = studentUIDs

		classrooms = append(classrooms, record)
	}

	e.logger.Debug("Извлечено %d классов, %d связей с учениками", len(classrooms), len(links))
	return classrooms, nil
}

// extractStudy извлекает записи трекера учёбы с uid пользователя
func (e *ClassroomExtractor) extractStudy(ctx context.Context, refs *references) ([]models.Record, error) {
	rows, err := queryRows(ctx, e.db, `SELECT * FROM study ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("study: %w", err)
	}

	study := make([]models.Record, 0, len(rows))
	for _, r := range rows {
		record := r.toRecord()
		if uid, ok := refs.userUID(r, "user_id"); ok {
			record["userUid"] = uid
		}
		study = append(study, record)
	}
	return study, nil
}
