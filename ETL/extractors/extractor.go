package extractors

import (
	"context"
	"database/sql"
	"time"

	"github.com/LilVoxy/db_restore/ETL/config"
	"github.com/LilVoxy/db_restore/ETL/models"
	"github.com/LilVoxy/db_restore/ETL/utils"
)

// Source - источник всех переносимых данных, сгруппированных по категориям
type Source interface {
	ExtractAll(ctx context.Context) (models.Dataset, error)
}

// Extractor координирует процесс извлечения данных из локальной БД
type Extractor struct {
	db                 *sql.DB
	logger             *utils.ETLLogger
	console            *utils.Console
	userExtractor      *UserExtractor
	contentExtractor   *ContentExtractor
	classroomExtractor *ClassroomExtractor
	personaExtractor   *PersonaExtractor
}

// NewExtractor создает новый экземпляр Extractor
func NewExtractor(db *sql.DB, logger *utils.ETLLogger, console *utils.Console) *Extractor {
	return &Extractor{
		db:                 db,
		logger:             logger,
		console:            console,
		userExtractor:      NewUserExtractor(db, logger),
		contentExtractor:   NewContentExtractor(db, logger),
		classroomExtractor: NewClassroomExtractor(db, logger),
		personaExtractor:   NewPersonaExtractor(db, logger),
	}
}

type extractStep struct {
	category string
	label    string
	extract  func(ctx context.Context, refs *references) ([]models.Record, error)
}

// ExtractAll извлекает все категории в порядке models.Categories.
// Любая ошибка возвращается как *models.DataReadError.
func (e *Extractor) ExtractAll(ctx context.Context) (models.Dataset, error) {
	startTime := time.Now()
	e.logger.LogExtractStart()
	e.console.Println("  Reading ALL data from local database...")

	steps := []extractStep{
		{models.CategorySections, "sections", e.userExtractor.extractSections},
		{models.CategoryUsers, "users", e.userExtractor.extractUsers},
		{models.CategoryTopics, "topics", e.contentExtractor.extractTopics},
		{models.CategoryMicroblogs, "microblogs", e.contentExtractor.extractMicroblogs},
		{models.CategoryPosts, "posts", e.contentExtractor.extractPosts},
		{models.CategoryClassrooms, "classrooms", e.classroomExtractor.extractClassrooms},
		{models.CategoryFeedback, "feedback records", e.contentExtractor.extractFeedback},
		{models.CategoryStudy, "study records", e.classroomExtractor.extractStudy},
		{models.CategoryPersonas, "personas", e.personaExtractor.extractPersonas},
		{models.CategoryUserPersonas, "user-persona associations", e.personaExtractor.extractUserPersonas},
	}

	refs := newReferences()
	dataset := make(models.Dataset, len(steps))
	counts := make(map[string]int, len(steps))

	for _, step := range steps {
		records, err := step.extract(ctx, refs)
		if err != nil {
			e.logger.Error("Ошибка при извлечении %s: %v", step.category, err)
			return nil, &models.DataReadError{Category: step.category, Err: err}
		}
		dataset[step.category] = records
		counts[step.category] = len(records)
		e.console.Printf("    Found %d %s\n", len(records), step.label)
	}

	e.logger.LogExtractComplete(counts, time.Since(startTime))
	return dataset, nil
}

// DatabaseSource открывает локальную БД только на время извлечения
type DatabaseSource struct {
	config  config.DatabaseConfig
	logger  *utils.ETLLogger
	console *utils.Console
}

// NewDatabaseSource создает источник данных поверх локальной БД
func NewDatabaseSource(cfg config.DatabaseConfig, logger *utils.ETLLogger, console *utils.Console) *DatabaseSource {
	return &DatabaseSource{
		config:  cfg,
		logger:  logger,
		console: console,
	}
}

// ExtractAll подключается к БД, извлекает все данные и закрывает подключение
func (s *DatabaseSource) ExtractAll(ctx context.Context) (models.Dataset, error) {
	db, err := config.ConnectDatabase(ctx, s.config)
	if err != nil {
		s.logger.Error("Ошибка подключения к локальной БД: %v", err)
		return nil, &models.DataReadError{Err: err}
	}
	defer func() {
		if err := db.Close(); err != nil {
			s.logger.Error("Ошибка при закрытии соединения с БД: %v", err)
		}
	}()

	return NewExtractor(db, s.logger, s.console).ExtractAll(ctx)
}
