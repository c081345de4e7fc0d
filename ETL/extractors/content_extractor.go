package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LilVoxy/db_restore/ETL/models"
	"github.com/LilVoxy/db_restore/ETL/utils"
)

// ContentExtractor извлекает темы, микроблоги, посты и отзывы
type ContentExtractor struct {
	db     *sql.DB
	logger *utils.ETLLogger
}

// NewContentExtractor создает новый экземпляр ContentExtractor
func NewContentExtractor(db *sql.DB, logger *utils.ETLLogger) *ContentExtractor {
	return &ContentExtractor{
		db:     db,
		logger: logger,
	}
}

// extractTopics извлекает темы микроблогов и запоминает их пути страниц
func (e *ContentExtractor) extractTopics(ctx context.Context, refs *references) ([]models.Record, error) {
	rows, err := queryRows(ctx, e.db, `SELECT * FROM topics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("topics: %w", err)
	}

	topics := make([]models.Record, 0, len(rows))
	for _, r := range rows {
		if id, ok := r.id("id"); ok {
			refs.topicPaths[id] = r.str("_page_path", "page_path")
		}
		topics = append(topics, r.toRecord())
	}
	return topics, nil
}

// extractMicroblogs извлекает микроблоги с uid автора и путём темы
func (e *ContentExtractor) extractMicroblogs(ctx context.Context, refs *references) ([]models.Record, error) {
	rows, err := queryRows(ctx, e.db, `SELECT * FROM microblogs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("microblogs: %w", err)
	}

	microblogs := make([]models.Record, 0, len(rows))
	for _, r := range rows {
		record := r.toRecord()
		if uid, ok := refs.userUID(r, "user_id"); ok {
			record["userUid"] = uid
		}
		if path, ok := refs.topicPath(r, "topic_id"); ok {
			record["topicPath"] = path
		}
		microblogs = append(microblogs, record)
	}
	return microblogs, nil
}

// extractPosts извлекает посты с uid автора
func (e *ContentExtractor) extractPosts(ctx context.Context, refs *references) ([]models.Record, error) {
	rows, err := queryRows(ctx, e.db, `SELECT * FROM posts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("posts: %w", err)
	}

	posts := make([]models.Record, 0, len(rows))
	for _, r := range rows {
		record := r.toRecord()
		if uid, ok := refs.userUID(r, "user_id"); ok {
			record["userUid"] = uid
		}
		posts = append(posts, record)
	}
	return posts, nil
}

// extractFeedback извлекает отзывы как есть
func (e *ContentExtractor) extractFeedback(ctx context.Context, _ *references) ([]models.Record, error) {
	rows, err := queryRows(ctx, e.db, `SELECT * FROM feedback ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("feedback: %w", err)
	}

	feedback := make([]models.Record, 0, len(rows))
	for _, r := range rows {
		feedback = append(feedback, r.toRecord())
	}
	return feedback, nil
}
