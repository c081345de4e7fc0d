package utils

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ETLLogger представляет логгер для процесса переноса данных.
// Пишет структурированный JSON в файл, консоль оператора остаётся за Console.
type ETLLogger struct {
	logger    *zap.SugaredLogger
	isVerbose bool
}

// NewETLLogger создает логгер с файлом restore_log_<дата>.log в каталоге logDir
func NewETLLogger(verbose bool, logDir string, runID string) (*ETLLogger, error) {
	currentTime := time.Now().Format("2006-01-02")
	logFileName := filepath.Join(logDir, fmt.Sprintf("restore_log_%s.log", currentTime))

	config := zap.NewProductionConfig()
	config.OutputPaths = []string{logFileName}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.InitialFields = map[string]interface{}{"run_id": runID}
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &ETLLogger{
		logger:    logger.Sugar(),
		isVerbose: verbose,
	}, nil
}

// NewLogger оборачивает готовый zap-логгер (используется в тестах)
func NewLogger(logger *zap.Logger) *ETLLogger {
	return &ETLLogger{logger: logger.Sugar(), isVerbose: true}
}

// NewNopLogger возвращает логгер, который ничего не пишет
func NewNopLogger() *ETLLogger {
	return NewLogger(zap.NewNop())
}

// Info логирует информационное сообщение
func (l *ETLLogger) Info(format string, v ...interface{}) {
	l.logger.Infof(format, v...)
}

// Error логирует сообщение об ошибке
func (l *ETLLogger) Error(format string, v ...interface{}) {
	l.logger.Errorf(format, v...)
}

// Debug логирует отладочное сообщение (только если включен verbose режим)
func (l *ETLLogger) Debug(format string, v ...interface{}) {
	if !l.isVerbose {
		return
	}
	l.logger.Debugf(format, v...)
}

// With возвращает логгер с дополнительными полями
func (l *ETLLogger) With(keysAndValues ...interface{}) *ETLLogger {
	return &ETLLogger{
		logger:    l.logger.With(keysAndValues...),
		isVerbose: l.isVerbose,
	}
}

// Sync сбрасывает буферы логгера
func (l *ETLLogger) Sync() {
	_ = l.logger.Sync()
}

// LogRestoreStart логирует начало переноса
func (l *ETLLogger) LogRestoreStart(baseURL string) {
	l.logger.Infow("Начало переноса данных", "base_url", baseURL)
}

// LogRestoreComplete логирует завершение переноса
func (l *ETLLogger) LogRestoreComplete(startTime time.Time, imported, failed int, success bool) {
	l.logger.Infow("Перенос данных завершён",
		"duration", time.Since(startTime),
		"imported", imported,
		"failed", failed,
		"success", success,
	)
}

// LogExtractStart логирует начало фазы извлечения данных
func (l *ETLLogger) LogExtractStart() {
	l.Info("Начало фазы Extract (Извлечение данных)")
}

// LogExtractComplete логирует завершение фазы извлечения данных
func (l *ETLLogger) LogExtractComplete(counts map[string]int, duration time.Duration) {
	l.logger.Infow("Фаза Extract завершена", "duration", duration, "counts", counts)
}

// LogCategoryLoaded логирует результат загрузки одной категории
func (l *ETLLogger) LogCategoryLoaded(category string, records, imported, failed int) {
	l.logger.Infow("Категория загружена",
		"category", category,
		"records", records,
		"imported", imported,
		"failed", failed,
	)
}
