package port

import (
	"context"

	"defectgen/internal/domain/entity"
)

// BatchReporter отправляет итог пакетной обработки
type BatchReporter interface {
	// Report публикует сводку и, если есть, превью с подсветкой дефектов
	Report(ctx context.Context, report *entity.BatchReport, preview []byte) error
}
