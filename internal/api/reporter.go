package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"defectgen/internal/domain/entity"
	"defectgen/internal/domain/port"
)

const msgPreviewCaption = "🔍 Пример изображения с подсветкой дефектов"

// Sender часть tgbotapi.BotAPI, через которую уходят сообщения
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// BatchReporter отправляет итог генерации датасета в чат Telegram
type BatchReporter struct {
	api    Sender
	chatID int64
}

// NewBatchReporter создаёт отправителя отчётов в чат chatID
func NewBatchReporter(api Sender, chatID int64) *BatchReporter {
	return &BatchReporter{api: api, chatID: chatID}
}

// Report отправляет сводку и, если передано, превью с подсветкой
func (r *BatchReporter) Report(ctx context.Context, report *entity.BatchReport, preview []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := r.api.Send(tgbotapi.NewMessage(r.chatID, FormatReport(report))); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	if len(preview) == 0 {
		return nil
	}

	photo := tgbotapi.NewPhoto(r.chatID, tgbotapi.FileBytes{Name: "preview.jpg", Bytes: preview})
	photo.Caption = msgPreviewCaption
	if _, err := r.api.Send(photo); err != nil {
		return fmt.Errorf("send preview: %w", err)
	}
	return nil
}

// LogReporter пишет итог в лог, когда Telegram не настроен
type LogReporter struct {
	log logrus.FieldLogger
}

// NewLogReporter создаёт отчёт в лог
func NewLogReporter(log logrus.FieldLogger) *LogReporter {
	return &LogReporter{log: log}
}

// Report пишет сводку в лог
func (r *LogReporter) Report(ctx context.Context, report *entity.BatchReport, preview []byte) error {
	r.log.WithFields(logrus.Fields{
		"processed":   report.Processed(),
		"skipped":     report.Skipped,
		"failed":      report.Failed,
		"defects":     report.Defects,
		"duration":    report.Duration.Round(time.Millisecond).String(),
		"has_preview": len(preview) > 0,
	}).Info("batch report")
	return nil
}

// FormatReport текст сводки по пакету
func FormatReport(r *entity.BatchReport) string {
	var b strings.Builder
	if r.Failed > 0 {
		b.WriteString("⚠️ Генерация датасета завершена с ошибками\n\n")
	} else {
		b.WriteString("✅ Генерация датасета завершена\n\n")
	}
	fmt.Fprintf(&b, "🖼 Всего изображений: %d\n", r.Total)
	fmt.Fprintf(&b, "📂 train: %d, val: %d\n", r.Train, r.Val)
	fmt.Fprintf(&b, "⏭ Пропущено: %d\n", r.Skipped)
	fmt.Fprintf(&b, "❌ Ошибок: %d\n", r.Failed)
	fmt.Fprintf(&b, "🔖 Дефектов: %d\n", r.Defects)
	fmt.Fprintf(&b, "⏱ Время: %s", r.Duration.Round(time.Second))
	return b.String()
}

// Проверка реализации интерфейса
var (
	_ port.BatchReporter = (*BatchReporter)(nil)
	_ port.BatchReporter = (*LogReporter)(nil)
	_ Sender             = (*tgbotapi.BotAPI)(nil)
)
