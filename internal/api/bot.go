package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/disintegration/imaging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	app "defectgen/internal/application"
	"defectgen/internal/domain/port"
)

const (
	msgStart = `👋 Привет! Я бот для проверки снимков деталей на дефекты.

📸 Отправьте мне фото детали, и я отмечу найденные дефекты.

📋 Команды:
/help — справка`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото детали
2️⃣ Бот проверит качество снимка и построит маску дефектов
3️⃣ Вы получите список областей и фото с подсветкой

💡 Рекомендации:
• Снимайте при хорошем освещении
• Используйте однотонный фон
• Фото должно быть чётким`

	msgSendPhoto       = "📸 Пожалуйста, отправьте фото детали для проверки на дефекты."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgNoDefects       = "✅ Дефекты не обнаружены."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
)

// Inspector проверяет снимок и сохраняет его копию с подсветкой
type Inspector interface {
	Inspect(ctx context.Context, imagePath, outPath string) (*app.InspectionOutput, error)
}

// botAPI методы tgbotapi.BotAPI, нужные боту
type botAPI interface {
	Sender
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot представляет Telegram-бота
type Bot struct {
	api       botAPI
	token     string
	inspector Inspector
	store     port.DatasetStore
	workDir   string // каталог для присланных фото и результатов
	log       logrus.FieldLogger
}

// NewBot создаёт нового бота
func NewBot(token string, inspector Inspector, store port.DatasetStore, workDir string, log logrus.FieldLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.WithField("account", api.Self.UserName).Info("authorized in telegram")

	return &Bot{
		api:       api,
		token:     token,
		inspector: inspector,
		store:     store,
		workDir:   workDir,
		log:       log,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.sendMessage(msg.Chat.ID, msgStart)
	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)
	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

// handlePhoto скачивает фото, прогоняет проверку и отвечает результатом
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	b.sendMessage(msg.Chat.ID, msgProcessing)

	// Получаем файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]
	log := b.log.WithField("file_id", photo.FileUniqueID)

	imageData, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		log.WithError(err).Error("failed to download photo")
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	in := filepath.Join(b.workDir, photo.FileUniqueID+".jpg")
	out := filepath.Join(b.workDir, photo.FileUniqueID+"_highlight.jpg")
	if err := b.store.SaveFile(ctx, in, imageData); err != nil {
		log.WithError(err).Error("failed to store photo")
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	res, err := b.inspector.Inspect(ctx, in, out)
	if err != nil {
		log.WithError(err).Warn("inspection failed")
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}
	b.replyInspection(ctx, msg.Chat.ID, res)
}

// replyInspection отправляет описание найденных областей и фото с подсветкой
func (b *Bot) replyInspection(ctx context.Context, chatID int64, res *app.InspectionOutput) {
	if len(res.Areas) == 0 {
		b.sendMessage(chatID, msgNoDefects)
		return
	}
	b.sendMessage(chatID, FormatInspection(res))

	img, err := b.store.LoadImage(ctx, res.Highlighted)
	if err != nil {
		b.log.WithError(err).Error("failed to load highlighted image")
		return
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		b.log.WithError(err).Error("failed to encode highlighted image")
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: filepath.Base(res.Highlighted), Bytes: buf.Bytes()})
	if _, err := b.api.Send(photo); err != nil {
		b.log.WithError(err).Error("failed to send photo")
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).Error("failed to send message")
	}
}

// FormatInspection текст ответа с перечнем найденных областей
func FormatInspection(res *app.InspectionOutput) string {
	text := fmt.Sprintf("🔎 Найдено областей с дефектами: %d\n", len(res.Areas))
	for i, r := range res.Areas {
		text += fmt.Sprintf("\n%d. от (%d, %d) до (%d, %d)", i+1, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
	}
	return text
}

// Проверка реализации интерфейса
var (
	_ botAPI    = (*tgbotapi.BotAPI)(nil)
	_ Inspector = (*app.InspectionService)(nil)
)
