package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"defectgen/config"
	telegram "defectgen/internal/api"
	"defectgen/internal/container"
	"defectgen/internal/domain/entity"
	"defectgen/internal/domain/port"
	"defectgen/internal/infrastructure/storage"
)

const usage = `Usage: defectgen <command> [flags]

Commands:
  generate   нанести дефекты на SOURCE_DIR и разложить датасет в DATASET_DIR
  augment    добавить аугментированные копии в выборку
  preview    сгенерировать дефекты для одного изображения и сохранить файлы проверки
  collect    собрать фотографии из вложенных каталогов под случайными именами
  organize   пронумеровать фотографии и разделить на dataset1/dataset2
  split      распределить фотографии по каталогам типов дефектов
  evaluate   сравнить маски детектора с эталонными
  inspect    проверить один снимок детектором
  restore    убрать дефекты по маске
  bot        запустить Telegram-бота для проверки снимков`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logrus.New()
	log.SetLevel(cfg.LogLevel)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Создаём файловое хранилище датасета
	var store port.DatasetStore = storage.NewFSDatasetStore()
	var dryRun *storage.DryRunStore
	if cfg.DryRun {
		dryRun = storage.NewDryRunStore(store)
		store = dryRun
	}

	cmd, args := os.Args[1], os.Args[2:]
	var reporter port.BatchReporter
	if cmd == "generate" {
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid config: %v", err)
		}
		reporter = newReporter(cfg, log)
	}

	// Собираем сервисы приложения
	c, err := container.New(cfg, store, reporter, log)
	if err != nil {
		log.Fatalf("Failed to build services: %v", err)
	}
	log.WithField("seed", c.Seed).Debug("services ready")

	if err := run(ctx, cmd, args, cfg, c, store, log); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("%s failed: %v", cmd, err)
	}
	if dryRun != nil {
		for _, p := range dryRun.Written() {
			log.WithField("path", p).Info("dry run: not written")
		}
	}
}

func run(ctx context.Context, cmd string, args []string, cfg *config.Config, c *container.Container, store port.DatasetStore, log *logrus.Logger) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)

	switch cmd {
	case "generate":
		if err := fs.Parse(args); err != nil {
			return err
		}
		_, err := c.DatasetService.Process(ctx)
		return err

	case "augment":
		split := fs.String("split", "train", "выборка: train, val или all")
		if err := fs.Parse(args); err != nil {
			return err
		}
		splits, err := parseSplits(*split)
		if err != nil {
			return err
		}
		for _, s := range splits {
			if _, err := c.AugmentationService.Augment(ctx, s); err != nil {
				return err
			}
		}
		return nil

	case "preview":
		image := fs.String("image", "", "путь к изображению")
		out := fs.String("out", "preview", "каталог для результатов")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *image == "" {
			return errors.New("-image is required")
		}
		res, err := c.PreviewService.Preview(ctx, *image, *out, c.Seed)
		if err != nil {
			return err
		}
		for _, f := range res.Files {
			fmt.Println(f)
		}
		return nil

	case "collect":
		src := fs.String("src", cfg.SourceDir, "корневой каталог с фотографиями")
		dest := fs.String("dest", "", "каталог назначения")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *dest == "" {
			return errors.New("-dest is required")
		}
		_, err := c.Organizer.Collect(ctx, *src, *dest)
		return err

	case "organize":
		dir := fs.String("dir", cfg.SourceDir, "каталог с фотографиями")
		dest := fs.String("dest", "", "каталог для dataset1 и dataset2")
		first := fs.Int("first", 10000, "сколько файлов положить в dataset1")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *dest == "" {
			return errors.New("-dest is required")
		}
		_, err := c.Organizer.Organize(ctx, *dir, *dest, *first)
		return err

	case "split":
		dir := fs.String("dir", cfg.SourceDir, "каталог с фотографиями")
		dest := fs.String("dest", "", "каталог для папок по типам дефектов")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *dest == "" {
			return errors.New("-dest is required")
		}
		counts, err := c.Organizer.SplitByCategory(ctx, *dir, *dest, cfg.DefectTypes)
		for t, n := range counts {
			log.WithField("type", t).WithField("count", n).Info("photos moved")
		}
		return err

	case "evaluate":
		split := fs.String("split", string(entity.SplitVal), "выборка: train или val")
		if err := fs.Parse(args); err != nil {
			return err
		}
		splits, err := parseSplits(*split)
		if err != nil {
			return err
		}
		for _, s := range splits {
			report, err := c.EvaluationService.Evaluate(ctx, s)
			if err != nil {
				return err
			}
			fmt.Printf("%s: images=%d failed=%d mean_iou=%.4f\n", report.Split, report.Images, report.Failed, report.MeanIoU)
		}
		return nil

	case "inspect":
		image := fs.String("image", "", "путь к снимку")
		out := fs.String("out", "", "куда сохранить снимок с подсветкой")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *image == "" {
			return errors.New("-image is required")
		}
		if *out == "" {
			ext := filepath.Ext(*image)
			*out = (*image)[:len(*image)-len(ext)] + "_inspected" + ext
		}
		res, err := c.InspectionService.Inspect(ctx, *image, *out)
		if err != nil {
			return err
		}
		for _, line := range res.Lines {
			fmt.Println(line)
		}
		return nil

	case "restore":
		image := fs.String("image", "", "путь к изображению")
		mask := fs.String("mask", "", "путь к маске дефектов")
		out := fs.String("out", "", "куда сохранить результат")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *image == "" || *mask == "" || *out == "" {
			return errors.New("-image, -mask and -out are required")
		}
		return c.RestoreService.Restore(ctx, *image, *mask, *out)

	case "bot":
		workDir := fs.String("work", filepath.Join(os.TempDir(), "defectgen-bot"), "каталог для присланных фото")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if cfg.TelegramToken == "" {
			return errors.New("TELEGRAM_TOKEN is required")
		}
		bot, err := telegram.NewBot(cfg.TelegramToken, c.InspectionService, store, *workDir, log)
		if err != nil {
			return fmt.Errorf("create bot: %w", err)
		}
		log.Info("Bot is running...")
		if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil

	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// newReporter выбирает отправку отчёта: Telegram, если он настроен, иначе лог.
func newReporter(cfg *config.Config, log logrus.FieldLogger) port.BatchReporter {
	if !cfg.TelegramEnabled() {
		return telegram.NewLogReporter(log)
	}
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.WithError(err).Warn("telegram is unavailable, reporting to log")
		return telegram.NewLogReporter(log)
	}
	return telegram.NewBatchReporter(api, cfg.TelegramChatID)
}

func parseSplits(s string) ([]entity.Split, error) {
	switch entity.Split(s) {
	case entity.SplitTrain, entity.SplitVal:
		return []entity.Split{entity.Split(s)}, nil
	case "all":
		return []entity.Split{entity.SplitTrain, entity.SplitVal}, nil
	default:
		return nil, fmt.Errorf("unknown split %q", s)
	}
}
