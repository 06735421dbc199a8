package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"defectgen/internal/domain/entity"
)

type Config struct {
	SourceDir      string
	DatasetDir     string
	TrainImagesNum int
	Workers        int
	Seed           uint64 // 0 означает seed от текущего времени
	DefectTypes    []entity.DefectType
	ContourBackend string
	SkipExisting   bool
	DryRun         bool // записи остаются в памяти, диск только читается

	RotationAngles []int
	BrightnessMin  float64
	BrightnessMax  float64

	LogLevel logrus.Level

	TelegramToken  string
	TelegramChatID int64
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		SourceDir:      os.Getenv("SOURCE_DIR"),
		DatasetDir:     getString("DATASET_DIR", "dataset"),
		ContourBackend: getString("CONTOUR_BACKEND", "moore"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
	}

	var err error
	if cfg.TrainImagesNum, err = getInt("TRAIN_IMAGES_NUM", 10000); err != nil {
		return nil, err
	}
	if cfg.Workers, err = getInt("WORKERS", runtime.NumCPU()); err != nil {
		return nil, err
	}
	if cfg.Seed, err = getUint("SEED", 0); err != nil {
		return nil, err
	}
	if cfg.SkipExisting, err = getBool("SKIP_EXISTING", false); err != nil {
		return nil, err
	}
	if cfg.DryRun, err = getBool("DRY_RUN", false); err != nil {
		return nil, err
	}
	if cfg.BrightnessMin, err = getFloat("BRIGHTNESS_MIN", 0.5); err != nil {
		return nil, err
	}
	if cfg.BrightnessMax, err = getFloat("BRIGHTNESS_MAX", 1.5); err != nil {
		return nil, err
	}
	if cfg.TelegramChatID, err = getInt64("TELEGRAM_CHAT_ID", 0); err != nil {
		return nil, err
	}
	if cfg.RotationAngles, err = getInts("ROTATION_ANGLES", []int{15, 30, 45, 60}); err != nil {
		return nil, err
	}
	if cfg.DefectTypes, err = parseDefectTypes(getString("DEFECT_TYPES", string(entity.DefectScratch))); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = logrus.ParseLevel(getString("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

// Validate проверяет параметры, нужные для генерации датасета.
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return errors.New("SOURCE_DIR is required")
	}
	if c.DatasetDir == "" {
		return errors.New("DATASET_DIR is required")
	}
	if c.TrainImagesNum < 0 {
		return fmt.Errorf("TRAIN_IMAGES_NUM must not be negative, got %d", c.TrainImagesNum)
	}
	if c.Workers < 0 {
		return fmt.Errorf("WORKERS must not be negative, got %d", c.Workers)
	}
	if len(c.DefectTypes) == 0 {
		return errors.New("DEFECT_TYPES is empty")
	}
	if c.BrightnessMin <= 0 || c.BrightnessMin > c.BrightnessMax {
		return fmt.Errorf("invalid brightness range [%g, %g]", c.BrightnessMin, c.BrightnessMax)
	}
	return nil
}

// TelegramEnabled сообщает, настроена ли отправка отчётов в Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

func getString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getUint(key string, def uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

// getInts читает список целых через запятую.
func getInts(key string, def []int) ([]int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	var out []int
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", key, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseDefectTypes(v string) ([]entity.DefectType, error) {
	var out []entity.DefectType
	for _, part := range strings.Split(v, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		t, err := entity.ParseDefectType(part)
		if err != nil {
			return nil, fmt.Errorf("parse DEFECT_TYPES: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}
