package entity

import "time"

// Split часть датасета
type Split string

const (
	SplitTrain Split = "train" // обучающая выборка
	SplitVal   Split = "val"   // валидационная выборка
)

// BatchReport хранит итог пакетной генерации датасета.
type BatchReport struct {
	Total    int           // файлов с допустимым расширением
	Train    int           // записано в train
	Val      int           // записано в val
	Skipped  int           // пропущено (не читается или уже обработано)
	Failed   int           // ошибка записи
	Defects  int           // всего записей о дефектах
	Duration time.Duration // время обработки
	Sample   string        // путь к одному из обработанных изображений
}

// Processed возвращает количество успешно записанных троек.
func (r *BatchReport) Processed() int {
	return r.Train + r.Val
}

// SplitFor назначает выборку по порядковому номеру файла: первые trainImagesNum идут в train.
func SplitFor(index, trainImagesNum int) Split {
	if index < trainImagesNum {
		return SplitTrain
	}
	return SplitVal
}

// EvaluationReport итог сравнения масок детектора с эталонными.
type EvaluationReport struct {
	Split   Split
	Images  int     // оценено изображений
	Failed  int     // детектор вернул ошибку или маска не прочитана
	MeanIoU float64 // средний IoU по оценённым изображениям
}
