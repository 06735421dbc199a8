package port

import "image"

// QualityGate проверка пригодности снимка перед анализом
type QualityGate interface {
	// CheckQuality возвращает ошибку для размытого, пересвеченного или слишком маленького снимка
	CheckQuality(img image.Image) error
}
