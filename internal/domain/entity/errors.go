package entity

import "errors"

var (
	// ErrResourceNotFound исходный файл отсутствует или не читается
	ErrResourceNotFound = errors.New("resource not found")

	// ErrIOFailure не удалось записать изображение, маску или аннотацию
	ErrIOFailure = errors.New("io failure")

	// ErrMalformedAnnotation строка аннотации не разбирается
	ErrMalformedAnnotation = errors.New("malformed annotation")
)
