package domain

import "errors"

var (
	// ErrTemplateNotFound is returned when no active survey template exists.
	ErrTemplateNotFound = errors.New("no hay plantilla de encuesta activa")
	// ErrResponseNotFound indicates a referenced response session is absent.
	ErrResponseNotFound = errors.New("respuesta no encontrada")
	// ErrQuestionNotFound indicates a referenced question is absent.
	ErrQuestionNotFound = errors.New("pregunta no encontrada")
	// ErrInvalidDateRange indicates an unparsable report date bound.
	ErrInvalidDateRange = errors.New("rango de fechas inválido")
	// ErrInvalidCredentials is returned on bad login attempts.
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	// ErrInvalidToken indicates a missing, malformed, or expired bearer token.
	ErrInvalidToken = errors.New("token inválido o expirado")
	// ErrAccountNotFound indicates the referenced account is absent.
	ErrAccountNotFound = errors.New("usuario no encontrado")
	// ErrExportNotFound indicates a download reference that has no stored artifact.
	ErrExportNotFound = errors.New("exportación no encontrada")
)
