package repository

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe (o no está activo).
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un duplicado o una violación de constraint.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indica que los datos de entrada son inválidos.
	ErrInvalidInput = errors.New("invalid input")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }
