package domain

import "errors"

var (
	// ErrInvalidFilter indica filtro malformado ou campo fora do vocabulário.
	// Rejeitado antes da normalização, nunca chega na camada de cache.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrQueryTimeout indica que a agregação estourou o teto de execução.
	ErrQueryTimeout = errors.New("aggregation query timeout")

	ErrUnavailableServer = errors.New("Oops, something unexpected happened. Please try again later.")
)
