package flyer

import (
	"errors"
	"fmt"
)

// ErrValidation marca qualquer falha estrutural do encarte. O encarte inteiro é rejeitado.
var ErrValidation = errors.New("encarte inválido")

// Motivos de rejeição.
var (
	ErrNilPayload            = errors.New("dados do encarte ausentes")
	ErrMissingEstablishment  = errors.New("estabelecimento não informado")
	ErrNoProducts            = errors.New("encarte sem produtos")
	ErrProductMissingName    = errors.New("produto sem nome")
	ErrProductPriceNotNumber = errors.New("preço do produto não é numérico")
	ErrProductNegativePrice  = errors.New("preço do produto negativo")
)

// ErrFormat marca um campo numérico que não pôde ser convertido na normalização.
var ErrFormat = errors.New("formato numérico inválido")

type FormatError struct {
	Field string
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: campo %s = %q", ErrFormat, e.Field, e.Value)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

func rejected(reason error) error {
	return fmt.Errorf("%w: %w", ErrValidation, reason)
}

func rejectedAt(reason error, index int) error {
	return fmt.Errorf("%w: %w at index %d", ErrValidation, reason, index)
}
