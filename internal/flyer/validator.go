// Package flyer valida e normaliza o resultado bruto da extração de um encarte.
package flyer

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"

	"ofertaspro/internal/model"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	reIndex = regexp.MustCompile(`\[(\d+)\]`)
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Decode lê o JSON devolvido pela extração. JSON malformado ou com tipos errados
// (ex.: "produtos" que não é lista) conta como encarte inválido.
func Decode(data []byte) (*model.RawFlyerPayload, error) {
	var p *model.RawFlyerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, rejected(err)
	}
	if p == nil {
		return nil, rejected(ErrNilPayload)
	}
	return p, nil
}

// Validate confere a estrutura mínima do encarte. Um único produto inválido invalida tudo.
func Validate(p *model.RawFlyerPayload) error {
	if p == nil {
		return rejected(ErrNilPayload)
	}

	if err := getValidator().Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return rejected(err)
		}
		return fieldError(fieldErrs[0])
	}

	for i, prod := range p.Produtos {
		preco, ok := prod.Preco.Value()
		if !ok {
			return rejectedAt(ErrProductPriceNotNumber, i)
		}
		if preco < 0 {
			return rejectedAt(ErrProductNegativePrice, i)
		}
	}

	return nil
}

// IsValid é a forma booleana de Validate.
func IsValid(p *model.RawFlyerPayload) bool {
	return Validate(p) == nil
}

func fieldError(fe validator.FieldError) error {
	switch fe.StructField() {
	case "Estabelecimento":
		return rejected(ErrMissingEstablishment)
	case "Produtos":
		return rejected(ErrNoProducts)
	case "Nome":
		return rejectedAt(ErrProductMissingName, fieldIndex(fe.StructNamespace()))
	}
	return rejected(fe)
}

func fieldIndex(namespace string) int {
	m := reIndex.FindStringSubmatch(namespace)
	if len(m) < 2 {
		return -1
	}
	i, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return i
}
