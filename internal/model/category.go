package model

import (
	"errors"
	"fmt"
	"strings"
)

type Category string

const (
	CategoryAll      Category = "todas"
	CategoryHygiene  Category = "higiene"
	CategoryCleaning Category = "limpeza"
	CategoryFood     Category = "alimentos"
	CategoryOther    Category = "outros"
)

// ParseCategory aceita a categoria em qualquer caixa; vazio ou desconhecido vira "outros".
func ParseCategory(s string) Category {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case CategoryHygiene, CategoryCleaning, CategoryFood:
		return c
	}
	return CategoryOther
}

type SortKey string

var ErrUnknownSortKey = errors.New("ordenação desconhecida")

const (
	SortDiscount     SortKey = "desconto"
	SortPrice        SortKey = "preco"
	SortExpiry       SortKey = "validade"
	SortAlphabetical SortKey = "alfabetica"
)

// ParseSortKey retorna "desconto" para texto vazio e erro para chaves desconhecidas.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case "":
		return SortDiscount, nil
	case SortDiscount, SortPrice, SortExpiry, SortAlphabetical:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
}

// Option é um item rotulado de filtro ou ordenação.
type Option struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
}

func Categories() []Option {
	return []Option{
		{ID: string(CategoryAll), Nome: "Todas"},
		{ID: string(CategoryHygiene), Nome: "Higiene"},
		{ID: string(CategoryCleaning), Nome: "Limpeza"},
		{ID: string(CategoryFood), Nome: "Alimentos"},
		{ID: string(CategoryOther), Nome: "Outros"},
	}
}

func SortOptions() []Option {
	return []Option{
		{ID: string(SortDiscount), Nome: "Maior Desconto"},
		{ID: string(SortPrice), Nome: "Menor Preço"},
		{ID: string(SortExpiry), Nome: "Expirando Primeiro"},
		{ID: string(SortAlphabetical), Nome: "A-Z"},
	}
}
