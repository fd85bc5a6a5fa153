package flyer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ofertaspro/internal/model"
)

// Normalize converte um produto bruto em um item com tipos e padrões consistentes.
// Os dados do encarte não são revalidados aqui.
func Normalize(raw model.RawProduct, meta model.FlyerMetadata) (model.FlyerItem, error) {
	preco, err := parseAmount("preco", raw.Preco)
	if err != nil {
		return model.FlyerItem{}, err
	}

	// sem preço anterior o desconto fica zero
	precoAnterior := preco
	if !raw.PrecoAnterior.IsZero() {
		precoAnterior, err = parseAmount("precoAnterior", raw.PrecoAnterior)
		if err != nil {
			return model.FlyerItem{}, err
		}
	}

	endereco := meta.Endereco
	if endereco == "" {
		endereco = model.EnderecoPadrao
	}

	return model.FlyerItem{
		Nome:            strings.TrimSpace(raw.Nome),
		Marca:           strings.TrimSpace(raw.Marca),
		Categoria:       model.ParseCategory(raw.Categoria),
		Preco:           preco,
		PrecoAnterior:   precoAnterior,
		Estabelecimento: meta.Estabelecimento,
		Endereco:        endereco,
		ValidoAte:       meta.ValidoAte,
	}, nil
}

// NormalizeAll valida o encarte e normaliza todos os produtos, na ordem em que vieram.
func NormalizeAll(p *model.RawFlyerPayload) ([]model.FlyerItem, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}

	meta := p.Metadata()
	items := make([]model.FlyerItem, 0, len(p.Produtos))
	for i, raw := range p.Produtos {
		item, err := Normalize(raw, meta)
		if err != nil {
			return nil, fmt.Errorf("produto %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func parseAmount(field string, a model.Amount) (float64, error) {
	if v, ok := a.Value(); ok {
		return v, nil
	}
	if !a.IsSet() {
		return 0, &FormatError{Field: field}
	}

	v, err := strconv.ParseFloat(normalizeNumericText(a.Raw()), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &FormatError{Field: field, Value: a.Raw()}
	}
	return v, nil
}

// normalizeNumericText aceita "19.90", " 19,90 ", "R$ 1.299,90".
func normalizeNumericText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))

	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	if comma > dot {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	return s
}
