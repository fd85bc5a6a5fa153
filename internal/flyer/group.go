package flyer

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"ofertaspro/internal/model"
)

// ProductKey identifica o mesmo produto entre encartes, ignorando acentos, caixa e espaços.
func ProductKey(nome, marca string) string {
	return foldKey(nome) + "|" + foldKey(marca)
}

func foldKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Group junta os itens normalizados em produtos, na ordem em que aparecem.
// Cada produto recebe cópias próprias das ofertas.
func Group(items []model.FlyerItem, newID func() string, now time.Time) []model.Product {
	var products []model.Product
	index := map[string]int{}

	for _, item := range items {
		key := ProductKey(item.Nome, item.Marca)
		i, ok := index[key]
		if !ok {
			products = append(products, model.Product{
				ID:        newID(),
				Nome:      item.Nome,
				Marca:     item.Marca,
				Categoria: item.Categoria,
				CriadoEm:  now,
			})
			i = len(products) - 1
			index[key] = i
		}
		products[i].Ofertas = append(products[i].Ofertas, item.Offer())
	}

	return products
}
