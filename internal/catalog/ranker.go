// Package catalog escolhe a melhor oferta de cada produto e monta a lista exibida ao usuário.
package catalog

import (
	"math"

	"ofertaspro/internal/model"
)

// BestOffer retorna a oferta de menor preço. Em caso de empate fica a primeira.
// ok é false para lista vazia.
func BestOffer(offers []model.Offer) (best model.Offer, ok bool) {
	if len(offers) == 0 {
		return model.Offer{}, false
	}
	best = offers[0]
	for _, o := range offers[1:] {
		if o.Preco < best.Preco {
			best = o
		}
	}
	return best, true
}

// DiscountPercent calcula o desconto inteiro arredondado (meio para cima).
// Sem preço anterior o desconto é zero; aumentos de preço dão valores negativos.
func DiscountPercent(current, previous float64) int {
	if previous == 0 || math.IsNaN(previous) || math.IsNaN(current) {
		return 0
	}
	return int(math.Floor((previous-current)/previous*100 + 0.5))
}
