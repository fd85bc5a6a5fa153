package catalog

import (
	"strings"
	"time"

	"ofertaspro/internal/model"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// ParseDate lê a data de validade nos formatos que a extração costuma devolver.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate devolve dd/MM, ou vazio quando não há data legível.
func FormatDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return ""
	}
	return t.Format("02/01")
}

// OtherOffers é a quantidade de ofertas além da melhor.
func OtherOffers(p model.Product) int {
	if len(p.Ofertas) == 0 {
		return 0
	}
	return len(p.Ofertas) - 1
}

type OfferView struct {
	model.Offer
	Desconto    int    `json:"desconto"`
	ValidoAteBR string `json:"validoAteFormatado"`
}

// Card é o que a tela de catálogo mostra de cada produto.
type Card struct {
	ID            string         `json:"id"`
	Nome          string         `json:"nome"`
	Marca         string         `json:"marca"`
	Categoria     model.Category `json:"categoria"`
	MelhorOferta  OfferView      `json:"melhorOferta"`
	OutrasOfertas int            `json:"outrasOfertas"`
	Ofertas       []OfferView    `json:"ofertas"`
}

func NewOfferView(o model.Offer) OfferView {
	return OfferView{
		Offer:       o,
		Desconto:    DiscountPercent(o.Preco, o.PrecoAnterior),
		ValidoAteBR: FormatDate(o.ValidoAte),
	}
}

// Cards projeta a lista já ordenada; produtos sem oferta não viram card.
func Cards(products []model.Product) []Card {
	cards := make([]Card, 0, len(products))
	for _, p := range products {
		best, ok := BestOffer(p.Ofertas)
		if !ok {
			continue
		}
		views := make([]OfferView, 0, len(p.Ofertas))
		for _, o := range p.Ofertas {
			views = append(views, NewOfferView(o))
		}
		cards = append(cards, Card{
			ID:            p.ID,
			Nome:          p.Nome,
			Marca:         p.Marca,
			Categoria:     p.Categoria,
			MelhorOferta:  NewOfferView(best),
			OutrasOfertas: OtherOffers(p),
			Ofertas:       views,
		})
	}
	return cards
}
