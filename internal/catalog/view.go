package catalog

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"ofertaspro/internal/model"
)

type rankedProduct struct {
	product  model.Product
	best     model.Offer
	discount int
	due      time.Time
	dueOK    bool
}

// BuildView filtra por categoria e busca e ordena pela chave escolhida.
// Produtos sem oferta ficam na posição em que estavam; os demais são ordenados
// de forma estável entre si. A lista de entrada não é alterada.
func BuildView(products []model.Product, category string, search string, key model.SortKey) []model.Product {
	needle := strings.ToLower(search)

	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if !inCategory(p, category) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Nome), needle) {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, key)
	return out
}

func inCategory(p model.Product, category string) bool {
	if category == "" || category == string(model.CategoryAll) {
		return true
	}
	return string(p.Categoria) == category
}

func sortProducts(products []model.Product, key model.SortKey) {
	less := lessFor(key)
	if less == nil {
		return
	}

	var slots []int
	var ranked []rankedProduct
	for i, p := range products {
		best, ok := BestOffer(p.Ofertas)
		if !ok {
			continue
		}
		due, dueOK := ParseDate(best.ValidoAte)
		slots = append(slots, i)
		ranked = append(ranked, rankedProduct{
			product:  p,
			best:     best,
			discount: DiscountPercent(best.Preco, best.PrecoAnterior),
			due:      due,
			dueOK:    dueOK,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j])
	})

	for n, slot := range slots {
		products[slot] = ranked[n].product
	}
}

func lessFor(key model.SortKey) func(a, b rankedProduct) bool {
	switch key {
	case model.SortDiscount:
		return func(a, b rankedProduct) bool { return a.discount > b.discount }
	case model.SortPrice:
		return func(a, b rankedProduct) bool { return a.best.Preco < b.best.Preco }
	case model.SortExpiry:
		// datas ilegíveis vão para o fim
		return func(a, b rankedProduct) bool {
			if a.dueOK && b.dueOK {
				return a.due.Before(b.due)
			}
			return a.dueOK && !b.dueOK
		}
	case model.SortAlphabetical:
		// collate.Collator não é seguro para uso concorrente; um por chamada
		c := collate.New(language.BrazilianPortuguese)
		return func(a, b rankedProduct) bool {
			return c.CompareString(a.product.Nome, b.product.Nome) < 0
		}
	}
	return nil
}
