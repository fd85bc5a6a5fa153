package model

import "time"

// EnderecoPadrao é usado quando o encarte não informa o endereço da loja.
const EnderecoPadrao = "Não especificado"

// Offer é o preço de um produto em um estabelecimento, como saiu de um encarte.
type Offer struct {
	Estabelecimento string  `json:"estabelecimento"`
	Endereco        string  `json:"endereco"`
	Preco           float64 `json:"preco"`
	PrecoAnterior   float64 `json:"precoAnterior"`
	ValidoAte       string  `json:"validoAte"`
}

type Product struct {
	ID        string    `json:"id"`
	Nome      string    `json:"nome"`
	Marca     string    `json:"marca"`
	Categoria Category  `json:"categoria"`
	Ofertas   []Offer   `json:"ofertas"`
	CriadoEm  time.Time `json:"criadoEm"`
}

// HasOffers indica se o produto está ativo no catálogo.
func (p Product) HasOffers() bool {
	return len(p.Ofertas) > 0
}

// FlyerItem é um produto do encarte já normalizado, com os dados da loja achatados nele.
type FlyerItem struct {
	Nome            string   `json:"nome"`
	Marca           string   `json:"marca"`
	Categoria       Category `json:"categoria"`
	Preco           float64  `json:"preco"`
	PrecoAnterior   float64  `json:"precoAnterior"`
	Estabelecimento string   `json:"estabelecimento"`
	Endereco        string   `json:"endereco"`
	ValidoAte       string   `json:"validoAte"`
}

func (i FlyerItem) Offer() Offer {
	return Offer{
		Estabelecimento: i.Estabelecimento,
		Endereco:        i.Endereco,
		Preco:           i.Preco,
		PrecoAnterior:   i.PrecoAnterior,
		ValidoAte:       i.ValidoAte,
	}
}
