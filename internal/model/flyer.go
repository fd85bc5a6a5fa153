package model

import "time"

// RawProduct é um produto como veio da extração do encarte.
type RawProduct struct {
	Nome          string `json:"nome" validate:"required"`
	Marca         string `json:"marca,omitempty"`
	Categoria     string `json:"categoria,omitempty"`
	Preco         Amount `json:"preco"`
	PrecoAnterior Amount `json:"precoAnterior"`
}

// RawFlyerPayload é o resultado bruto da extração de um encarte.
type RawFlyerPayload struct {
	Estabelecimento string       `json:"estabelecimento" validate:"required"`
	Endereco        string       `json:"endereco,omitempty"`
	ValidoAte       string       `json:"validoAte,omitempty"`
	Produtos        []RawProduct `json:"produtos" validate:"required,min=1,dive"`
}

// FlyerMetadata são os dados do encarte copiados para cada oferta.
type FlyerMetadata struct {
	Estabelecimento string
	Endereco        string
	ValidoAte       string
}

func (p *RawFlyerPayload) Metadata() FlyerMetadata {
	return FlyerMetadata{
		Estabelecimento: p.Estabelecimento,
		Endereco:        p.Endereco,
		ValidoAte:       p.ValidoAte,
	}
}

type FlyerStatus string

const (
	FlyerReceived  FlyerStatus = "recebido"
	FlyerProcessed FlyerStatus = "processado"
	FlyerRejected  FlyerStatus = "rejeitado"
	FlyerFailed    FlyerStatus = "falhou"
)

// Flyer é o registro de um arquivo de encarte enviado.
type Flyer struct {
	ID                  string      `json:"id"`
	FileName            string      `json:"fileName"`
	FileType            string      `json:"fileType"`
	Status              FlyerStatus `json:"status"`
	ProdutosAdicionados int         `json:"produtosAdicionados"`
	Erro                string      `json:"erro,omitempty"`
	CriadoEm            time.Time   `json:"criadoEm"`
}
