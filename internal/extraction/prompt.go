package extraction

func SystemPrompt() string {
	return `
Você lê encartes de supermercado e farmácia do Brasil e devolve as ofertas em JSON.

FORMATO (retorne APENAS o JSON, sem markdown):
{
  "estabelecimento": "nome da loja",
  "endereco": "endereço da loja, se aparecer",
  "validoAte": "AAAA-MM-DD",
  "produtos": [
    {
      "nome": "nome do produto com gramatura",
      "marca": "marca, se aparecer",
      "categoria": "higiene | limpeza | alimentos | outros",
      "preco": 0.00,
      "precoAnterior": 0.00
    }
  ]
}

REGRAS:
1. "preco" e "precoAnterior" são números com ponto decimal (ex: 12.90). Nunca use "R$".
2. "precoAnterior" é o preço "de" riscado. Se não houver, omita o campo.
3. "validoAte" é a data final da oferta. Se o encarte não trouxer o ano, use o ano corrente.
4. Inclua todos os produtos com preço legível. Não invente produtos nem preços.
5. Se não conseguir identificar a loja ou nenhum produto, devolva "produtos": [].
`
}

func userPrompt(doc Document) string {
	if doc.Kind == KindImage {
		return "Extraia as ofertas da imagem do encarte " + doc.Name + "."
	}
	return "Extraia as ofertas do texto do encarte " + doc.Name + ":\n\n" + doc.Text
}
