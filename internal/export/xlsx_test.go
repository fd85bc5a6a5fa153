package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ofertaspro/internal/catalog"
	"ofertaspro/internal/model"
)

func sampleCards() []catalog.Card {
	return catalog.Cards([]model.Product{
		{
			ID: "1", Nome: "Arroz", Marca: "Tio João", Categoria: model.CategoryFood,
			Ofertas: []model.Offer{
				{Estabelecimento: "Loja A", Endereco: "Rua 1", Preco: 10, PrecoAnterior: 12, ValidoAte: "2025-10-31"},
				{Estabelecimento: "Loja B", Endereco: "Rua 2", Preco: 9.5, PrecoAnterior: 10, ValidoAte: "2025-11-05"},
			},
		},
		{ID: "2", Nome: "Sem oferta"},
	})
}

func TestWriteCards(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCards(sampleCards(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, headers, rows[0])
	assert.Equal(t, []string{"Arroz", "Tio João", "alimentos", "Loja B", "Rua 2", "9.5", "10", "5", "05/11", "1"}, rows[1])
}

func TestSaveCards(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saida", "ofertas.xlsx")
	require.NoError(t, SaveCards(nil, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
