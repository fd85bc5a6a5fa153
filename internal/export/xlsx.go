// Package export gera planilhas a partir da vista do catálogo.
package export

import (
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"ofertaspro/internal/catalog"
)

const sheetName = "Ofertas"

var headers = []string{
	"Produto", "Marca", "Categoria", "Estabelecimento", "Endereço",
	"Preço", "Preço anterior", "Desconto (%)", "Válido até", "Outras ofertas",
}

// WriteCards grava uma linha por card, com a melhor oferta, na ordem recebida.
func WriteCards(cards []catalog.Card, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	for i, c := range cards {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheetName, cell, value)
		}

		best := c.MelhorOferta
		set(1, c.Nome)
		set(2, c.Marca)
		set(3, string(c.Categoria))
		set(4, best.Estabelecimento)
		set(5, best.Endereco)
		set(6, best.Preco)
		set(7, best.PrecoAnterior)
		set(8, best.Desconto)
		set(9, best.ValidoAteBR)
		set(10, c.OutrasOfertas)
	}

	return f.Write(w)
}

func SaveCards(cards []catalog.Card, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := WriteCards(cards, out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
