package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"ofertaspro/internal/catalog"
	"ofertaspro/internal/config"
	"ofertaspro/internal/db"
	"ofertaspro/internal/export"
	"ofertaspro/internal/model"
	"ofertaspro/internal/observability"
	"ofertaspro/internal/repository"
)

// go run ./cmd/catalog -categoria=alimentos -ordenacao=preco
// go run ./cmd/catalog -busca=arroz -export=./data/ofertas.xlsx
func main() {
	categoria := flag.String("categoria", string(model.CategoryAll), "Categoria: todas, higiene, limpeza, alimentos, outros")
	busca := flag.String("busca", "", "Trecho do nome do produto")
	ordenacao := flag.String("ordenacao", string(model.SortDiscount), "Ordenação: desconto, preco, validade, alfabetica")
	exportPath := flag.String("export", "", "Grava a vista numa planilha .xlsx")
	asJSON := flag.Bool("json", false, "Imprime os cards em JSON")
	flag.Parse()

	cfg := config.Load()
	log := observability.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err := cfg.Require("DATABASE_URL", cfg.DatabaseURL); err != nil {
		log.Fatal(err)
	}

	key, err := model.ParseSortKey(*ordenacao)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Erro ao conectar no Postgres (pgxpool): %v", err)
	}
	defer pool.Close()

	repo := &repository.CatalogRepository{DB: pool}
	products, err := repo.ListProducts(ctx)
	if err != nil {
		log.Fatalf("Erro ao listar catálogo: %v", err)
	}

	cards := catalog.Cards(catalog.BuildView(products, *categoria, *busca, key))

	if *exportPath != "" {
		if err := export.SaveCards(cards, *exportPath); err != nil {
			log.Fatalf("Erro ao exportar planilha: %v", err)
		}
		log.Infof("%d ofertas exportadas para %s", len(cards), *exportPath)
		return
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cards); err != nil {
			log.Fatal(err)
		}
		return
	}

	for _, c := range cards {
		best := c.MelhorOferta
		fmt.Printf("%s", c.Nome)
		if c.Marca != "" {
			fmt.Printf(" (%s)", c.Marca)
		}
		fmt.Printf(" | R$ %.2f em %s", best.Preco, best.Estabelecimento)
		if best.Desconto > 0 {
			fmt.Printf(" | -%d%%", best.Desconto)
		}
		if best.ValidoAteBR != "" {
			fmt.Printf(" | até %s", best.ValidoAteBR)
		}
		if c.OutrasOfertas > 0 {
			fmt.Printf(" | +%d ofertas disponíveis", c.OutrasOfertas)
		}
		fmt.Println()
	}
}
