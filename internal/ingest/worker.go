package ingest

import (
	"context"
	"sync"

	"ofertaspro/internal/model"
)

// Processor é o que o pool precisa do Service.
type Processor interface {
	Process(ctx context.Context, path string) (model.Flyer, error)
}

// Outcome é o resultado de um arquivo do lote, na mesma posição da entrada.
type Outcome struct {
	Path  string
	Flyer model.Flyer
	Err   error
}

const maxWorkers = 8

// RunWorkers processa os arquivos em paralelo. Cancelar ctx para de distribuir arquivos novos;
// os que não chegaram a rodar voltam com ctx.Err().
func RunWorkers(ctx context.Context, paths []string, p Processor, workers int) []Outcome {
	if workers <= 0 {
		workers = 1
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}

	results := make([]Outcome, len(paths))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				f, err := p.Process(ctx, paths[idx])
				results[idx] = Outcome{Path: paths[idx], Flyer: f, Err: err}
			}
		}()
	}

	next := 0
feed:
	for ; next < len(paths); next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- next:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for ; next < len(paths); next++ {
		results[next] = Outcome{Path: paths[next], Err: ctx.Err()}
	}
	return results
}

// Summary conta os resultados de um lote por status.
type Summary struct {
	Processed int
	Rejected  int
	Failed    int
	Products  int
}

func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch {
		case o.Err == nil:
			s.Processed++
			s.Products += o.Flyer.ProdutosAdicionados
		case IsRejection(o.Err):
			s.Rejected++
		default:
			s.Failed++
		}
	}
	return s
}
