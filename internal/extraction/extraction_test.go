package extraction

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"ofertaspro/internal/flyer"
)

func TestDetectKind(t *testing.T) {
	cases := []struct {
		name string
		want Kind
	}{
		{"encarte.pdf", KindPDF},
		{"ENCARTE.PDF", KindPDF},
		{"folheto.png", KindImage},
		{"folheto.jpeg", KindImage},
		{"folheto.JPG", KindImage},
		{"pagina.html", KindHTML},
		{"pagina.htm", KindHTML},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectKind(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := DetectKind("planilha.xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedFile)
	_, err = DetectKind("sem_extensao")
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestHTMLText(t *testing.T) {
	html := `<html><head><style>.x{}</style><script>var a = 1;</script></head><body>
		<h1>Supermercado Bom Preço</h1>
		<ul>
			<li>Arroz   Tio João 5kg   R$ 25,90</li>
			<li>   </li>
		</ul>
		<p>Válido até 31/10</p>
	</body></html>`

	got, err := HTMLText(strings.NewReader(html))
	require.NoError(t, err)
	assert.Equal(t, "Supermercado Bom Preço\nArroz Tio João 5kg R$ 25,90\nVálido até 31/10", got)
}

func TestLoad_HTMLAndImage(t *testing.T) {
	dir := t.TempDir()

	htmlPath := filepath.Join(dir, "oferta.html")
	require.NoError(t, os.WriteFile(htmlPath, []byte("<p>Sabão em pó 1kg 9,99</p>"), 0o644))
	doc, err := Load(htmlPath)
	require.NoError(t, err)
	assert.Equal(t, KindHTML, doc.Kind)
	assert.Equal(t, "Sabão em pó 1kg 9,99", doc.Text)

	imgPath := filepath.Join(dir, "oferta.jpg")
	require.NoError(t, os.WriteFile(imgPath, []byte{0xff, 0xd8, 0xff}, 0o644))
	doc, err = Load(imgPath)
	require.NoError(t, err)
	assert.Equal(t, KindImage, doc.Kind)
	assert.Equal(t, "image/jpeg", doc.MIME)
	assert.Len(t, doc.Image, 3)

	emptyPath := filepath.Join(dir, "vazio.html")
	require.NoError(t, os.WriteFile(emptyPath, []byte("<div></div>"), 0o644))
	_, err = Load(emptyPath)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestParseResponse(t *testing.T) {
	p, err := ParseResponse("```json\n{\"estabelecimento\":\"Loja A\",\"produtos\":[{\"nome\":\"Arroz\",\"preco\":10}]}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Loja A", p.Estabelecimento)
	require.Len(t, p.Produtos, 1)
	preco, ok := p.Produtos[0].Preco.Value()
	assert.True(t, ok)
	assert.Equal(t, 10.0, preco)

	_, err = ParseResponse("   ")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = ParseResponse("não consegui ler o encarte")
	assert.ErrorIs(t, err, flyer.ErrValidation)
}

func TestBuildMessages(t *testing.T) {
	text := buildMessages(Document{Name: "a.pdf", Kind: KindPDF, Text: "Feijão 8,50"})
	require.Len(t, text, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, text[0].Role)
	assert.Contains(t, text[1].Content, "Feijão 8,50")
	assert.Empty(t, text[1].MultiContent)

	img := buildMessages(Document{Name: "a.png", Kind: KindImage, Image: []byte("png"), MIME: "image/png"})
	require.Len(t, img, 2)
	require.Len(t, img[1].MultiContent, 2)
	assert.Equal(t, "data:image/png;base64,cG5n", img[1].MultiContent[1].ImageURL.URL)
}

func TestOpenAIExtractor_Extract(t *testing.T) {
	var gotReq openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotReq)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "cmpl-1",
			Object: "chat.completion",
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: `{"estabelecimento":"Mercado X","validoAte":"2025-10-31","produtos":[{"nome":"Leite","preco":4.99,"precoAnterior":5.49}]}`,
				},
				FinishReason: openai.FinishReasonStop,
			}},
		})
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("teste")
	cfg.BaseURL = srv.URL + "/v1"
	ex := &OpenAIExtractor{
		Client:  openai.NewClientWithConfig(cfg),
		Model:   "gpt-4o-mini",
		Limiter: rate.NewLimiter(rate.Inf, 1),
	}

	p, err := ex.Extract(context.Background(), Document{Name: "a.html", Kind: KindHTML, Text: "Leite 4,99"})
	require.NoError(t, err)
	assert.Equal(t, "Mercado X", p.Estabelecimento)
	require.Len(t, p.Produtos, 1)
	assert.Equal(t, "Leite", p.Produtos[0].Nome)

	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	require.NotNil(t, gotReq.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, gotReq.ResponseFormat.Type)
}

func TestOpenAIExtractor_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("teste")
	cfg.BaseURL = srv.URL + "/v1"
	ex := &OpenAIExtractor{Client: openai.NewClientWithConfig(cfg), Model: "gpt-4o-mini"}

	_, err := ex.Extract(context.Background(), Document{Name: "a.html", Kind: KindHTML, Text: "x"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
