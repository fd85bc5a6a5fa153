// Package extraction transforma o arquivo de um encarte no JSON bruto de ofertas.
package extraction

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

var (
	ErrUnsupportedFile = errors.New("tipo de arquivo não suportado")
	ErrEmptyDocument   = errors.New("encarte sem texto legível")
)

type Kind string

const (
	KindPDF   Kind = "pdf"
	KindImage Kind = "imagem"
	KindHTML  Kind = "html"
)

// Document é o conteúdo do encarte pronto para a extração: texto ou imagem.
type Document struct {
	Name  string
	Kind  Kind
	Text  string
	Image []byte
	MIME  string
}

var imageMIME = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// DetectKind decide o tipo do encarte pela extensão do arquivo.
func DetectKind(name string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case ext == ".pdf":
		return KindPDF, nil
	case ext == ".html" || ext == ".htm":
		return KindHTML, nil
	case imageMIME[ext] != "":
		return KindImage, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
}

// Load lê o arquivo do encarte do disco.
func Load(path string) (Document, error) {
	name := filepath.Base(path)
	kind, err := DetectKind(name)
	if err != nil {
		return Document{}, err
	}

	doc := Document{Name: name, Kind: kind}
	switch kind {
	case KindPDF:
		doc.Text, err = PDFText(path)
	case KindHTML:
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return Document{}, err
		}
		defer f.Close()
		doc.Text, err = HTMLText(f)
	case KindImage:
		doc.Image, err = os.ReadFile(path)
		doc.MIME = imageMIME[strings.ToLower(filepath.Ext(name))]
	}
	if err != nil {
		return Document{}, err
	}

	if kind != KindImage && strings.TrimSpace(doc.Text) == "" {
		return Document{}, fmt.Errorf("%w: %s", ErrEmptyDocument, name)
	}
	return doc, nil
}

// PDFText extrai o texto corrido de um PDF. PDFs só com imagem voltam vazios.
func PDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// HTMLText junta o texto dos blocos visíveis de um encarte publicado em HTML.
func HTMLText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript").Remove()

	var content []string
	doc.Find("h1, h2, h3, p, li, td").Each(func(_ int, s *goquery.Selection) {
		if t := strings.Join(strings.Fields(s.Text()), " "); t != "" {
			content = append(content, t)
		}
	})

	return strings.Join(content, "\n"), nil
}
