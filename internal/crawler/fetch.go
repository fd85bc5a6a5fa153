// Package crawler baixa encartes publicados na web para serem processados localmente.
package crawler

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ofertaspro/internal/extraction"
)

var defaultHTTPClient = &http.Client{Timeout: 60 * time.Second}

var extByContentType = map[string]string{
	"application/pdf": ".pdf",
	"text/html":       ".html",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
}

// Fetcher grava cada URL de encarte como arquivo em Dir.
type Fetcher struct {
	Client *http.Client
	Dir    string
	Log    logrus.FieldLogger
}

// Fetch baixa um encarte e devolve o caminho local. O nome vem da URL; sem extensão
// reconhecida, a extensão sai do Content-Type.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("URL de encarte inválida: %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download de %s: status %d", rawURL, resp.StatusCode)
	}

	name, err := fileName(u, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(f.Dir, fmt.Sprintf("%d_%s", time.Now().UnixNano(), name))
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dst)
		return "", err
	}
	return dst, out.Close()
}

// FetchAll baixa as URLs em sequência; as que falharem ficam de fora e são logadas.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []string {
	var paths []string
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		p, err := f.Fetch(ctx, u)
		if err != nil {
			f.logger().WithFields(logrus.Fields{"url": u, "erro": err}).Warn("falha ao baixar encarte")
			continue
		}
		paths = append(paths, p)
	}
	return paths
}

func fileName(u *url.URL, contentType string) (string, error) {
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		base = "encarte"
	}
	if _, err := extraction.DetectKind(base); err == nil {
		return base, nil
	}

	mt, _, _ := mime.ParseMediaType(contentType)
	ext, ok := extByContentType[mt]
	if !ok {
		return "", fmt.Errorf("%w: %s", extraction.ErrUnsupportedFile, contentType)
	}
	return strings.TrimSuffix(base, path.Ext(base)) + ext, nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client == nil {
		return defaultHTTPClient
	}
	return f.Client
}

func (f *Fetcher) logger() logrus.FieldLogger {
	if f.Log == nil {
		return logrus.StandardLogger()
	}
	return f.Log
}
