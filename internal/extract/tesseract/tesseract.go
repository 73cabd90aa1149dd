// Package tesseract recognizes images with libtesseract through gosseract.
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Engine implements extract.ImageRecognizer. A fresh client is created per
// call, so an Engine is safe for concurrent use.
type Engine struct {
	tessdataPrefix string
	clientFactory  func() *gosseract.Client
}

// NewEngine constructs a gosseract-backed engine. An empty tessdataPrefix
// keeps the library default.
func NewEngine(tessdataPrefix string) *Engine {
	return &Engine{tessdataPrefix: tessdataPrefix, clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "gosseract" }

// Recognize returns the raw text Tesseract reads from the image at path.
func (e *Engine) Recognize(ctx context.Context, path, language string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := e.clientFactory()
	defer c.Close()

	if e.tessdataPrefix != "" {
		if err := c.SetTessdataPrefix(e.tessdataPrefix); err != nil {
			return "", fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if language != "" {
		if err := c.SetLanguage(language); err != nil {
			return "", fmt.Errorf("set language: %w", err)
		}
	}
	if err := c.SetImage(path); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
