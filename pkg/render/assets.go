package render

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
)

//go:embed assets/*
var assetFiles embed.FS

// pageAssets holds the inline stylesheet and script of the HTML page.
type pageAssets struct {
	CSS string
	JS  string
}

var (
	plainAssets    = sync.OnceValues(func() (*pageAssets, error) { return loadAssets(false) })
	minifiedAssets = sync.OnceValues(func() (*pageAssets, error) { return loadAssets(true) })
)

func assets(minify bool) (*pageAssets, error) {
	if minify {
		return minifiedAssets()
	}
	return plainAssets()
}

func loadAssets(minify bool) (*pageAssets, error) {
	css, err := assetFiles.ReadFile("assets/tree.css")
	if err != nil {
		return nil, fmt.Errorf("read stylesheet: %w", err)
	}
	js, err := assetFiles.ReadFile("assets/tree.js")
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	out := &pageAssets{CSS: string(css), JS: string(js)}
	if !minify {
		return out, nil
	}
	if out.CSS, err = transform(out.CSS, api.LoaderCSS); err != nil {
		return nil, err
	}
	if out.JS, err = transform(out.JS, api.LoaderJS); err != nil {
		return nil, err
	}
	return out, nil
}

// transform minifies one asset. Identifiers are left alone: the page's
// event handlers call the script's functions by name.
func transform(src string, loader api.Loader) (string, error) {
	result := api.Transform(src, api.TransformOptions{
		Loader:           loader,
		MinifyWhitespace: true,
		MinifySyntax:     true,
		Target:           api.ES2020,
		LogLevel:         api.LogLevelSilent,
	})

	if len(result.Errors) > 0 {
		var msg strings.Builder
		for _, e := range result.Errors {
			if e.Location != nil {
				fmt.Fprintf(&msg, "%d:%d: ", e.Location.Line, e.Location.Column)
			}
			msg.WriteString(e.Text)
			msg.WriteByte('\n')
		}
		return "", fmt.Errorf("esbuild errors:\n%s", msg.String())
	}
	return string(result.Code), nil
}
