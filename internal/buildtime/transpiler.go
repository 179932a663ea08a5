package buildtime

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/bep/godartsass/v2"
	"github.com/sjc5/lux/internal/common"
)

const defaultDartSassBinary = "sass"

// DartSass transpiles through an embedded Dart Sass process. The process is
// started lazily on first use and reused until Close.
type DartSass struct {
	Binary string

	once  sync.Once
	t     *godartsass.Transpiler
	err   error
	mu    sync.Mutex
	close bool
}

func NewDartSass(binary string) *DartSass {
	if binary == "" {
		binary = defaultDartSassBinary
	}
	return &DartSass{Binary: binary}
}

func (d *DartSass) start() (*godartsass.Transpiler, error) {
	d.once.Do(func() {
		d.t, d.err = godartsass.Start(godartsass.Options{
			DartSassEmbeddedFilename: d.Binary,
		})
		if d.err != nil {
			d.err = fmt.Errorf("error starting dart sass (%s): %w", d.Binary, d.err)
		}
	})
	return d.t, d.err
}

func (d *DartSass) Transpile(req common.TranspileRequest) (string, error) {
	t, err := d.start()
	if err != nil {
		return "", err
	}

	args := godartsass.Args{
		Source:       req.Source,
		URL:          "file://" + filepath.ToSlash(req.Path),
		IncludePaths: req.IncludePaths,
		OutputStyle:  godartsass.OutputStyleExpanded,
		SourceSyntax: godartsass.SourceSyntaxSCSS,
	}
	if req.Compressed {
		args.OutputStyle = godartsass.OutputStyleCompressed
	}
	switch req.Syntax {
	case common.SyntaxSass:
		args.SourceSyntax = godartsass.SourceSyntaxSASS
	case common.SyntaxCSS:
		args.SourceSyntax = godartsass.SourceSyntaxCSS
	}

	res, err := t.Execute(args)
	if err != nil {
		return "", err
	}
	return res.CSS, nil
}

func (d *DartSass) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.close || d.t == nil {
		return nil
	}
	d.close = true
	return d.t.Close()
}
