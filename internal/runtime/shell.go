package runtime

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

const (
	StyleSheetPath = "dist/css/app.css"
	ScriptPath     = "dist/js/app.js"

	DefaultTitle = "Lux Laravel Starter"
	FontURL      = "https://fonts.googleapis.com/css2?family=Quicksand:wght@500;600;700&display=swap"
)

type ShellData struct {
	Locale    string // e.g. "en_US"; underscores become dashes in the lang attribute
	CSRFToken string
	Title     string
}

type shellView struct {
	Lang          string
	CSRFToken     string
	Title         string
	FontURL       string
	StyleSheetURL string
	ScriptURL     string
	RefreshScript template.HTML
}

// Shell renders the single HTML document every SPA route is served.
type Shell struct {
	runtime *Runtime
	tmpl    *template.Template
}

func newShell(r *Runtime) *Shell {
	return &Shell{
		runtime: r,
		tmpl:    template.Must(template.New("shell").Parse(shellTemplate)),
	}
}

func (s *Shell) Render(w io.Writer, data ShellData) error {
	view, err := s.view(data)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, view); err != nil {
		return fmt.Errorf("error executing shell template: %w", err)
	}

	if s.runtime.isDev() {
		_, err = w.Write(buf.Bytes())
		return err
	}

	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	if err := m.Minify("text/html", w, &buf); err != nil {
		return fmt.Errorf("error minifying shell: %w", err)
	}
	return nil
}

func (s *Shell) view(data ShellData) (*shellView, error) {
	styleURL, err := s.runtime.Mix(StyleSheetPath)
	if err != nil {
		return nil, err
	}
	scriptURL, err := s.runtime.Mix(ScriptPath)
	if err != nil {
		return nil, err
	}

	locale := data.Locale
	if locale == "" {
		locale = "en"
	}
	title := data.Title
	if title == "" {
		title = DefaultTitle
	}

	return &shellView{
		Lang:          strings.ReplaceAll(locale, "_", "-"),
		CSRFToken:     data.CSRFToken,
		Title:         title,
		FontURL:       FontURL,
		StyleSheetURL: styleURL,
		ScriptURL:     scriptURL,
		RefreshScript: s.runtime.GetRefreshScript(),
	}, nil
}

const shellTemplate = `<!DOCTYPE html>
<html lang="{{.Lang}}">
    <head>
        <meta charset="utf-8">
        <meta http-equiv="X-UA-Compatible" content="IE=edge">
        <meta name="viewport" content="width=device-width, initial-scale=1">
        <link rel="icon" href="/favicon.ico">
        <meta name="csrf-token" content="{{.CSRFToken}}">
        <title>{{.Title}}</title>
        <link href="{{.FontURL}}" rel="stylesheet">
        <link href="{{.StyleSheetURL}}" rel="stylesheet">
    </head>
    <body>
        <noscript>
            <strong>We're sorry but this website doesn't work properly without JavaScript enabled. Please enable it to continue.</strong>
        </noscript>
        <div id="app"></div>
        <script src="{{.ScriptURL}}"></script>
        {{- .RefreshScript}}
    </body>
</html>
`
