package common

type StyleSyntax string

const (
	SyntaxSCSS StyleSyntax = "scss"
	SyntaxSass StyleSyntax = "sass"
	SyntaxCSS  StyleSyntax = "css"
)

type TranspileRequest struct {
	Path         string // absolute path of the stylesheet, used for relative imports
	Source       string // file contents with any prepended data already applied
	Syntax       StyleSyntax
	IncludePaths []string
	Compressed   bool
}

// Transpiler turns Sass/SCSS into plain CSS.
type Transpiler interface {
	Transpile(req TranspileRequest) (string, error)
}
