package buildtime

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sjc5/kit/pkg/colorlog"
	"github.com/sjc5/lux/internal/common"
)

// testEnv holds a throwaway starter-kit project
type testEnv struct {
	root       string
	config     *common.Config
	transpiler *fakeTranspiler
}

// fakeTranspiler records every request and hands the source back as CSS,
// minus @import lines, so the bundler can run without a Dart Sass binary.
type fakeTranspiler struct {
	mu       sync.Mutex
	requests []common.TranspileRequest
}

func (f *fakeTranspiler) Transpile(req common.TranspileRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	var kept []string
	for _, line := range strings.Split(req.Source, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "@import") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n"), nil
}

func (f *fakeTranspiler) Requests() []common.TranspileRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]common.TranspileRequest(nil), f.requests...)
}

var projectFiles = map[string]string{
	"resources/js/app.js":                   "import msg from '@/lib/msg'\nconsole.log(msg)\n",
	"resources/js/lib/msg.js":               "export default 'hello from lux'\n",
	"resources/sass/app.scss":               "body { background: url(\"../images/logo.png\"); }\n",
	"resources/sass/vuetify/variables.scss": "$primary: #1976d2;\n",
	"resources/images/logo.png":             "\x89PNG fake image bytes",
}

func setupTestEnv(t *testing.T, mode common.Mode) *testEnv {
	t.Helper()

	root := t.TempDir()
	for rel, content := range projectFiles {
		writeFile(t, filepath.Join(root, rel), content)
	}

	transpiler := &fakeTranspiler{}
	config := &common.Config{
		RootDir:    root,
		Mode:       mode,
		Transpiler: transpiler,
		Logger:     &colorlog.Log{},
	}
	config.ApplyDefaults()

	return &testEnv{root: root, config: config, transpiler: transpiler}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// listFiles returns the slash-separated relative paths of every file under root.
func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to list %s: %v", root, err)
	}
	return files
}
