package util

import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ShortHash is the 12-char sha256 prefix used for file fingerprints.
func ShortHash(content []byte) string {
	sum := sha256.Sum256(content)
	return fmt.Sprintf("%x", sum)[:12]
}

// HashTree fingerprints every regular file under root (relative path + contents).
// Two trees with the same files and bytes hash the same regardless of mtimes.
func HashTree(root string) (string, int, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return "", 0, fmt.Errorf("error walking %s: %w", root, err)
	}
	sort.Strings(paths)

	hash := sha256.New()
	for _, path := range paths {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return "", 0, err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return "", 0, fmt.Errorf("error reading %s: %w", path, err)
		}
		hash.Write([]byte(filepath.ToSlash(rel)))
		hash.Write([]byte{0})
		hash.Write(content)
	}
	return fmt.Sprintf("%x", hash.Sum(nil))[:12], len(paths), nil
}
