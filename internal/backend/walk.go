package backend

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/codetrawl/codetrawl/internal/contract"
)

// strippedAttributes are the commit fields removed from every emitted
// record: raw author/committer blocks, the provider file list and the
// parent/ref lists.
var strippedAttributes = []string{"Author", "Commit", "files", "parents", "refs"}

// stripAndAttach removes the stripped attributes from the commit data and
// attaches the analysis payload.
func stripAndAttach(data map[string]any, analysis any) map[string]any {
	for _, attr := range strippedAttributes {
		delete(data, attr)
	}
	data["analysis"] = analysis
	return data
}

// walkSnapshot enumerates the regular files under root in lexical order,
// skipping hidden files and directories (which keeps the working copy's
// .git administrative link out of the analysis). Paths passed to fn are
// relative to root; a non-empty scope keeps only paths ending with one of
// its suffixes.
func walkSnapshot(root string, scope []string, fn func(rel, full string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if len(scope) > 0 && !contract.EndsWithAny(rel, scope) {
			return nil
		}
		return fn(rel, path)
	})
}
