// Package fs finds .pptx packages on the local file system.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindOptions configures Find.
type FindOptions struct {
	Recursive bool
}

// IsPresentation reports whether path names a .pptx package that is not an
// Office lock or temp file.
func IsPresentation(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".pptx") {
		return false
	}
	base := filepath.Base(path)
	return !strings.HasPrefix(base, "~$") && !strings.HasPrefix(base, ".~")
}

// Find expands each argument into .pptx paths. An argument may be a file, a
// directory (searched for .pptx files) or a glob pattern. The result is
// deduplicated and sorted.
func Find(args []string, opts FindOptions) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			files, err := walk(arg, opts.Recursive)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				add(f)
			}
		case err == nil:
			add(arg)
		default:
			matches, gerr := filepath.Glob(arg)
			if gerr != nil {
				return nil, fmt.Errorf("invalid glob pattern %q: %w", arg, gerr)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no files matched %q", arg)
			}
			for _, m := range matches {
				if IsPresentation(m) {
					add(m)
				}
			}
		}
	}

	sort.Strings(out)
	return out, nil
}

func walk(root string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if !recursive || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsPresentation(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan of %s failed: %w", root, err)
	}
	return files, nil
}
