package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"

	"github.com/debstrap/debstrap/internal/core/domain"
)

// maxIncludeDepth bounds nested %include directives so a list file cycle
// terminates instead of recursing forever.
const maxIncludeDepth = 32

// ReadList reads a line-oriented package list. Blank lines and lines starting
// with '#' are skipped; a "%include <path>" line splices in another list file,
// resolved relative to the including file.
func ReadList(path string) ([]string, error) {
	return readList(path, 0)
}

func readList(path string, depth int) ([]string, error) {
	if depth > maxIncludeDepth {
		return nil, zerr.With(zerr.With(domain.ErrRecursionLimit, "path", path), "max_depth", maxIncludeDepth)
	}

	f, err := os.Open(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open package list"), "path", path)
	}
	defer f.Close() //nolint:errcheck // best effort close in defer

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if target, ok := strings.CutPrefix(line, "%include "); ok {
			target = strings.TrimSpace(target)
			if !filepath.IsAbs(target) {
				target = filepath.Join(filepath.Dir(path), target)
			}
			included, err := readList(target, depth+1)
			if err != nil {
				return nil, err
			}
			names = append(names, included...)
			continue
		}

		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read package list"), "path", path)
	}

	return names, nil
}
