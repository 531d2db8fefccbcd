package repofetch

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"go.trai.ch/zerr"

	"github.com/debstrap/debstrap/internal/core/domain"
)

// releaseEntry is one checksum line of a release file.
type releaseEntry struct {
	Checksum string
	Size     int64
	Path     string
}

// releaseFile is the subset of an InRelease document this tool consumes:
// the SHA256 file list naming the suite's indices.
type releaseFile struct {
	SHA256 []releaseEntry
}

// parseRelease reads a clearsigned InRelease document and extracts its
// SHA256 section. Signature armor is skipped; checksum comparison of the
// fetched indices is the integrity boundary here, not signature
// verification.
func parseRelease(r io.Reader) (*releaseFile, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	release := &releaseFile{}
	inSHA256 := false

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "-----") {
			// Armor header or footer.
			inSHA256 = false
			continue
		}

		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			if !inSHA256 {
				continue
			}
			entry, ok := parseReleaseEntry(line)
			if !ok {
				return nil, zerr.With(domain.ErrBadReleaseFile, "line", line)
			}
			release.SHA256 = append(release.SHA256, entry)
			continue
		}

		inSHA256 = strings.TrimSpace(line) == "SHA256:"
	}
	if err := scanner.Err(); err != nil {
		return nil, zerr.Wrap(err, "failed to read release metadata")
	}

	if len(release.SHA256) == 0 {
		return nil, zerr.Wrap(domain.ErrBadReleaseFile, "release metadata carries no SHA256 file list")
	}
	return release, nil
}

func parseReleaseEntry(line string) (releaseEntry, bool) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return releaseEntry{}, false
	}
	size, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return releaseEntry{}, false
	}
	return releaseEntry{Checksum: fields[0], Size: size, Path: fields[2]}, true
}
