// Package deb unpacks package artifacts directly into a root filesystem,
// bypassing the package manager.
package deb

import (
	"io"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// Package artifacts are Unix ar archives: a global magic, then 60-byte
// headers each followed by the member data padded to an even offset.
const (
	arMagic      = "!<arch>\n"
	arHeaderSize = 60
	arEntryMagic = "`\n"
)

// arReader iterates the members of an ar archive.
type arReader struct {
	r io.Reader

	// leftover bytes of the current member, including padding, that must
	// be skipped before the next header.
	skip int64
}

func newArReader(r io.Reader) (*arReader, error) {
	magic := make([]byte, len(arMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, zerr.Wrap(err, "failed to read archive magic")
	}
	if string(magic) != arMagic {
		return nil, zerr.New("not an ar archive")
	}
	return &arReader{r: r}, nil
}

// Next advances to the next member and returns its name, size and a reader
// bounded to its data. It returns io.EOF after the last member.
func (a *arReader) Next() (string, int64, io.Reader, error) {
	if a.skip > 0 {
		if _, err := io.CopyN(io.Discard, a.r, a.skip); err != nil {
			return "", 0, nil, zerr.Wrap(err, "failed to skip archive member")
		}
		a.skip = 0
	}

	header := make([]byte, arHeaderSize)
	if _, err := io.ReadFull(a.r, header); err != nil {
		if err == io.EOF {
			return "", 0, nil, io.EOF
		}
		return "", 0, nil, zerr.Wrap(err, "failed to read member header")
	}
	if string(header[58:60]) != arEntryMagic {
		return "", 0, nil, zerr.New("corrupt member header")
	}

	// GNU ar terminates names with '/', BSD ar pads with spaces.
	name := strings.TrimRight(string(header[0:16]), " ")
	name = strings.TrimSuffix(name, "/")

	size, err := strconv.ParseInt(strings.TrimSpace(string(header[48:58])), 10, 64)
	if err != nil {
		return "", 0, nil, zerr.Wrap(err, "corrupt member size")
	}

	// Members are padded to even offsets.
	a.skip = size
	if size%2 == 1 {
		a.skip++
	}

	data := io.LimitReader(a.r, size)
	return name, size, &memberReader{a: a, r: data, n: size}, nil
}

// memberReader tracks consumption so Next knows how much is left to skip.
type memberReader struct {
	a *arReader
	r io.Reader
	n int64
}

func (m *memberReader) Read(p []byte) (int, error) {
	n, err := m.r.Read(p)
	m.a.skip -= int64(n)
	m.n -= int64(n)
	return n, err
}
