package app

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"go.trai.ch/zerr"
)

// installTemplate is the stage 2 unpack loop. Its single "{}" placeholder is
// replaced with the quoted package file-name list.
//
//go:embed assets/install.sh.tmpl
var installTemplate string

// cleanupScript is the factory-reset body appended when requested. It runs
// before any caller scripts.
//
//go:embed assets/cleanup.sh
var cleanupScript string

// writeInstallScript generates the stage 2 script inside the target, where
// the guest can reach it by name. The returned path is host-side.
func (a *App) writeInstallScript(target string, fileNames []string, opts Options) (string, error) {
	quoted := make([]string, len(fileNames))
	for i, name := range fileNames {
		quoted[i] = "'" + name + "'"
	}
	body := strings.Replace(installTemplate, "{}", strings.Join(quoted, " "), 1)

	f, err := os.CreateTemp(target, "install-*.sh")
	if err != nil {
		return "", zerr.Wrap(err, "failed to create install script")
	}
	path := f.Name()

	werr := writeAll(f, body)
	if werr == nil && opts.Clean {
		werr = writeAll(f, cleanupScript)
	}
	if werr == nil && len(opts.Scripts) > 0 {
		a.p.Logger.Info(fmt.Sprintf("including %d extra scripts", len(opts.Scripts)))
		werr = writeAll(f, "\necho 'Running additional scripts ...';")
		for _, script := range opts.Scripts {
			if werr != nil {
				break
			}
			werr = appendCallerScript(f, script)
		}
	}
	if werr == nil {
		werr = f.Sync()
	}
	if err := f.Close(); werr == nil {
		werr = err
	}
	if werr == nil {
		werr = os.Chmod(path, 0o755)
	}

	if werr != nil {
		_ = os.Remove(path)
		return "", zerr.Wrap(werr, "failed to write install script")
	}
	return path, nil
}

// appendCallerScript splices a caller script into the install script, marked
// with its source path so failures are attributable.
func appendCallerScript(w io.Writer, path string) error {
	src, err := os.Open(path) //nolint:gosec // path is provided by user
	if err != nil {
		return err
	}
	defer src.Close() //nolint:errcheck // best effort close in defer

	if err := writeAll(w, "\n# === "+path+"\n"); err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

func writeAll(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}
