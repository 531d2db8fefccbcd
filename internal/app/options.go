package app

import "github.com/debstrap/debstrap/internal/core/ports"

// Options parameterize one bootstrap run. They map one-to-one onto the CLI
// surface.
type Options struct {
	// Branch is the distribution branch to bootstrap from.
	Branch string
	// Target is the directory the root filesystem is built in. It must not
	// exist unless Force is set.
	Target string
	// Mirror serves the branch indices and packages.
	Mirror string

	// ConfigPath points at the recipe file naming the stub and base sets.
	ConfigPath string

	Arches     []string
	Components []string
	Topics     []string

	// IncludePackages and IncludeFiles extend the install set beyond the
	// recipe's base list.
	IncludePackages []string
	IncludeFiles    []string

	// Scripts are caller scripts appended to the generated install script.
	Scripts []string

	// SourcesListFile, when set, is copied into the target instead of
	// synthesizing a source list from Mirror and Branch.
	SourcesListFile string

	Jobs int

	DownloadOnly bool
	Stage1Only   bool
	Clean        bool
	Force        bool

	// TarPath and SquashfsPath request exports; empty means skip.
	TarPath      string
	TarCodec     ports.TarCodec
	SquashfsPath string
}
