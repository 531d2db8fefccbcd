package commands

import (
	"github.com/spf13/cobra"

	"github.com/debstrap/debstrap/internal/adapters/repofetch" //nolint:depguard // default mirror constant
	"github.com/debstrap/debstrap/internal/app"
	"github.com/debstrap/debstrap/internal/core/ports"
)

func (c *CLI) newRunCmd() *cobra.Command {
	var opts app.Options
	var codec string

	cmd := &cobra.Command{
		Use:   "run BRANCH TARGET [MIRROR]",
		Short: "Bootstrap a root filesystem for BRANCH into TARGET",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Branch = args[0]
			opts.Target = args[1]
			opts.Mirror = repofetch.DefaultMirror
			if len(args) == 3 {
				opts.Mirror = args[2]
			}
			opts.TarCodec = ports.TarCodec(codec)
			return c.app.Run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "recipe file naming the stub and base package sets")
	cmd.Flags().StringSliceVarP(&opts.Arches, "arch", "a", nil, "architectures to bootstrap ('all' is implied)")
	cmd.Flags().StringSliceVarP(&opts.Components, "comp", "m", nil, "repository components ('main' is implied)")
	cmd.Flags().StringSliceVar(&opts.Topics, "topics", nil, "overlay repositories to enable")
	cmd.Flags().StringSliceVarP(&opts.IncludePackages, "include", "i", nil, "extra packages to install")
	cmd.Flags().StringSliceVarP(&opts.IncludeFiles, "include-files", "f", nil, "files listing extra packages, one per line")
	cmd.Flags().StringSliceVarP(&opts.Scripts, "scripts", "s", nil, "scripts to run inside the target after installation")
	cmd.Flags().StringVar(&opts.SourcesListFile, "sources-list", "", "source list copied into the target verbatim")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "concurrent jobs (0 means one per CPU)")
	cmd.Flags().BoolVarP(&opts.DownloadOnly, "download-only", "g", false, "stop after downloading packages")
	cmd.Flags().BoolVarP(&opts.Stage1Only, "stage1-only", "1", false, "stop before in-guest installation")
	cmd.Flags().BoolVarP(&opts.Clean, "clean", "x", false, "factory-reset the target after installation")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "proceed even if the target already exists")
	cmd.Flags().StringVar(&opts.TarPath, "tar", "", "export the finished filesystem as a compressed tarball")
	cmd.Flags().StringVar(&codec, "tar-codec", "", "tarball codec, zstd or gzip (defaults to zstd)")
	cmd.Flags().StringVar(&opts.SquashfsPath, "squashfs", "", "export the finished filesystem as a squashfs image")

	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("arch")
	cmd.MarkFlagsMutuallyExclusive("download-only", "clean")
	cmd.MarkFlagsMutuallyExclusive("download-only", "stage1-only")

	return cmd
}
