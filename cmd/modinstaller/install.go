package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/tie/modinstaller/install"
	"github.com/tie/modinstaller/logging"
	"github.com/tie/modinstaller/progress"
)

type InstallCommand struct {
	settings
	source

	Strict bool
	List   bool
}

func (*InstallCommand) Name() string     { return "install" }
func (*InstallCommand) Synopsis() string { return "install a modpack" }
func (*InstallCommand) Usage() string {
	return `Usage: modinstaller install [-root dir] [-j n] [-side client] [-strict]
	[-pack id [-version id] [-curse] | manifest paths]

	Installs pack files into the install root. Files that already exist
	with the expected size and SHA-1 are kept; everything else is
	downloaded. Override bundles are unpacked into the install root.

	Failed files are reported and do not stop the install. With -strict
	the command exits with status 1 if any file failed.

Flags:
`
}

func (cmd *InstallCommand) SetFlags(fs *flag.FlagSet) {
	cmd.settings.SetFlags(fs)
	cmd.source.SetFlags(fs)
	fs.BoolVar(&cmd.Strict, "strict", false, "fail if any file could not be installed")
	fs.BoolVar(&cmd.List, "list", false, "list files unpacked from override bundles")
}

func (cmd *InstallCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	cfg, done, err := cmd.load()
	defer done()
	if err != nil {
		log.Error().Err(err).Msg("load config")
		return subcommands.ExitUsageError
	}

	files, err := cmd.files(ctx, cfg, fs.Args())
	if err != nil {
		log.Error().Err(err).Msg("load pack files")
		return subcommands.ExitFailure
	}

	if err := os.MkdirAll(cfg.InstallRoot, 0755); err != nil {
		log.Error().Err(err).Str("path", cfg.InstallRoot).Msg("create install root")
		return subcommands.ExitFailure
	}

	in := &install.Installer{
		Files:       osfs.New(cfg.InstallRoot),
		Client:      newClient(cfg),
		Concurrency: cfg.Concurrency,
		ItemTimeout: cfg.ItemTimeout,
		Reporter: progress.Tee{
			progress.NewPrinter(progress.Options{Total: len(files), Verbose: cmd.List}),
			progress.Log{Logger: logging.GetLogger("progress")},
		},
		Logger: logging.GetLogger("install"),
	}
	sum, err := in.Install(ctx, files)
	if err != nil {
		log.Error().Err(err).Msg("install")
		return subcommands.ExitFailure
	}

	fmt.Printf("%d valid, %d fetched, %d failed\n", sum.Valid, sum.Fetched, sum.Failed)
	if n := len(sum.Unresolved); n > 0 {
		fmt.Printf("%d mods referenced by override bundles were not installed\n", n)
	}
	if cmd.Strict && sum.Failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
