package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/tie/modinstaller/integrity"
	"github.com/tie/modinstaller/models"
)

type VerifyCommand struct {
	settings
	source
}

func (*VerifyCommand) Name() string     { return "verify" }
func (*VerifyCommand) Synopsis() string { return "check installed files" }
func (*VerifyCommand) Usage() string {
	return `Usage: modinstaller verify [-root dir] [-side client]
	[-pack id [-version id] [-curse] | manifest paths]

	Checks every pack file in the install root against its expected size
	and SHA-1 without downloading anything. Exits with status 1 if any
	file is missing or differs.

Flags:
`
}

func (cmd *VerifyCommand) SetFlags(fs *flag.FlagSet) {
	cmd.settings.SetFlags(fs)
	cmd.source.SetFlags(fs)
}

func (cmd *VerifyCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
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

	bad := verify(osfs.New(cfg.InstallRoot), files)
	for _, f := range bad {
		fmt.Printf("%s: missing or modified\n", f.Path())
	}
	fmt.Printf("%d of %d files valid\n", len(files)-len(bad), len(files))
	if len(bad) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// verify returns the files that fail the integrity check.
func verify(root billy.Basic, files []models.PackFile) []models.PackFile {
	var bad []models.PackFile
	for _, f := range files {
		if !integrity.IsValid(root, f.Path(), f.Size, f.SHA1) {
			bad = append(bad, f)
		}
	}
	return bad
}
