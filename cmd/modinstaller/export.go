package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/tie/modinstaller/pack"
)

type ExportCommand struct {
	settings
	source

	OutputPath string
}

func (*ExportCommand) Name() string     { return "export" }
func (*ExportCommand) Synopsis() string { return "write a remote pack as a local manifest" }
func (*ExportCommand) Usage() string {
	return `Usage: modinstaller export -pack id [-version id] [-curse] [-side both] [-o base.pack]

	Fetches the file list of a remote pack version and writes it as a
	local .pack manifest. The manifest can be edited and installed with
	"modinstaller install".

Flags:
`
}

func (cmd *ExportCommand) SetFlags(fs *flag.FlagSet) {
	cmd.settings.SetFlags(fs)
	cmd.source.SetFlags(fs)
	fs.StringVar(&cmd.OutputPath, "o", defaultManifest, "output manifest path")
}

func (cmd *ExportCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if cmd.PackID == 0 || fs.NArg() > 0 {
		fs.Usage()
		return subcommands.ExitUsageError
	}
	cfg, done, err := cmd.load()
	defer done()
	if err != nil {
		log.Error().Err(err).Msg("load config")
		return subcommands.ExitUsageError
	}

	files, err := cmd.files(ctx, cfg, nil)
	if err != nil {
		log.Error().Err(err).Msg("load pack files")
		return subcommands.ExitFailure
	}

	if err := writeFile(cmd.OutputPath, pack.Encode(files)); err != nil {
		log.Error().Err(err).Str("path", cmd.OutputPath).Msg("write manifest")
		return subcommands.ExitFailure
	}
	log.Info().Int("files", len(files)).Str("path", cmd.OutputPath).Msg("manifest written")
	return subcommands.ExitSuccess
}
