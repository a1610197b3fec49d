package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/tie/modinstaller/logging"
)

const (
	programName     = "modinstaller"
	defaultManifest = "base.pack"
)

func main() {
	logging.Setup(0, false)

	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.Bool("h", false, "alias for help")
	fs.Bool("help", false, "print usage")

	cdr := subcommands.NewCommander(fs, programName)
	cdr.Register(&InstallCommand{}, "")
	cdr.Register(&VerifyCommand{}, "")
	cdr.Register(&ExportCommand{}, "")
	cdr.Register(&FormatCommand{}, "")
	cdr.Register(cdr.HelpCommand(), "help")
	cdr.Register(cdr.FlagsCommand(), "help")
	cdr.Register(cdr.CommandsCommand(), "help")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("parse flags")
	}

	ctx := context.Background()
	switch cdr.Execute(ctx) {
	case subcommands.ExitFailure:
		os.Exit(1)
	case subcommands.ExitUsageError:
		os.Exit(2)
	}
}
