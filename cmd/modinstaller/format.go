package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/subcommands"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/pkg/diff"
	"github.com/pkg/diff/write"
	"github.com/rs/zerolog/log"

	"github.com/tie/modinstaller/pack"
)

type FormatCommand struct {
	DisableCheck bool
	Overwrite    bool
}

func (*FormatCommand) Name() string     { return "fmt" }
func (*FormatCommand) Synopsis() string { return "format manifests" }
func (*FormatCommand) Usage() string {
	return `Usage: modinstaller fmt [-w] [-nocheck] [manifest paths]

	Formats manifests using standard syntax. It can either write files
	in-place or print a unified diff.

Flags:
`
}

func (cmd *FormatCommand) SetFlags(fs *flag.FlagSet) {
	fs.BoolVar(&cmd.DisableCheck, "nocheck", false, "disable diagnostics")
	fs.BoolVar(&cmd.Overwrite, "w", false, "write result to (source) file instead of stdout")
}

func (cmd *FormatCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	paths := fs.Args()
	if len(paths) <= 0 {
		paths = []string{defaultManifest}
	} else {
		sort.Strings(paths)
	}

	seen := make(map[string]bool, len(paths))
	uniq := paths[:0]
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			uniq = append(uniq, p)
		}
	}

	var color bool
	if !cmd.DisableCheck {
		parser := hclparse.NewParser()
		ms, diags := pack.Parse(parser, uniq)
		diagWr, c := newDiagWr(parser)
		color = c
		if len(diags) > 0 {
			if err := diagWr.WriteDiagnostics(diags); err != nil {
				log.Warn().Err(err).Msg("write diags")
			}
		}
		if diags.HasErrors() {
			return subcommands.ExitFailure
		}
		if _, err := pack.Files(ms); err != nil {
			log.Error().Err(err).Msg("check manifests")
			return subcommands.ExitFailure
		}
	} else {
		_, color = fdinfo(int(os.Stdout.Fd()))
	}

	for _, fpath := range uniq {
		root := osfs.New(filepath.Dir(fpath))
		changed, err := formatFile(root, filepath.Base(fpath), fpath, cmd.Overwrite, os.Stdout, color)
		if err != nil {
			log.Error().Err(err).Str("path", fpath).Msg("format")
			return subcommands.ExitFailure
		}
		if changed {
			log.Debug().Str("path", fpath).Msg("formatted")
		}
	}
	return subcommands.ExitSuccess
}

// formatFile formats name in fs. The result replaces the file when
// overwrite is set and is written to w as a unified diff otherwise.
// display names the file in the diff header.
func formatFile(fs billy.Filesystem, name, display string, overwrite bool, w io.Writer, color bool) (bool, error) {
	src, err := util.ReadFile(fs, name)
	if err != nil {
		return false, fmt.Errorf("read manifest: %w", err)
	}
	out := hclwrite.Format(src)
	if bytes.Equal(src, out) {
		return false, nil
	}
	if overwrite {
		return true, replaceFile(fs, name, out)
	}

	display = filepath.ToSlash(display)
	var opts []write.Option
	if color {
		opts = append(opts, write.TerminalColor())
	}
	err = diff.Text("a/"+display, "b/"+display, src, out, w, opts...)
	return true, err
}
