package pack

import (
	"fmt"

	"github.com/tie/modinstaller/models"
)

// Side selects the files of a client or server install.
type Side int

const (
	SideBoth Side = iota
	SideClient
	SideServer
)

func (s Side) String() string {
	switch s {
	case SideClient:
		return "client"
	case SideServer:
		return "server"
	}
	return "both"
}

func ParseSide(s string) (Side, error) {
	switch s {
	case "", "both":
		return SideBoth, nil
	case "client":
		return SideClient, nil
	case "server":
		return SideServer, nil
	}
	return SideBoth, fmt.Errorf("%w: %q", ErrUnknownSide, s)
}

// Filter returns the files that belong on side. Optional files are kept
// only when optional is true. The input order is preserved.
func Filter(files []models.PackFile, side Side, optional bool) []models.PackFile {
	out := make([]models.PackFile, 0, len(files))
	for _, f := range files {
		if f.Optional && !optional {
			continue
		}
		if side == SideClient && f.ServerOnly {
			continue
		}
		if side == SideServer && f.ClientOnly {
			continue
		}
		out = append(out, f)
	}
	return out
}
