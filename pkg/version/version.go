// Package version carries build metadata set with -ldflags.
package version

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
)

func String() string {
	return fmt.Sprintf("zenmap %s (%s)", Version, Commit)
}
