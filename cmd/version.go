package cmd

import (
	"io"
	"runtime"

	"grimm.is/sockd/internal/brand"
)

// RunVersion prints the build version.
func RunVersion(w io.Writer) {
	Printer.Fprintf(w, "%s %s (%s) %s/%s\n", brand.Name, brand.Version, brand.GitCommit, runtime.GOOS, runtime.GOARCH)
}
