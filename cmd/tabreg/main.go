// Command tabreg runs a regression experiment on a CSV file.
package main

import (
	"log/slog"
	"os"

	"github.com/YuminosukeSato/tabreg/pkg/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("tabreg failed", log.ErrAttr(err))
		os.Exit(1)
	}
}
