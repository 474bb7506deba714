package main

import (
	"os"

	"github.com/aevon-lab/reorder-features/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
