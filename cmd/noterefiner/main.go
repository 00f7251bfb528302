package main

import (
	"os"

	"github.com/YoshitsuguKoike/noterefiner/internal/interface/cli"
)

func main() {
	os.Exit(cli.Execute())
}
