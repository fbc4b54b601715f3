package main

import (
	"os"

	"github.com/existentialmutt/wsl-build/internal/commands"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(commands.Execute(version))
}
