package main

import (
	"os"

	"github.com/gnolang/mtrans/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
