// Package main is the armik command.
package main

import (
	"os"

	"github.com/masiro/armik/cli"
	"github.com/masiro/armik/logging"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		logging.NewWriterLogger("armik", logging.ERROR, os.Stderr).Error(err)
		os.Exit(1)
	}
}
