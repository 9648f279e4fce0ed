// Package main is the cullcore command itself.
package main

import (
	"log"
	"os"

	"go.viam.com/cullcore/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
