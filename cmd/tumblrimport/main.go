/*
 * tumblr-import imports posts from a Tumblr JSON archive into a post store.
 * Copyright © 2024 Musing Studio LLC.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */

package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/writeas/tumblr-import/core"
)

func newApp() *cli.App {
	return &cli.App{
		Name:      "Tumblr JSON importer",
		Usage:     "Import a Tumblr blog by running this importer on an exported Tumblr JSON file.",
		Version:   "1.0.0",
		ArgsUsage: "<file>",
		Flags:     core.DefaultFlags,
		Action:    CmdImport,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve imported posts, with their Tumblr data, for one site id",
				Flags:  core.ServeFlags,
				Action: CmdServe,
			},
		},
	}
}

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
