/*
 * tumblr-import imports posts from a Tumblr JSON archive into a post store.
 * Copyright © 2024 Musing Studio LLC.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */

package core

import "github.com/urfave/cli/v2"

// StoreFlags pick the store. They are app-level only: repeating them on a
// subcommand would reset their destinations when its flags are parsed.
var StoreFlags = []cli.Flag{
	&cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to a YAML settings file",
		Destination: &ConfigPath,
	},

	&cli.StringFlag{
		Name:        "store",
		Aliases:     []string{"s"},
		Usage:       "Where to write posts: sqlite, postgres, mongodb, dynamodb, writeas or memory",
		Destination: &StoreType,
	},

	&cli.StringFlag{
		Name:        "dsn",
		Usage:       "SQLite database path or PostgreSQL connection string",
		Destination: &DSN,
	},
}

var DefaultFlags = append([]cli.Flag{
	&cli.BoolFlag{
		Name:        "dry-run",
		Usage:       "Perform a dry run of the import. Posts will not be imported.",
		Value:       true,
		Destination: &DryRun,
	},

	&cli.BoolFlag{
		Name:        "debug",
		Usage:       "Log the generated posts and imported ids",
		Destination: &Debug,
	},

	&cli.BoolFlag{
		Name:        "strict",
		Usage:       "Only accept archives with the meta/response envelope",
		Destination: &Strict,
	},

	&cli.StringFlag{
		Name:        "user",
		Aliases:     []string{"u"},
		Usage:       "The username for the Write.as/WriteFreely account (writeas store)",
		Destination: &Username,
	},

	&cli.StringFlag{
		Name:        "blog",
		Aliases:     []string{"b"},
		Usage:       "The alias of the destination blog for importing your content (writeas store)",
		Destination: &DstBlog,
	},

	&cli.StringFlag{
		Name:        "instance",
		Aliases:     []string{"i"},
		Usage:       "Provide the URL of your WriteFreely instance (e.g., '--instance https://pencil.writefree.ly')",
		Destination: &InstanceURL,
	},

	&cli.StringFlag{
		Name:        "lang",
		Usage:       "Language code for posts published to Write.as",
		Destination: &Language,
	},
}, StoreFlags...)

// ServeFlags are set after the serve command name. The store flags are
// given before it, e.g. "--store postgres serve --site-id 1".
var ServeFlags = []cli.Flag{
	&cli.StringFlag{
		Name:        "addr",
		Usage:       "Address to listen on",
		Destination: &ListenAddr,
	},

	&cli.StringFlag{
		Name:        "site-id",
		Usage:       "Only answer requests for this site id",
		Destination: &SiteID,
	},
}
