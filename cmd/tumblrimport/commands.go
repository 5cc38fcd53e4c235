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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	tumblrimport "github.com/writeas/tumblr-import"
	"github.com/writeas/tumblr-import/api"
	"github.com/writeas/tumblr-import/core"
	"github.com/writeas/tumblr-import/store"
)

func CmdImport(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: tumblrimport [--dry-run=<true|false>] <file>", 1)
	}
	fname := c.Args().First()

	settings, err := loadSettings()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ic := tumblrimport.NewImportContext(core.Log, tumblrimport.Options{
		DryRun: core.DryRun,
		Debug:  core.Debug,
		Strict: core.Strict,
	})

	// Validate the archive before touching the store, so a bad path never
	// prompts for a password or creates a database.
	batch, err := tumblrimport.PrepareBatch(ic, fname)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %s", err), 1)
	}

	var st tumblrimport.Store
	if !core.DryRun {
		st, err = openStore(ctx, settings)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: %s", err), 1)
		}
		defer st.Close()
		fmt.Fprintln(c.App.Writer, "Importing content into", settings.Store.Type, "store")
	}

	ledger, err := tumblrimport.ImportPosts(ctx, ic, st, batch)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %s", err), 1)
	}

	if core.DryRun {
		fmt.Fprintln(c.App.Writer, "Success: Dry run complete. No posts were imported. Set --debug to see the generated posts array.")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "Success: Import complete. Imported %d posts.\n", ledger.Len())
	return nil
}

func CmdServe(c *cli.Context) error {
	settings, err := loadSettings()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if settings.Serve.SiteID == "" {
		return cli.Exit("Error: --site-id is required", 1)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.NewStore(ctx, settings.Store)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %s", err), 1)
	}
	defer st.Close()

	reader, ok := st.(tumblrimport.PostReader)
	if !ok {
		return cli.Exit(fmt.Sprintf("Error: the %s store can't serve posts", settings.Store.Type), 1)
	}

	return api.NewServer(reader, settings.Serve.SiteID, core.Log).ListenAndServe(ctx, settings.Serve.Addr)
}

func loadSettings() (*core.Settings, error) {
	settings, err := core.LoadSettings(core.ConfigPath)
	if err != nil {
		return nil, err
	}
	settings.ApplyFlags()
	core.InitLogger(settings.LogLevel, core.Debug)
	return settings, nil
}

func openStore(ctx context.Context, settings *core.Settings) (tumblrimport.Store, error) {
	if settings.Store.Type != "writeas" {
		return store.NewStore(ctx, settings.Store)
	}

	wa := settings.WriteAs
	if wa.User == "" || wa.Blog == "" {
		return nil, fmt.Errorf("the writeas store needs --user and --blog")
	}
	fmt.Println("Hello", wa.User)
	password, err := core.ReadPassword()
	if err != nil {
		return nil, err
	}
	if err := core.SignIn(wa.User, password, wa.Instance); err != nil {
		return nil, err
	}
	return &writeAsSession{store.NewWriteAsStore(core.Client, wa.Blog, wa.Language)}, nil
}

// writeAsSession signs out when the store is closed.
type writeAsSession struct {
	*store.WriteAsStore
}

func (s *writeAsSession) Close() error {
	return core.SignOut()
}
