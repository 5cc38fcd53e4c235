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

var (
	// Username is the username of the Write.as/WriteFreely account to import to.
	Username string
	// DstBlog is the alias of the blog to import to.
	DstBlog string
	// InstanceURL is the fully qualified URL of the WriteFreely instance to import to.
	InstanceURL string
	// Language is the language code set on posts published to Write.as.
	Language string

	// DryRun maps the archive without writing anything.
	DryRun bool
	// Debug turns on debug logging, including the mapped batch.
	Debug bool
	// Strict rejects archives that don't use the meta/response envelope.
	Strict bool

	// ConfigPath is the optional YAML settings file.
	ConfigPath string
	// StoreType names the store posts are written to.
	StoreType string
	// DSN is the SQLite path or PostgreSQL connection string.
	DSN string

	// ListenAddr is where the read API listens.
	ListenAddr string
	// SiteID is the only site the read API answers for.
	SiteID string
)
