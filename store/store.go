/*
 * tumblr-import imports posts from a Tumblr JSON archive into a post store.
 * Copyright © 2024 Musing Studio LLC.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */

// Package store provides the post stores an import can write to.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tumblrimport "github.com/writeas/tumblr-import"
)

// ErrNoSuchRecord is returned by Upsert when asked to update a record that
// does not exist.
var ErrNoSuchRecord = errors.New("no such record")

// Config selects and configures a store.
type Config struct {
	// Type is one of memory, sqlite, postgres, mongodb, dynamodb, writeas.
	Type      string `yaml:"type"`
	DSN       string `yaml:"dsn"` // sqlite path or postgres connection string
	MongoURI  string `yaml:"mongodb_uri"`
	Database  string `yaml:"database"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"` // custom DynamoDB endpoint for local testing
	TableName string `yaml:"table_name"`
}

// NewStore opens the store named by cfg.Type. The writeas store needs a
// signed-in client and is built with NewWriteAsStore instead.
func NewStore(ctx context.Context, cfg Config) (tumblrimport.Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return OpenSQLite(cfg.DSN)
	case "postgres", "postgresql":
		return OpenPostgres(ctx, cfg.DSN)
	case "mongodb":
		return NewMongoStore(ctx, cfg.MongoURI, cfg.Database)
	case "dynamodb":
		return NewDynamoDBStore(cfg.Region, cfg.Endpoint, cfg.TableName)
	case "writeas":
		return nil, fmt.Errorf("writeas store must be created with a signed-in client")
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
}

var (
	_ tumblrimport.Store      = (*MemoryStore)(nil)
	_ tumblrimport.Store      = (*SQLStore)(nil)
	_ tumblrimport.Store      = (*MongoStore)(nil)
	_ tumblrimport.Store      = (*DynamoDBStore)(nil)
	_ tumblrimport.Store      = (*WriteAsStore)(nil)
	_ tumblrimport.PostReader = (*SQLStore)(nil)
	_ tumblrimport.PostReader = (*MongoStore)(nil)
)

func recordKey(externalID int64) string {
	return "tumblr-" + strconv.FormatInt(externalID, 10)
}
