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

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/writeas/tumblr-import/store"
)

// Settings is the optional YAML settings file. Environment variables
// override it and command-line flags override both.
type Settings struct {
	LogLevel string       `yaml:"log_level"`
	Store    store.Config `yaml:"store"`
	WriteAs  struct {
		User     string `yaml:"user"`
		Blog     string `yaml:"blog"`
		Instance string `yaml:"instance"`
		Language string `yaml:"language"`
	} `yaml:"writeas"`
	Serve struct {
		Addr   string `yaml:"addr"`
		SiteID string `yaml:"site_id"`
	} `yaml:"serve"`
}

// DefaultSettings writes to a SQLite file in the working directory.
func DefaultSettings() *Settings {
	s := &Settings{}
	s.Store = store.Config{
		Type:      "sqlite",
		DSN:       "tumblr-import.db",
		Database:  "tumblr_import",
		Region:    "us-west-2",
		TableName: "tumblr_posts",
	}
	s.Serve.Addr = ":8080"
	return s
}

// LoadSettings reads path over the defaults, if path is set, then applies
// environment overrides.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read settings: %w", err)
		}
		if err := yaml.Unmarshal(raw, s); err != nil {
			return nil, fmt.Errorf("parse settings %s: %w", path, err)
		}
	}

	s.LogLevel = getEnv("LOG_LEVEL", s.LogLevel)
	s.Store.Type = getEnv("TUMBLR_IMPORT_STORE", s.Store.Type)
	s.Store.DSN = getEnv("TUMBLR_IMPORT_DSN", s.Store.DSN)
	s.Store.MongoURI = getEnv("MONGODB_URI", s.Store.MongoURI)
	s.Store.Region = getEnv("AWS_REGION", s.Store.Region)
	s.Store.Endpoint = getEnv("DYNAMODB_ENDPOINT", s.Store.Endpoint)
	s.Store.TableName = getEnv("TABLE_NAME", s.Store.TableName)
	return s, nil
}

// ApplyFlags copies the command-line values that were given over s.
func (s *Settings) ApplyFlags() {
	setIf(&s.Store.Type, StoreType)
	setIf(&s.Store.DSN, DSN)
	setIf(&s.WriteAs.User, Username)
	setIf(&s.WriteAs.Blog, DstBlog)
	setIf(&s.WriteAs.Instance, InstanceURL)
	setIf(&s.WriteAs.Language, Language)
	setIf(&s.Serve.Addr, ListenAddr)
	setIf(&s.Serve.SiteID, SiteID)
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
