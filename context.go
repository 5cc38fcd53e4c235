/*
 * tumblr-import imports posts from a Tumblr JSON archive into a post store.
 * Copyright © 2024 Musing Studio LLC.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */

package tumblrimport

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Options control a single import run.
type Options struct {
	// DryRun maps the archive and reports the batch without writing.
	DryRun bool
	// Debug logs the mapped batch and the imported ids.
	Debug bool
	// Strict rejects the legacy archive shapes.
	Strict bool
}

// ImportContext is passed through every stage of a run.
type ImportContext struct {
	Options
	RunID uuid.UUID
	Log   *logrus.Entry

	// Stage is where the run currently is. FailedAt is set once the run
	// reaches StageFailed.
	Stage    Stage
	FailedAt Stage
}

// NewImportContext starts a run with a fresh id. A nil logger uses the
// logrus standard logger.
func NewImportContext(logger *logrus.Logger, opts Options) *ImportContext {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	id := uuid.New()
	return &ImportContext{
		Options: opts,
		RunID:   id,
		Log:     logger.WithField("run_id", id.String()),
	}
}
