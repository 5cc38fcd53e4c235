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
	"context"
	"encoding/json"
)

// LedgerEntry records one post written during a run.
type LedgerEntry struct {
	RecordID   string
	ExternalID int64
	Updated    bool
}

// Ledger lists the posts written during a run, in write order.
type Ledger struct {
	Entries []LedgerEntry
}

// Len returns how many posts were written.
func (l *Ledger) Len() int {
	return len(l.Entries)
}

// ExternalIDs returns the Tumblr ids of the written posts.
func (l *Ledger) ExternalIDs() []int64 {
	ids := make([]int64, 0, len(l.Entries))
	for _, e := range l.Entries {
		ids = append(ids, e.ExternalID)
	}
	return ids
}

// ImportTumblr imports the archive at path into store. With ic.DryRun the
// store is never touched and may be nil.
func ImportTumblr(ctx context.Context, ic *ImportContext, store Store, path string) (*Ledger, error) {
	batch, err := PrepareBatch(ic, path)
	if err != nil {
		return &Ledger{}, err
	}
	return ImportPosts(ctx, ic, store, batch)
}

// PrepareBatch reads, validates and maps the archive at path. Nothing is
// written, so callers can check the archive before opening a store.
func PrepareBatch(ic *ImportContext, path string) ([]TargetPost, error) {
	posts, err := LoadArchive(ic, path)
	if err != nil {
		return nil, err
	}

	ic.Log.Info("Starting Tumblr JSON Importer...")
	ic.enter(StageMapping)
	return MapPosts(posts), nil
}

// ImportPosts writes an already mapped batch. Each post is looked up by its
// Tumblr id and updated if found, inserted otherwise. The first failure
// stops the run; the returned ledger holds what was written before it.
func ImportPosts(ctx context.Context, ic *ImportContext, store Store, batch []TargetPost) (*Ledger, error) {
	ledger := &Ledger{}

	if ic.DryRun {
		ic.enter(StageDryRunReport)
		if ic.Debug {
			dump, err := json.MarshalIndent(batch, "", "  ")
			if err != nil {
				ic.Log.WithError(err).Warn("Failed to render the generated posts")
			} else {
				ic.Log.Debugf("Generated posts:\n%s", dump)
			}
		}
		ic.Log.Infof("Dry run complete. No posts were imported. Set --debug to see the generated posts array.")
		ic.enter(StageDone)
		return ledger, nil
	}

	ic.enter(StageWriting)
	if store == nil {
		return ledger, ic.fail(newError(KindWriteFailure, nil, "No store configured"))
	}

	for i := range batch {
		p := &batch[i]
		ext := p.Meta.TumblrPostID
		ic.Log.Infof("Importing Tumblr post: %d", ext)

		existing, found, err := store.LookupByExternalID(ctx, ext)
		if err != nil {
			return ledger, ic.fail(newError(KindWriteFailure, err,
				"Failed to look up tumblr post: %d. Imported %d posts before this", ext, ledger.Len()))
		}
		if !found {
			existing = ""
		}

		id, err := store.Upsert(ctx, p, existing)
		if err != nil {
			return ledger, ic.fail(newError(KindWriteFailure, err,
				"Failed to import tumblr post: %d. Imported %d posts before this", ext, ledger.Len()))
		}

		ledger.Entries = append(ledger.Entries, LedgerEntry{RecordID: id, ExternalID: ext, Updated: found})
		action := "created"
		if found {
			action = "updated"
		}
		ic.Log.WithField("post_id", id).Infof("Imported Tumblr post: %d (%s)", ext, action)
	}

	if ic.Debug {
		ic.Log.Debugf("Imported Tumblr post IDs: %v", ledger.ExternalIDs())
	}
	ic.Log.Infof("Import complete. Imported %d posts.", ledger.Len())
	ic.enter(StageDone)
	return ledger, nil
}
