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

import "context"

// Store is where imported posts are written.
//
// LookupByExternalID returns the record id of the first post tagged with
// the given Tumblr id. Upsert writes post, updating existingID when it is
// non-empty, and returns the record id it wrote.
type Store interface {
	LookupByExternalID(ctx context.Context, externalID int64) (recordID string, found bool, err error)
	Upsert(ctx context.Context, post *TargetPost, existingID string) (recordID string, err error)
	Close() error
}

// PostReader is implemented by stores that can return a stored post.
// GetPost returns nil, nil when there is no such record.
type PostReader interface {
	GetPost(ctx context.Context, recordID string) (*StoredPost, error)
}
