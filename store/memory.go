/*
 * tumblr-import imports posts from a Tumblr JSON archive into a post store.
 * Copyright © 2024 Musing Studio LLC.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */

package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	tumblrimport "github.com/writeas/tumblr-import"
)

// MemoryStore keeps posts in memory. Record ids are sequential integers.
type MemoryStore struct {
	mu    sync.Mutex
	posts map[string]tumblrimport.TargetPost
	order []string
	next  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{posts: map[string]tumblrimport.TargetPost{}}
}

func (m *MemoryStore) LookupByExternalID(ctx context.Context, externalID int64) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if m.posts[id].Meta.TumblrPostID == externalID {
			return id, true, nil
		}
	}
	return "", false, nil
}

func (m *MemoryStore) Upsert(ctx context.Context, post *tumblrimport.TargetPost, existingID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existingID != "" {
		if _, ok := m.posts[existingID]; !ok {
			return "", fmt.Errorf("update post %s: %w", existingID, ErrNoSuchRecord)
		}
		m.posts[existingID] = *post
		return existingID, nil
	}
	m.next++
	id := strconv.Itoa(m.next)
	m.posts[id] = *post
	m.order = append(m.order, id)
	return id, nil
}

func (m *MemoryStore) GetPost(ctx context.Context, recordID string) (*tumblrimport.StoredPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[recordID]
	if !ok {
		return nil, nil
	}
	return &tumblrimport.StoredPost{ID: recordID, TargetPost: p}, nil
}

// Posts returns every stored post in insertion order.
func (m *MemoryStore) Posts() []tumblrimport.StoredPost {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]tumblrimport.StoredPost, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, tumblrimport.StoredPost{ID: id, TargetPost: m.posts[id]})
	}
	return out
}

func (m *MemoryStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

func (m *MemoryStore) Close() error {
	return nil
}
