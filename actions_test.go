/*
 * tumblr-import imports posts from a Tumblr JSON archive into a post store.
 * Copyright © 2024 Musing Studio LLC.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 */

package tumblrimport_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	tumblrimport "github.com/writeas/tumblr-import"
	"github.com/writeas/tumblr-import/store"
)

// MockStore is a mock implementation of the Store interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) LookupByExternalID(ctx context.Context, externalID int64) (string, bool, error) {
	args := m.Called(ctx, externalID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockStore) Upsert(ctx context.Context, post *tumblrimport.TargetPost, existingID string) (string, error) {
	args := m.Called(ctx, post, existingID)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newContext(opts tumblrimport.Options) *tumblrimport.ImportContext {
	logger, _ := test.NewNullLogger()
	return tumblrimport.NewImportContext(logger, opts)
}

func writeArchive(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posts.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func batchOf(ids ...int64) []tumblrimport.TargetPost {
	batch := make([]tumblrimport.TargetPost, 0, len(ids))
	for _, id := range ids {
		batch = append(batch, tumblrimport.TargetPost{
			Status: tumblrimport.PostStatusPublish,
			Type:   tumblrimport.PostTypePost,
			Meta:   tumblrimport.PostMeta{TumblrPostID: id},
		})
	}
	return batch
}

func withExternalID(id int64) interface{} {
	return mock.MatchedBy(func(p *tumblrimport.TargetPost) bool {
		return p.Meta.TumblrPostID == id
	})
}

func TestImportPosts_DryRunNeverWrites(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		ms := new(MockStore)
		ids := make([]int64, n)
		for i := range ids {
			ids[i] = int64(i + 1)
		}
		ic := newContext(tumblrimport.Options{DryRun: true, Debug: true})

		ledger, err := tumblrimport.ImportPosts(context.Background(), ic, ms, batchOf(ids...))

		require.NoError(t, err)
		assert.Equal(t, 0, ledger.Len())
		assert.Equal(t, tumblrimport.StageDone, ic.Stage)
		ms.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
		ms.AssertNotCalled(t, "LookupByExternalID", mock.Anything, mock.Anything)
	}
}

func TestImportTumblr_DryRunWithoutStore(t *testing.T) {
	ic := newContext(tumblrimport.Options{DryRun: true})

	ledger, err := tumblrimport.ImportTumblr(context.Background(), ic, nil, writeArchive(t, `[{"id": 1}]`))

	require.NoError(t, err)
	assert.Equal(t, 0, ledger.Len())
}

func TestImportPosts_InsertAndUpdate(t *testing.T) {
	ms := new(MockStore)
	ms.On("LookupByExternalID", mock.Anything, int64(1)).Return("", false, nil)
	ms.On("LookupByExternalID", mock.Anything, int64(2)).Return("20", true, nil)
	ms.On("Upsert", mock.Anything, withExternalID(1), "").Return("10", nil)
	ms.On("Upsert", mock.Anything, withExternalID(2), "20").Return("20", nil)

	ledger, err := tumblrimport.ImportPosts(context.Background(), newContext(tumblrimport.Options{}), ms, batchOf(1, 2))

	require.NoError(t, err)
	assert.Equal(t, []tumblrimport.LedgerEntry{
		{RecordID: "10", ExternalID: 1, Updated: false},
		{RecordID: "20", ExternalID: 2, Updated: true},
	}, ledger.Entries)
	assert.Equal(t, []int64{1, 2}, ledger.ExternalIDs())
	ms.AssertExpectations(t)
}

func TestImportPosts_WriteFailureStops(t *testing.T) {
	ms := new(MockStore)
	ms.On("LookupByExternalID", mock.Anything, mock.Anything).Return("", false, nil)
	ms.On("Upsert", mock.Anything, withExternalID(1), "").Return("10", nil)
	ms.On("Upsert", mock.Anything, withExternalID(2), "").Return("", errors.New("disk full"))
	ic := newContext(tumblrimport.Options{})

	ledger, err := tumblrimport.ImportPosts(context.Background(), ic, ms, batchOf(1, 2, 3))

	require.Error(t, err)
	assert.True(t, errors.Is(err, tumblrimport.ErrWrite))
	assert.Contains(t, err.Error(), "Failed to import tumblr post: 2. Imported 1 posts before this")
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, ledger.Len())
	assert.Equal(t, tumblrimport.StageWriting, ic.FailedAt)
	ms.AssertNumberOfCalls(t, "Upsert", 2)
	ms.AssertNotCalled(t, "LookupByExternalID", mock.Anything, int64(3))
}

func TestImportPosts_LookupFailure(t *testing.T) {
	ms := new(MockStore)
	ms.On("LookupByExternalID", mock.Anything, int64(1)).Return("", false, errors.New("timeout"))

	ledger, err := tumblrimport.ImportPosts(context.Background(), newContext(tumblrimport.Options{}), ms, batchOf(1))

	assert.Equal(t, tumblrimport.KindWriteFailure, tumblrimport.KindOf(err))
	assert.Equal(t, 0, ledger.Len())
	ms.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestImportPosts_NoStore(t *testing.T) {
	_, err := tumblrimport.ImportPosts(context.Background(), newContext(tumblrimport.Options{}), nil, batchOf(1))

	assert.True(t, errors.Is(err, tumblrimport.ErrWrite))
}

func TestImportTumblr_Example(t *testing.T) {
	path := writeArchive(t, `[{"id":1,"title":"Hi","publish_time":0,"meta":{"two":"body"}}]`)
	mem := store.NewMemoryStore()

	ledger, err := tumblrimport.ImportTumblr(context.Background(), newContext(tumblrimport.Options{}), mem, path)

	require.NoError(t, err)
	assert.Equal(t, 1, ledger.Len())
	posts := mem.Posts()
	require.Len(t, posts, 1)
	assert.Equal(t, "Hi", posts[0].Title)
	assert.Equal(t, "body", posts[0].Content)
	assert.Equal(t, "1970-01-01 00:00:00", posts[0].Date)
	assert.Equal(t, int64(1), posts[0].Meta.TumblrPostID)

	bag, err := tumblrimport.UnserializeMeta(posts[0].Meta.TumblrData)
	require.NoError(t, err)
	assert.Equal(t, json.Number("1"), bag["id"])

	ledger, err = tumblrimport.ImportTumblr(context.Background(), newContext(tumblrimport.Options{}), mem, path)

	require.NoError(t, err)
	assert.Equal(t, 1, mem.Count())
	assert.True(t, ledger.Entries[0].Updated)
	assert.Equal(t, posts[0].ID, ledger.Entries[0].RecordID)
}

func TestImportTumblr_Idempotent(t *testing.T) {
	path := writeArchive(t, `{"meta": {"status": 200}, "response": {"posts": [
		{"id": 11, "title": "a", "meta": {"two": "a"}},
		{"id": 12, "title": "b", "meta": {"two": "b"}},
		{"id": 13, "title": "c", "meta": {"two": "c"}}
	]}}`)
	mem := store.NewMemoryStore()
	ctx := context.Background()

	_, err := tumblrimport.ImportTumblr(ctx, newContext(tumblrimport.Options{}), mem, path)
	require.NoError(t, err)
	afterFirst := mem.Count()

	_, err = tumblrimport.ImportTumblr(ctx, newContext(tumblrimport.Options{}), mem, path)
	require.NoError(t, err)

	assert.Equal(t, 3, afterFirst)
	assert.Equal(t, afterFirst, mem.Count())
	for _, id := range []int64{11, 12, 13} {
		matches := 0
		for _, p := range mem.Posts() {
			if p.Meta.TumblrPostID == id {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "tumblr post %d", id)
	}
}

func TestImportTumblr_BadArchivesWriteNothing(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"malformed", `[{"id": 1`, tumblrimport.ErrParse},
		{"bad status", `{"meta": {"status": 500}, "response": {"posts": [{"id": 1}]}}`, tumblrimport.ErrSchema},
		{"missing posts", `{"meta": {"status": 200}, "response": {}}`, tumblrimport.ErrSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemoryStore()

			ledger, err := tumblrimport.ImportTumblr(context.Background(), newContext(tumblrimport.Options{}), mem, writeArchive(t, tt.input))

			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, 0, ledger.Len())
			assert.Equal(t, 0, mem.Count())
		})
	}
}

func TestImportTumblr_PostsWithoutIDWriteNothing(t *testing.T) {
	path := writeArchive(t, `[{"title":"A","meta":{"two":"a"}},{"title":"B","meta":{"two":"b"}}]`)
	mem := store.NewMemoryStore()

	ledger, err := tumblrimport.ImportTumblr(context.Background(), newContext(tumblrimport.Options{}), mem, path)

	require.Error(t, err)
	assert.True(t, errors.Is(err, tumblrimport.ErrSchema))
	assert.Contains(t, err.Error(), "post 0 has no id")
	assert.Equal(t, 0, ledger.Len())
	assert.Equal(t, 0, mem.Count())
}

func TestImportPosts_DryRunLogsBatch(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	ic := tumblrimport.NewImportContext(logger, tumblrimport.Options{DryRun: true, Debug: true})

	_, err := tumblrimport.ImportPosts(context.Background(), ic, nil, batchOf(4))

	require.NoError(t, err)
	var dumped bool
	for _, e := range hook.AllEntries() {
		assert.NotEqual(t, logrus.WarnLevel, e.Level, e.Message)
		if e.Level == logrus.DebugLevel && strings.HasPrefix(e.Message, "Generated posts:") {
			dumped = true
			assert.Contains(t, e.Message, `"_tumblr_post_id": 4`)
		}
	}
	assert.True(t, dumped)
}

func TestPrepareBatch_MissingFile(t *testing.T) {
	ic := newContext(tumblrimport.Options{})

	batch, err := tumblrimport.PrepareBatch(ic, filepath.Join(t.TempDir(), "nope.json"))

	assert.Nil(t, batch)
	assert.True(t, errors.Is(err, tumblrimport.ErrNotFound))
}
