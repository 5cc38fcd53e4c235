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
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const canonicalArchive = `{
	"meta": {"status": 200, "msg": "OK"},
	"response": {"posts": [
		{"id": 740000000000000001, "tumblelog_id": 42, "state": "published", "type": "text", "title": "First", "meta": {"two": "<p>one</p>"}},
		{"id": 740000000000000002, "tumblelog_id": 42, "state": "published", "type": "photo", "meta": {"two": "<p>two</p>"}}
	]}
}`

func writeArchive(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "posts.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadArchive_NotFound(t *testing.T) {
	_, err := ReadArchive(filepath.Join(t.TempDir(), "missing.json"))

	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "does not exist")
}

func TestReadArchive_Directory(t *testing.T) {
	_, err := ReadArchive(t.TempDir())

	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestReadArchive(t *testing.T) {
	path := writeArchive(t, canonicalArchive)

	raw, err := ReadArchive(path)

	require.NoError(t, err)
	assert.Equal(t, canonicalArchive, string(raw))
}

func TestDecodeArchive_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		shape ArchiveShape
		count int
	}{
		{"meta/response", canonicalArchive, ShapeResponse, 2},
		{"data/posts", `{"data": {"posts": [{"id": 1}, {"id": 2}, {"id": 3}]}}`, ShapeData, 3},
		{"bare array", `[{"id": 1}]`, ShapeArray, 1},
		{"empty posts", `{"meta": {"status": 200}, "response": {"posts": []}}`, ShapeResponse, 0},
		{"byte order mark", "\xef\xbb\xbf[{\"id\": 1}]", ShapeArray, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, shape, err := DecodeArchive([]byte(tt.input))

			require.NoError(t, err)
			assert.Equal(t, tt.shape, shape)
			assert.Len(t, posts, tt.count)
		})
	}
}

func TestDecodeArchive_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  ErrorKind
	}{
		{"malformed", `{"meta": {"status": 200},`, KindParseFailure},
		{"not json", `hello`, KindParseFailure},
		{"trailing data", `[] []`, KindParseFailure},
		{"non-200 status", `{"meta": {"status": 404}, "response": {"posts": []}}`, KindSchemaFailure},
		{"string status", `{"meta": {"status": "200"}, "response": {"posts": []}}`, KindSchemaFailure},
		{"meta not object", `{"meta": 200, "response": {"posts": []}}`, KindSchemaFailure},
		{"missing response", `{"meta": {"status": 200}}`, KindSchemaFailure},
		{"missing posts", `{"meta": {"status": 200}, "response": {}}`, KindSchemaFailure},
		{"posts not array", `{"meta": {"status": 200}, "response": {"posts": {}}}`, KindSchemaFailure},
		{"missing data posts", `{"data": {}}`, KindSchemaFailure},
		{"no envelope", `{"posts": []}`, KindSchemaFailure},
		{"scalar", `"posts"`, KindSchemaFailure},
		{"post not object", `[{"id": 1}, 2]`, KindSchemaFailure},
		{"post meta not object", `[{"id": 1, "meta": "x"}]`, KindSchemaFailure},
		{"post without id", `[{"title": "A"}]`, KindSchemaFailure},
		{"post with null id", `[{"id": null, "title": "A"}]`, KindSchemaFailure},
		{"post with non-numeric id", `[{"id": "abc"}]`, KindSchemaFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, _, err := DecodeArchive([]byte(tt.input))

			require.Error(t, err)
			assert.Nil(t, posts)
			assert.Equal(t, tt.kind, KindOf(err), err.Error())
		})
	}
}

func TestDecodeArchive_KeepsOrderAndIDs(t *testing.T) {
	posts, _, err := DecodeArchive([]byte(canonicalArchive))

	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, int64(740000000000000001), posts[0].ExternalID())
	assert.Equal(t, int64(740000000000000002), posts[1].ExternalID())
	assert.Equal(t, json.Number("42"), *posts[0].TumblelogID)
	assert.Equal(t, "<p>one</p>", posts[0].Meta["two"])
}

func TestDecodeArchive_StringID(t *testing.T) {
	posts, _, err := DecodeArchive([]byte(`[{"id": "123"}]`))

	require.NoError(t, err)
	assert.Equal(t, int64(123), posts[0].ExternalID())
}

func TestLoadArchive_LogsCount(t *testing.T) {
	logger, hook := test.NewNullLogger()
	ic := NewImportContext(logger, Options{})

	posts, err := LoadArchive(ic, writeArchive(t, canonicalArchive))

	require.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, "JSON file read successfully. Found 2 posts.", hook.LastEntry().Message)
	assert.Equal(t, StageValidating, ic.Stage)
}

func TestLoadArchive_LegacyShape(t *testing.T) {
	logger, hook := test.NewNullLogger()
	ic := NewImportContext(logger, Options{})

	posts, err := LoadArchive(ic, writeArchive(t, `[{"id": 1}]`))

	require.NoError(t, err)
	assert.Len(t, posts, 1)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned, "expected a deprecation warning")
}

func TestLoadArchive_Strict(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ic := NewImportContext(logger, Options{Strict: true})

	_, err := LoadArchive(ic, writeArchive(t, `{"data": {"posts": []}}`))

	assert.True(t, errors.Is(err, ErrSchema))
	assert.Equal(t, StageFailed, ic.Stage)
	assert.Equal(t, StageValidating, ic.FailedAt)

	ic = NewImportContext(logger, Options{Strict: true})
	_, err = LoadArchive(ic, writeArchive(t, canonicalArchive))
	assert.NoError(t, err)
}

func TestLoadArchive_Missing(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ic := NewImportContext(logger, Options{})

	_, err := LoadArchive(ic, filepath.Join(t.TempDir(), "nope.json"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, StageReading, ic.FailedAt)
}
