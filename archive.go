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
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
)

// ArchiveShape identifies which envelope an archive used.
type ArchiveShape int

const (
	ShapeUnknown ArchiveShape = iota
	// ShapeResponse is {"meta":{"status":200},"response":{"posts":[...]}}.
	ShapeResponse
	// ShapeData is the legacy {"data":{"posts":[...]}}.
	ShapeData
	// ShapeArray is the legacy bare array of posts.
	ShapeArray
)

func (s ArchiveShape) String() string {
	switch s {
	case ShapeResponse:
		return "meta/response"
	case ShapeData:
		return "data/posts"
	case ShapeArray:
		return "bare array"
	}
	return "unknown"
}

// ReadArchive returns the contents of the file at path.
func ReadArchive(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, newError(KindNotFound, nil, "The file '%s' does not exist.", path)
	}
	if err != nil {
		return nil, newError(KindReadFailure, err, "Failed to read the file '%s'", path)
	}
	if info.IsDir() {
		return nil, newError(KindNotFound, nil, "The file '%s' is a directory.", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(KindReadFailure, err, "Failed to read the file '%s'", path)
	}
	return raw, nil
}

// DecodeArchive parses raw JSON and returns the posts it holds, in order,
// along with the envelope shape it found.
func DecodeArchive(raw []byte) ([]SourcePost, ArchiveShape, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	var tree interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&tree); err != nil {
		return nil, ShapeUnknown, newError(KindParseFailure, err, "Invalid JSON file")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, ShapeUnknown, newError(KindParseFailure, nil, "Invalid JSON file: unexpected data after top-level value")
	}

	items, shape, err := findPosts(tree)
	if err != nil {
		return nil, shape, err
	}

	posts := make([]SourcePost, 0, len(items))
	for i, item := range items {
		p, err := decodePost(i, item)
		if err != nil {
			return nil, shape, err
		}
		posts = append(posts, p)
	}
	return posts, shape, nil
}

func findPosts(tree interface{}) ([]interface{}, ArchiveShape, error) {
	switch v := tree.(type) {
	case []interface{}:
		return v, ShapeArray, nil
	case map[string]interface{}:
		if meta, ok := v["meta"]; ok {
			return responsePosts(meta, v["response"])
		}
		if data, ok := v["data"]; ok {
			obj, ok := data.(map[string]interface{})
			if !ok {
				return nil, ShapeData, newError(KindSchemaFailure, nil, "Invalid archive: data is not an object")
			}
			posts, err := postsArray(obj, "data.posts")
			return posts, ShapeData, err
		}
		return nil, ShapeUnknown, newError(KindSchemaFailure, nil, "Invalid archive: missing meta and response keys")
	}
	return nil, ShapeUnknown, newError(KindSchemaFailure, nil, "Invalid archive: top level must be an object or an array")
}

func responsePosts(meta, response interface{}) ([]interface{}, ArchiveShape, error) {
	m, ok := meta.(map[string]interface{})
	if !ok {
		return nil, ShapeResponse, newError(KindSchemaFailure, nil, "Invalid archive: meta is not an object")
	}
	status, _ := m["status"].(json.Number)
	if code, err := status.Int64(); err != nil || code != 200 {
		return nil, ShapeResponse, newError(KindSchemaFailure, nil, "Invalid archive: meta.status is %v, expected 200", m["status"])
	}
	if response == nil {
		return nil, ShapeResponse, newError(KindSchemaFailure, nil, "Invalid archive: missing response")
	}
	r, ok := response.(map[string]interface{})
	if !ok {
		return nil, ShapeResponse, newError(KindSchemaFailure, nil, "Invalid archive: response is not an object")
	}
	posts, err := postsArray(r, "response.posts")
	return posts, ShapeResponse, err
}

func postsArray(obj map[string]interface{}, name string) ([]interface{}, error) {
	v, ok := obj["posts"]
	if !ok {
		return nil, newError(KindSchemaFailure, nil, "Invalid archive: missing %s", name)
	}
	posts, ok := v.([]interface{})
	if !ok {
		return nil, newError(KindSchemaFailure, nil, "Invalid archive: %s is not an array", name)
	}
	return posts, nil
}

func decodePost(i int, item interface{}) (SourcePost, error) {
	var p SourcePost
	if _, ok := item.(map[string]interface{}); !ok {
		return p, newError(KindSchemaFailure, nil, "Invalid archive: post %d is not an object", i)
	}
	b, err := json.Marshal(item)
	if err != nil {
		return p, newError(KindSchemaFailure, err, "Invalid archive: post %d", i)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return p, newError(KindSchemaFailure, err, "Invalid archive: post %d", i)
	}
	// The id is the upsert key; without it posts would collide on re-import.
	if p.ID == "" {
		return p, newError(KindSchemaFailure, nil, "Invalid archive: post %d has no id", i)
	}
	return p, nil
}

// LoadArchive reads and decodes the archive at path. Legacy shapes are
// accepted with a warning unless ic.Strict is set.
func LoadArchive(ic *ImportContext, path string) ([]SourcePost, error) {
	ic.enter(StageReading)
	ic.Log.Infof("Reading %s...", path)
	raw, err := ReadArchive(path)
	if err != nil {
		return nil, ic.fail(err)
	}

	ic.enter(StageValidating)
	posts, shape, err := DecodeArchive(raw)
	if err != nil {
		return nil, ic.fail(err)
	}
	if shape != ShapeResponse {
		if ic.Strict {
			return nil, ic.fail(newError(KindSchemaFailure, nil, "Invalid archive: %s envelope is not accepted in strict mode", shape))
		}
		ic.Log.Warnf("Archive uses the deprecated %s envelope. Expected meta/response.", shape)
	}

	ic.Log.Infof("JSON file read successfully. Found %d posts.", len(posts))
	return posts, nil
}
