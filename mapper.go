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
	"strings"
	"time"
)

// MapPosts maps every source post, preserving order.
func MapPosts(posts []SourcePost) []TargetPost {
	out := make([]TargetPost, 0, len(posts))
	for i := range posts {
		out = append(out, MapPost(&posts[i]))
	}
	return out
}

// MapPost turns a Tumblr post into a TargetPost. It never fails: missing
// fields become empty strings, the Unix epoch, or an empty NPF list.
// src is not modified.
func MapPost(src *SourcePost) TargetPost {
	p := TargetPost{
		Status: PostStatusPublish,
		Type:   PostTypePost,
	}
	if src.Title != nil {
		p.Title = *src.Title
	}
	p.Date = formatUnix(numberToInt(src.PublishTime))
	p.Modified = formatUnix(numberToInt(src.LastModified))

	bag := make(map[string]interface{}, len(src.Meta)+4)
	for k, v := range src.Meta {
		bag[k] = v
	}
	bag["id"] = numberOrNil(&src.ID)
	bag["tumblelog_id"] = numberOrNil(src.TumblelogID)
	bag["state"] = stringOrNil(src.State)
	bag["type"] = stringOrNil(src.Type)

	if two, ok := bag["two"].(string); ok {
		p.Content = two
	}
	npf := bag["npf_data"]
	if npf == nil {
		npf = []interface{}{}
	}
	delete(bag, "two")
	delete(bag, "npf_data")

	p.ContentFiltered = serialize(npf)
	p.Meta = PostMeta{
		TumblrData:   serialize(bag),
		TumblrPostID: src.ExternalID(),
	}
	return p
}

func formatUnix(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(DateLayout)
}

func numberOrNil(n *json.Number) interface{} {
	if n == nil || *n == "" {
		return nil
	}
	return *n
}

func stringOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// serialize encodes v as compact JSON without HTML escaping. Map keys are
// sorted, so equal input always gives equal output.
func serialize(v interface{}) string {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		// Only values decoded from JSON reach here, and those always encode.
		return "null"
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// UnserializeMeta decodes a _tumblr_data value back into a metadata bag.
func UnserializeMeta(s string) (map[string]interface{}, error) {
	bag := map[string]interface{}{}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&bag); err != nil {
		return nil, err
	}
	return bag, nil
}
