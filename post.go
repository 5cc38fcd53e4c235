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
	"strconv"
	"time"
)

const (
	// PostStatusPublish and PostTypePost are fixed for every imported post.
	PostStatusPublish = "publish"
	PostTypePost      = "post"

	// MetaTumblrData holds the serialized Tumblr metadata bag.
	MetaTumblrData = "_tumblr_data"
	// MetaTumblrPostID holds the Tumblr post id. Stores index on it.
	MetaTumblrPostID = "_tumblr_post_id"

	// DateLayout is the layout of post_date and post_modified, always UTC.
	DateLayout = "2006-01-02 15:04:05"
)

// SourcePost is a post as it appears in a Tumblr JSON archive.
//
// Numbers are kept as json.Number so ids survive untouched; timestamps that
// can't be read as integers count as missing.
type SourcePost struct {
	ID           json.Number            `json:"id"`
	TumblelogID  *json.Number           `json:"tumblelog_id,omitempty"`
	State        *string                `json:"state,omitempty"`
	Type         *string                `json:"type,omitempty"`
	Title        *string                `json:"title,omitempty"`
	PublishTime  json.Number            `json:"publish_time,omitempty"`
	LastModified json.Number            `json:"last_modified,omitempty"`
	Meta         map[string]interface{} `json:"meta,omitempty"`
}

// ExternalID returns the Tumblr id coerced to an integer, 0 if it has none.
func (p *SourcePost) ExternalID() int64 {
	return numberToInt(p.ID)
}

func numberToInt(n json.Number) int64 {
	if n == "" {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return int64(f)
	}
	return 0
}

// TargetPost is the record written to a store.
type TargetPost struct {
	Status          string   `json:"post_status"`
	Type            string   `json:"post_type"`
	Title           string   `json:"post_title"`
	Content         string   `json:"post_content"`
	ContentFiltered string   `json:"post_content_filtered"`
	Date            string   `json:"post_date"`
	Modified        string   `json:"post_modified"`
	Meta            PostMeta `json:"meta_input"`
}

// PostMeta is the metadata attached to every imported post.
type PostMeta struct {
	TumblrData   string `json:"_tumblr_data"`
	TumblrPostID int64  `json:"_tumblr_post_id"`
}

// CreatedAt parses Date. Malformed dates yield the zero Unix time.
func (p *TargetPost) CreatedAt() time.Time {
	return parsePostDate(p.Date)
}

// ModifiedAt parses Modified. Malformed dates yield the zero Unix time.
func (p *TargetPost) ModifiedAt() time.Time {
	return parsePostDate(p.Modified)
}

func parsePostDate(s string) time.Time {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return t
}

// ExternalIDString is the Tumblr id in decimal, as used in slugs and keys.
func (p *TargetPost) ExternalIDString() string {
	return strconv.FormatInt(p.Meta.TumblrPostID, 10)
}

// StoredPost is a TargetPost read back from a store.
type StoredPost struct {
	ID string `json:"id"`
	TargetPost
}
