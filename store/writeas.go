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
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/writeas/go-writeas/v2"
	"github.com/writeas/godown"

	tumblrimport "github.com/writeas/tumblr-import"
)

// WriteAsStore publishes posts to a Write.as / WriteFreely blog. Each post
// gets the slug "tumblr-<id>", which is how it is found again on a re-run.
type WriteAsStore struct {
	client     *writeas.Client
	collection string
	language   string
}

// NewWriteAsStore uses a signed-in client to write into the blog alias
// collection. language may be empty.
func NewWriteAsStore(client *writeas.Client, collection, language string) *WriteAsStore {
	return &WriteAsStore{client: client, collection: collection, language: language}
}

func (w *WriteAsStore) LookupByExternalID(ctx context.Context, externalID int64) (string, bool, error) {
	p, err := w.client.GetCollectionPost(w.collection, recordKey(externalID))
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("lookup tumblr post %d: %w", externalID, err)
	}
	return p.ID, true, nil
}

func (w *WriteAsStore) Upsert(ctx context.Context, p *tumblrimport.TargetPost, existingID string) (string, error) {
	params, err := w.postParams(p)
	if err != nil {
		return "", err
	}

	if existingID != "" {
		post, err := w.client.UpdatePost(existingID, "", params)
		if err != nil {
			return "", fmt.Errorf("update post %s: %w", existingID, err)
		}
		return post.ID, nil
	}

	post, err := w.client.CreatePost(params)
	if err != nil {
		return "", fmt.Errorf("create post: %w", err)
	}
	return post.ID, nil
}

// postParams converts the Tumblr HTML body to Markdown.
func (w *WriteAsStore) postParams(p *tumblrimport.TargetPost) (*writeas.PostParams, error) {
	b := bytes.NewBufferString("")
	err := godown.Convert(b, strings.NewReader(p.Content), nil)
	if err != nil {
		return nil, fmt.Errorf("convert tumblr post %d to markdown: %w", p.Meta.TumblrPostID, err)
	}

	created := p.CreatedAt()
	updated := p.ModifiedAt()
	params := &writeas.PostParams{
		Title:      p.Title,
		Slug:       recordKey(p.Meta.TumblrPostID),
		Content:    strings.TrimSpace(b.String()),
		Created:    &created,
		Updated:    &updated,
		Font:       "norm",
		Collection: w.collection,
	}
	if w.language != "" {
		lang := w.language
		if len(lang) > 2 {
			lang = lang[:2]
		}
		params.Language = &lang
	}
	return params, nil
}

func isNotFound(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

// Close does nothing; signing out is up to whoever signed in.
func (w *WriteAsStore) Close() error {
	return nil
}
