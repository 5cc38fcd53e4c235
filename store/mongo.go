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
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	tumblrimport "github.com/writeas/tumblr-import"
)

const mongoCollection = "posts"

type mongoPost struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	TumblrPostID    int64              `bson:"tumblr_post_id"`
	Status          string             `bson:"post_status"`
	Type            string             `bson:"post_type"`
	Title           string             `bson:"post_title"`
	Content         string             `bson:"post_content"`
	ContentFiltered string             `bson:"post_content_filtered"`
	Date            string             `bson:"post_date"`
	Modified        string             `bson:"post_modified"`
	TumblrData      string             `bson:"tumblr_data"`
}

func toMongoPost(p *tumblrimport.TargetPost) mongoPost {
	return mongoPost{
		TumblrPostID:    p.Meta.TumblrPostID,
		Status:          p.Status,
		Type:            p.Type,
		Title:           p.Title,
		Content:         p.Content,
		ContentFiltered: p.ContentFiltered,
		Date:            p.Date,
		Modified:        p.Modified,
		TumblrData:      p.Meta.TumblrData,
	}
}

func (d mongoPost) stored() *tumblrimport.StoredPost {
	return &tumblrimport.StoredPost{
		ID: d.ID.Hex(),
		TargetPost: tumblrimport.TargetPost{
			Status:          d.Status,
			Type:            d.Type,
			Title:           d.Title,
			Content:         d.Content,
			ContentFiltered: d.ContentFiltered,
			Date:            d.Date,
			Modified:        d.Modified,
			Meta: tumblrimport.PostMeta{
				TumblrData:   d.TumblrData,
				TumblrPostID: d.TumblrPostID,
			},
		},
	}
}

// MongoStore keeps posts in the posts collection of a MongoDB database.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and makes sure the Tumblr id index exists.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = "tumblr_import"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	coll := client.Database(database).Collection(mongoCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "tumblr_post_id", Value: 1}},
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &MongoStore{client: client, coll: coll}, nil
}

func (m *MongoStore) LookupByExternalID(ctx context.Context, externalID int64) (string, bool, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"_id": 1})

	var doc mongoPost
	err := m.coll.FindOne(ctx, bson.M{"tumblr_post_id": externalID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup tumblr post %d: %w", externalID, err)
	}
	return doc.ID.Hex(), true, nil
}

func (m *MongoStore) Upsert(ctx context.Context, p *tumblrimport.TargetPost, existingID string) (string, error) {
	doc := toMongoPost(p)

	if existingID != "" {
		oid, err := primitive.ObjectIDFromHex(existingID)
		if err != nil {
			return "", fmt.Errorf("update post %s: %w", existingID, ErrNoSuchRecord)
		}
		res, err := m.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
		if err != nil {
			return "", fmt.Errorf("update post %s: %w", existingID, err)
		}
		if res.MatchedCount == 0 {
			return "", fmt.Errorf("update post %s: %w", existingID, ErrNoSuchRecord)
		}
		return existingID, nil
	}

	res, err := m.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert tumblr post %d: %w", p.Meta.TumblrPostID, err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert tumblr post %d: unexpected id %v", p.Meta.TumblrPostID, res.InsertedID)
	}
	return oid.Hex(), nil
}

func (m *MongoStore) GetPost(ctx context.Context, recordID string) (*tumblrimport.StoredPost, error) {
	oid, err := primitive.ObjectIDFromHex(recordID)
	if err != nil {
		return nil, nil
	}
	var doc mongoPost
	err = m.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post %s: %w", recordID, err)
	}
	return doc.stored(), nil
}

func (m *MongoStore) Close() error {
	return m.client.Disconnect(context.Background())
}
