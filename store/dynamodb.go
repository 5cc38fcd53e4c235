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
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"

	tumblrimport "github.com/writeas/tumblr-import"
)

// dynamoPost is keyed by "tumblr-<id>", so a lookup is a single GetItem.
type dynamoPost struct {
	ID              string `dynamodbav:"id"`
	TumblrPostID    int64  `dynamodbav:"tumblr_post_id"`
	Status          string `dynamodbav:"post_status"`
	Type            string `dynamodbav:"post_type"`
	Title           string `dynamodbav:"post_title"`
	Content         string `dynamodbav:"post_content"`
	ContentFiltered string `dynamodbav:"post_content_filtered"`
	Date            string `dynamodbav:"post_date"`
	Modified        string `dynamodbav:"post_modified"`
	TumblrData      string `dynamodbav:"tumblr_data"`
}

// DynamoDBStore keeps posts in a DynamoDB table with a string hash key "id".
type DynamoDBStore struct {
	client    dynamodbiface.DynamoDBAPI
	tableName string
}

// NewDynamoDBStore creates the table if it doesn't exist. endpoint may point
// at DynamoDB Local.
func NewDynamoDBStore(region, endpoint, tableName string) (*DynamoDBStore, error) {
	if tableName == "" {
		tableName = "tumblr_posts"
	}
	awsConfig := &aws.Config{
		Region: aws.String(region),
	}
	if endpoint != "" {
		awsConfig.Endpoint = aws.String(endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	s := NewDynamoDBStoreWithClient(dynamodb.New(sess), tableName)
	if err := s.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure table exists: %w", err)
	}
	return s, nil
}

// NewDynamoDBStoreWithClient wraps an existing client. The table must exist.
func NewDynamoDBStoreWithClient(client dynamodbiface.DynamoDBAPI, tableName string) *DynamoDBStore {
	return &DynamoDBStore{client: client, tableName: tableName}
}

func (d *DynamoDBStore) ensureTable() error {
	_, err := d.client.DescribeTable(&dynamodb.DescribeTableInput{
		TableName: aws.String(d.tableName),
	})
	if err == nil {
		return nil
	}

	_, err = d.client.CreateTable(&dynamodb.CreateTableInput{
		TableName: aws.String(d.tableName),
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("id"),
				KeyType:       aws.String("HASH"),
			},
		},
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("id"),
				AttributeType: aws.String("S"),
			},
		},
		BillingMode: aws.String("PAY_PER_REQUEST"),
	})
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	return d.client.WaitUntilTableExists(&dynamodb.DescribeTableInput{
		TableName: aws.String(d.tableName),
	})
}

func (d *DynamoDBStore) getItem(ctx context.Context, key string) (*dynamoPost, error) {
	result, err := d.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]*dynamodb.AttributeValue{
			"id": {S: aws.String(key)},
		},
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, nil
	}
	var p dynamoPost
	if err := dynamodbattribute.UnmarshalMap(result.Item, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal post: %w", err)
	}
	return &p, nil
}

func (d *DynamoDBStore) LookupByExternalID(ctx context.Context, externalID int64) (string, bool, error) {
	p, err := d.getItem(ctx, recordKey(externalID))
	if err != nil {
		return "", false, fmt.Errorf("lookup tumblr post %d: %w", externalID, err)
	}
	if p == nil {
		return "", false, nil
	}
	return p.ID, true, nil
}

func (d *DynamoDBStore) Upsert(ctx context.Context, p *tumblrimport.TargetPost, existingID string) (string, error) {
	key := existingID
	if key == "" {
		key = recordKey(p.Meta.TumblrPostID)
	}

	item, err := dynamodbattribute.MarshalMap(dynamoPost{
		ID:              key,
		TumblrPostID:    p.Meta.TumblrPostID,
		Status:          p.Status,
		Type:            p.Type,
		Title:           p.Title,
		Content:         p.Content,
		ContentFiltered: p.ContentFiltered,
		Date:            p.Date,
		Modified:        p.Modified,
		TumblrData:      p.Meta.TumblrData,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal post %d: %w", p.Meta.TumblrPostID, err)
	}

	_, err = d.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store post %d: %w", p.Meta.TumblrPostID, err)
	}
	return key, nil
}

func (d *DynamoDBStore) GetPost(ctx context.Context, recordID string) (*tumblrimport.StoredPost, error) {
	if !strings.HasPrefix(recordID, "tumblr-") {
		return nil, nil
	}
	p, err := d.getItem(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("get post %s: %w", recordID, err)
	}
	if p == nil {
		return nil, nil
	}
	return &tumblrimport.StoredPost{
		ID: p.ID,
		TargetPost: tumblrimport.TargetPost{
			Status:          p.Status,
			Type:            p.Type,
			Title:           p.Title,
			Content:         p.Content,
			ContentFiltered: p.ContentFiltered,
			Date:            p.Date,
			Modified:        p.Modified,
			Meta: tumblrimport.PostMeta{
				TumblrData:   p.TumblrData,
				TumblrPostID: p.TumblrPostID,
			},
		},
	}, nil
}

// Close is a no-op; the DynamoDB client holds no connection.
func (d *DynamoDBStore) Close() error {
	return nil
}
