// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package objectstorage is the admin client for the S3 compatible store:
// bucket and policy management plus tenant credential provisioning against
// the MinIO admin API.
package objectstorage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/minio/madmin-go/v3"
)

// S3API is the slice of the S3 API used by the operator. Satisfied by
// *s3.Client.
type S3API interface {
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	DeleteBucket(ctx context.Context, in *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)
	PutBucketPolicy(ctx context.Context, in *s3.PutBucketPolicyInput, optFns ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// AdminAPI is the slice of the MinIO admin API used by the operator.
// Satisfied by *madmin.AdminClient.
type AdminAPI interface {
	AddUser(ctx context.Context, accessKey, secretKey string) error
	RemoveUser(ctx context.Context, accessKey string) error
	AddCannedPolicy(ctx context.Context, policyName string, policy []byte) error
	RemoveCannedPolicy(ctx context.Context, policyName string) error
	SetPolicy(ctx context.Context, policyName, entityName string, isGroup bool) error
	SetBucketQuota(ctx context.Context, bucket string, quota *madmin.BucketQuota) error
}

// Client performs bucket and tenant management against the object store.
type Client struct {
	s3    S3API
	admin AdminAPI
}

// New connects to the object store at endpoint with the root credentials.
func New(endpoint, accessKey, secretKey string) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing object store endpoint %q: %w", endpoint, err)
	}

	s3Client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
	})

	adminClient, err := madmin.New(u.Host, accessKey, secretKey, u.Scheme == "https")
	if err != nil {
		return nil, fmt.Errorf("creating object store admin client: %w", err)
	}

	return &Client{s3: s3Client, admin: adminClient}, nil
}

// NewFromAPIs wraps existing API implementations. Used by tests.
func NewFromAPIs(s3api S3API, admin AdminAPI) *Client {
	return &Client{s3: s3api, admin: admin}
}

// EnsureBucket creates the bucket if it does not exist yet.
func (c *Client) EnsureBucket(ctx context.Context, name string) error {
	_, err := c.s3.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(name)})
	var owned *types.BucketAlreadyOwnedByYou
	var exists *types.BucketAlreadyExists
	if errors.As(err, &owned) || errors.As(err, &exists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating bucket %q: %w", name, err)
	}
	return nil
}

// EnsurePublicBucket creates the bucket and opens it for anonymous
// download.
func (c *Client) EnsurePublicBucket(ctx context.Context, name string) error {
	if err := c.EnsureBucket(ctx, name); err != nil {
		return err
	}
	policy, err := PublicReadPolicy(name).JSON()
	if err != nil {
		return fmt.Errorf("rendering public policy for %q: %w", name, err)
	}
	_, err = c.s3.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(name),
		Policy: aws.String(string(policy)),
	})
	if err != nil {
		return fmt.Errorf("opening bucket %q for download: %w", name, err)
	}
	return nil
}

// ApplyBucketPolicy installs the given policy document on the bucket.
func (c *Client) ApplyBucketPolicy(ctx context.Context, bucket string, policy Policy) error {
	document, err := policy.JSON()
	if err != nil {
		return fmt.Errorf("rendering policy for %q: %w", bucket, err)
	}
	_, err = c.s3.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(bucket),
		Policy: aws.String(string(document)),
	})
	if err != nil {
		return fmt.Errorf("applying policy to bucket %q: %w", bucket, err)
	}
	return nil
}

// ForceRemoveBucket deletes all objects in the bucket and then the bucket
// itself. A bucket that is already gone is tolerated.
func (c *Client) ForceRemoveBucket(ctx context.Context, name string) error {
	var continuation *string
	for {
		page, err := c.s3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(name),
			ContinuationToken: continuation,
		})
		if isNoSuchBucket(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("listing bucket %q: %w", name, err)
		}

		if len(page.Contents) > 0 {
			identifiers := make([]types.ObjectIdentifier, 0, len(page.Contents))
			for _, object := range page.Contents {
				identifiers = append(identifiers, types.ObjectIdentifier{Key: object.Key})
			}
			_, err = c.s3.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(name),
				Delete: &types.Delete{Objects: identifiers, Quiet: aws.Bool(true)},
			})
			if err != nil {
				return fmt.Errorf("emptying bucket %q: %w", name, err)
			}
		}

		if page.IsTruncated == nil || !*page.IsTruncated {
			break
		}
		continuation = page.NextContinuationToken
	}

	if _, err := c.s3.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(name)}); err != nil && !isNoSuchBucket(err) {
		return fmt.Errorf("deleting bucket %q: %w", name, err)
	}
	return nil
}

// UploadContent stores body under key, guessing the content type from the
// key's extension.
func (c *Client) UploadContent(ctx context.Context, bucket, key string, body []byte) error {
	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("uploading %q to bucket %q: %w", key, bucket, err)
	}
	return nil
}

// AddUser creates a tenant credential on the store. An existing credential
// is overwritten, which rotates its secret.
func (c *Client) AddUser(ctx context.Context, username, secretKey string) error {
	if err := c.admin.AddUser(ctx, username, secretKey); err != nil {
		return fmt.Errorf("creating store user %q: %w", username, err)
	}
	return nil
}

// GrantReadWrite attaches a canned policy named after the user that grants
// full access to the given buckets.
func (c *Client) GrantReadWrite(ctx context.Context, username string, buckets ...string) error {
	policy, err := ReadWritePolicy(buckets...).JSON()
	if err != nil {
		return fmt.Errorf("rendering policy for %q: %w", username, err)
	}
	if err := c.admin.AddCannedPolicy(ctx, username, policy); err != nil {
		return fmt.Errorf("registering policy %q: %w", username, err)
	}
	if err := c.admin.SetPolicy(ctx, username, username, false); err != nil {
		return fmt.Errorf("attaching policy %q: %w", username, err)
	}
	return nil
}

// RemoveUser deletes the tenant credential and its canned policy. Objects
// that are already gone are tolerated.
func (c *Client) RemoveUser(ctx context.Context, username string) error {
	if err := c.admin.RemoveCannedPolicy(ctx, username); ignoreMissing(err) != nil {
		return fmt.Errorf("removing policy %q: %w", username, err)
	}
	if err := c.admin.RemoveUser(ctx, username); ignoreMissing(err) != nil {
		return fmt.Errorf("removing store user %q: %w", username, err)
	}
	return nil
}

// SetBucketQuota places a hard size limit on the bucket.
func (c *Client) SetBucketQuota(ctx context.Context, bucket string, megabytes uint64) error {
	quota := &madmin.BucketQuota{Quota: megabytes << 20, Type: madmin.HardQuota}
	if err := c.admin.SetBucketQuota(ctx, bucket, quota); err != nil {
		return fmt.Errorf("setting quota on bucket %q: %w", bucket, err)
	}
	return nil
}

func isNoSuchBucket(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchBucket"
}

func ignoreMissing(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "does not exist") || strings.Contains(msg, "not found") {
		return nil
	}
	return err
}
