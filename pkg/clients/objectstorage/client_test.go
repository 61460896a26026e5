// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package objectstorage_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/minio/madmin-go/v3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nuvolaris/nuvolaris-operator/pkg/clients/objectstorage"
)

func TestObjectStorage(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Object Storage Client Suite")
}

type fakeS3 struct {
	calls        []string
	createErr    error
	missing      map[string]bool
	objects      map[string][]string
	lastPolicy   string
	lastMimetype string
}

func (f *fakeS3) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeS3) CreateBucket(_ context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.record("create-bucket %s", *in.Bucket)
	return &s3.CreateBucketOutput{}, f.createErr
}

func (f *fakeS3) DeleteBucket(_ context.Context, in *s3.DeleteBucketInput, _ ...func(*s3.Options)) (*s3.DeleteBucketOutput, error) {
	f.record("delete-bucket %s", *in.Bucket)
	if f.missing[*in.Bucket] {
		return nil, &smithy.GenericAPIError{Code: "NoSuchBucket"}
	}
	return &s3.DeleteBucketOutput{}, nil
}

func (f *fakeS3) PutBucketPolicy(_ context.Context, in *s3.PutBucketPolicyInput, _ ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error) {
	f.record("put-bucket-policy %s", *in.Bucket)
	f.lastPolicy = *in.Policy
	return &s3.PutBucketPolicyOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.record("list-objects %s", *in.Bucket)
	if f.missing[*in.Bucket] {
		return nil, &smithy.GenericAPIError{Code: "NoSuchBucket"}
	}
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, key := range f.objects[*in.Bucket] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
	}
	return out, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	for _, object := range in.Delete.Objects {
		f.record("delete-object %s/%s", *in.Bucket, *object.Key)
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.record("put-object %s/%s", *in.Bucket, *in.Key)
	f.lastMimetype = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

type fakeAdmin struct {
	calls      []string
	failures   map[string]error
	lastPolicy string
	lastQuota  *madmin.BucketQuota
}

func (f *fakeAdmin) record(format string, args ...any) error {
	call := fmt.Sprintf(format, args...)
	f.calls = append(f.calls, call)
	return f.failures[call]
}

func (f *fakeAdmin) AddUser(_ context.Context, accessKey, _ string) error {
	return f.record("add-user %s", accessKey)
}

func (f *fakeAdmin) RemoveUser(_ context.Context, accessKey string) error {
	return f.record("remove-user %s", accessKey)
}

func (f *fakeAdmin) AddCannedPolicy(_ context.Context, policyName string, policy []byte) error {
	f.lastPolicy = string(policy)
	return f.record("add-policy %s", policyName)
}

func (f *fakeAdmin) RemoveCannedPolicy(_ context.Context, policyName string) error {
	return f.record("remove-policy %s", policyName)
}

func (f *fakeAdmin) SetPolicy(_ context.Context, policyName, entityName string, isGroup bool) error {
	return f.record("set-policy %s %s group=%t", policyName, entityName, isGroup)
}

func (f *fakeAdmin) SetBucketQuota(_ context.Context, bucket string, quota *madmin.BucketQuota) error {
	f.lastQuota = quota
	return f.record("set-bucket-quota %s", bucket)
}

var _ = Describe("Client", func() {
	var (
		s3api  *fakeS3
		admin  *fakeAdmin
		client *objectstorage.Client
		ctx    context.Context
	)

	BeforeEach(func() {
		s3api = &fakeS3{missing: map[string]bool{}, objects: map[string][]string{}}
		admin = &fakeAdmin{failures: map[string]error{}}
		client = objectstorage.NewFromAPIs(s3api, admin)
		ctx = context.Background()
	})

	Describe("EnsureBucket", func() {
		It("creates the bucket", func() {
			Expect(client.EnsureBucket(ctx, "alice-data")).To(Succeed())
			Expect(s3api.calls).To(Equal([]string{"create-bucket alice-data"}))
		})

		It("converges when the bucket is already owned", func() {
			s3api.createErr = &types.BucketAlreadyOwnedByYou{}
			Expect(client.EnsureBucket(ctx, "alice-data")).To(Succeed())
		})
	})

	Describe("EnsurePublicBucket", func() {
		It("opens the bucket for anonymous download", func() {
			Expect(client.EnsurePublicBucket(ctx, "alice-web")).To(Succeed())

			Expect(s3api.calls).To(Equal([]string{
				"create-bucket alice-web",
				"put-bucket-policy alice-web",
			}))
			Expect(s3api.lastPolicy).To(MatchJSON(`{
				"Version": "2012-10-17",
				"Statement": [{
					"Resource": ["arn:aws:s3:::alice-web/*", "arn:aws:s3:::alice-web"],
					"Action": "s3:GetObject",
					"Effect": "Allow",
					"Principal": "*"
				}]
			}`))
		})
	})

	Describe("ForceRemoveBucket", func() {
		It("empties the bucket before deleting it", func() {
			s3api.objects["alice-data"] = []string{"a.txt", "b.txt"}

			Expect(client.ForceRemoveBucket(ctx, "alice-data")).To(Succeed())
			Expect(s3api.calls).To(Equal([]string{
				"list-objects alice-data",
				"delete-object alice-data/a.txt",
				"delete-object alice-data/b.txt",
				"delete-bucket alice-data",
			}))
		})

		It("tolerates a bucket that is already gone", func() {
			s3api.missing["alice-data"] = true
			Expect(client.ForceRemoveBucket(ctx, "alice-data")).To(Succeed())
		})
	})

	Describe("UploadContent", func() {
		It("guesses the content type from the key", func() {
			Expect(client.UploadContent(ctx, "alice-web", "index.html", []byte("<html/>"))).To(Succeed())
			Expect(s3api.calls).To(Equal([]string{"put-object alice-web/index.html"}))
			Expect(s3api.lastMimetype).To(HavePrefix("text/html"))
		})

		It("falls back to an opaque content type", func() {
			Expect(client.UploadContent(ctx, "alice-data", "blob", []byte{0x1})).To(Succeed())
			Expect(s3api.lastMimetype).To(Equal("application/octet-stream"))
		})
	})

	Describe("GrantReadWrite", func() {
		It("registers and attaches a canned policy named after the user", func() {
			Expect(client.GrantReadWrite(ctx, "alice", "alice-data", "alice-web")).To(Succeed())

			Expect(admin.calls).To(Equal([]string{
				"add-policy alice",
				"set-policy alice alice group=false",
			}))
			Expect(admin.lastPolicy).To(MatchJSON(`{
				"Version": "2012-10-17",
				"Statement": [{
					"Resource": [
						"arn:aws:s3:::alice-data/*", "arn:aws:s3:::alice-data",
						"arn:aws:s3:::alice-web/*", "arn:aws:s3:::alice-web"
					],
					"Action": "s3:*",
					"Effect": "Allow"
				}]
			}`))
		})
	})

	Describe("RemoveUser", func() {
		It("drops the policy and the credential", func() {
			Expect(client.RemoveUser(ctx, "alice")).To(Succeed())
			Expect(admin.calls).To(Equal([]string{
				"remove-policy alice",
				"remove-user alice",
			}))
		})

		It("tolerates a user that is already gone", func() {
			admin.failures["remove-policy alice"] = fmt.Errorf("policy does not exist")
			admin.failures["remove-user alice"] = fmt.Errorf("user not found")
			Expect(client.RemoveUser(ctx, "alice")).To(Succeed())
		})
	})

	Describe("SetBucketQuota", func() {
		It("places a hard limit in bytes", func() {
			Expect(client.SetBucketQuota(ctx, "alice-data", 150)).To(Succeed())
			Expect(admin.calls).To(Equal([]string{"set-bucket-quota alice-data"}))
			Expect(admin.lastQuota.Quota).To(Equal(uint64(150 << 20)))
			Expect(admin.lastQuota.Type).To(Equal(madmin.HardQuota))
		})
	})
})
