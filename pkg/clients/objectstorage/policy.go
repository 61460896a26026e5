// SPDX-FileCopyrightText: The Nuvolaris Authors
//
// SPDX-License-Identifier: Apache-2.0

package objectstorage

import (
	"encoding/json"
	"fmt"
)

// Policy is an S3 access policy document.
type Policy struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// Statement is a single policy statement. Principal is either the literal
// "*" or an AWSPrincipal, and stays empty in canned policies attached to a
// user.
type Statement struct {
	Resource  []string `json:"Resource"`
	Action    string   `json:"Action"`
	Effect    string   `json:"Effect"`
	Principal any      `json:"Principal,omitempty"`
}

// AWSPrincipal names one or more IAM principals by ARN.
type AWSPrincipal struct {
	AWS []string `json:"AWS"`
}

const policyVersion = "2012-10-17"

// JSON renders the policy document.
func (p Policy) JSON() ([]byte, error) {
	return json.Marshal(p)
}

func bucketResources(bucket string) []string {
	return []string{
		fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
		fmt.Sprintf("arn:aws:s3:::%s", bucket),
	}
}

// PublicReadPolicy grants anonymous download access to everything in the
// bucket. Applied as a bucket policy on web buckets.
func PublicReadPolicy(bucket string) Policy {
	return Policy{
		Version: policyVersion,
		Statement: []Statement{{
			Resource:  bucketResources(bucket),
			Action:    "s3:GetObject",
			Effect:    "Allow",
			Principal: "*",
		}},
	}
}

// OwnerReadWritePolicy grants one IAM principal full access to the bucket.
// Applied as a bucket policy on claim-provisioned stores, which have no
// canned policy API.
func OwnerReadWritePolicy(bucket, ownerARN string) Policy {
	return Policy{
		Version:   policyVersion,
		Statement: []Statement{ownerStatement(bucket, ownerARN)},
	}
}

// OwnerWebPolicy grants the owner full access and everyone else download
// plus listing. Listing is included so a missing object answers 404 instead
// of 403.
func OwnerWebPolicy(bucket, ownerARN string) Policy {
	return Policy{
		Version: policyVersion,
		Statement: []Statement{
			ownerStatement(bucket, ownerARN),
			{
				Resource:  []string{fmt.Sprintf("arn:aws:s3:::%s/*", bucket)},
				Action:    "s3:GetObject",
				Effect:    "Allow",
				Principal: "*",
			},
			{
				Resource:  []string{fmt.Sprintf("arn:aws:s3:::%s", bucket)},
				Action:    "s3:ListBucket",
				Effect:    "Allow",
				Principal: "*",
			},
		},
	}
}

func ownerStatement(bucket, ownerARN string) Statement {
	return Statement{
		Resource:  bucketResources(bucket),
		Action:    "s3:*",
		Effect:    "Allow",
		Principal: AWSPrincipal{AWS: []string{ownerARN}},
	}
}

// ReadWritePolicy grants full access to the given buckets. Attached to a
// tenant user as a canned policy, so it carries no principal.
func ReadWritePolicy(buckets ...string) Policy {
	var resources []string
	for _, bucket := range buckets {
		resources = append(resources, bucketResources(bucket)...)
	}
	return Policy{
		Version: policyVersion,
		Statement: []Statement{{
			Resource: resources,
			Action:   "s3:*",
			Effect:   "Allow",
		}},
	}
}
