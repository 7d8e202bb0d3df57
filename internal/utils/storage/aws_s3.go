package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"lifecycle/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var AllowReport = []string{"text/csv"}

type (
	AwsS3 interface {
		PutObject(ctx context.Context, objectKey string, body []byte, contentType string) error
		// PresignGetObject returns a download link that stops working after
		// expires.
		PresignGetObject(ctx context.Context, objectKey string, expires time.Duration) (string, error)
	}

	awsS3 struct {
		client  *s3.Client
		presign *s3.PresignClient
		bucket  string
	}
)

func NewAwsS3() AwsS3 {
	bucket := utils.GetConfig("AWS_S3_BUCKET")
	region := utils.GetConfig("AWS_S3_REGION")

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			utils.GetConfig("AWS_ACCESS_KEY"),
			utils.GetConfig("AWS_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		logrus.WithError(err).Error("failed to load AWS config")
	}

	client := s3.NewFromConfig(cfg)
	return &awsS3{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
	}
}

func (a *awsS3) PutObject(ctx context.Context, objectKey string, body []byte, contentType string) error {
	if !allowed(contentType, AllowReport) {
		return fmt.Errorf("content type %q not allowed", contentType)
	}
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return errors.Wrapf(err, "put s3 object %s", objectKey)
	}
	return nil
}

func (a *awsS3) PresignGetObject(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	req, err := a.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", errors.Wrapf(err, "presign s3 object %s", objectKey)
	}
	return req.URL, nil
}

func allowed(contentType string, list []string) bool {
	for _, c := range list {
		if strings.EqualFold(c, contentType) {
			return true
		}
	}
	return false
}
