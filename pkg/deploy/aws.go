package deploy

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/riftlang/rift/pkg/errdefs"
	"github.com/riftlang/rift/pkg/telemetry"
)

// ObjectUploader is the slice of the S3 client the aws sink needs.
type ObjectUploader interface {
	PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type awsSink struct {
	logger      *telemetry.Logger
	newUploader func(config map[string]string) (ObjectUploader, error)
}

func newAWSSink(logger *telemetry.Logger) *awsSink {
	return &awsSink{
		logger:      logger.WithSink("aws"),
		newUploader: newS3Client,
	}
}

// newS3Client builds an S3-compatible client from sink config. Credentials
// come from config keys when present, else from the standard AWS
// environment variables.
func newS3Client(config map[string]string) (ObjectUploader, error) {
	endpoint := config["endpoint"]
	if endpoint == "" {
		endpoint = "s3.amazonaws.com"
	}

	creds := credentials.NewEnvAWS()
	if config["access_key"] != "" && config["secret_key"] != "" {
		creds = credentials.NewStaticV4(config["access_key"], config["secret_key"], "")
	}

	return minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: config["insecure"] != "true",
		Region: config["region"],
	})
}

func (s *awsSink) Name() string { return "aws" }

func (s *awsSink) Validate(config map[string]string) error {
	for _, key := range []string{"region", "bucket", "function", "role"} {
		if config[key] == "" {
			return errdefs.NewDeployConfigMissing("aws", key)
		}
	}
	return nil
}

// Deploy uploads the payload as <function>.zip into the configured bucket
// and announces the function wiring.
func (s *awsSink) Deploy(ctx context.Context, payload []byte, config map[string]string) error {
	uploader, err := s.newUploader(config)
	if err != nil {
		return errdefs.NewDeployFailed("aws", err)
	}

	key := config["function"] + ".zip"
	_, err = uploader.PutObject(ctx, config["bucket"], key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/zip",
	})
	if err != nil {
		return errdefs.NewDeployFailed("aws", err)
	}

	s.logger.Infof("uploaded %s to bucket %s for function %s with role %s", key, config["bucket"], config["function"], config["role"])
	return nil
}
