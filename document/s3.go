package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Source reads a document from an S3 object. The object is validated with
// a HeadObject call before download, so a bad key fails fast and the buffer
// can be sized up front.
type S3Source struct {
	client *s3.Client
	bucket string
	key    string
}

var _ Source = (*S3Source)(nil)

// NewS3Source wraps an S3 object as a Source.
func NewS3Source(client *s3.Client, bucket, key string) *S3Source {
	return &S3Source{client: client, bucket: bucket, key: key}
}

func (s *S3Source) Name() string {
	return path.Base(s.key)
}

func (s *S3Source) Fetch(ctx context.Context) (*Document, error) {
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("stat s3://%s/%s: %w", s.bucket, s.key, err)
	}

	obj, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer obj.Body.Close()

	buf := bytes.NewBuffer(make([]byte, 0, aws.ToInt64(head.ContentLength)))
	if _, err := io.Copy(buf, obj.Body); err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", s.bucket, s.key, err)
	}

	meta := map[string]string{
		"bucket": s.bucket,
		"key":    s.key,
	}
	if head.LastModified != nil {
		meta["modtime"] = strconv.FormatInt(head.LastModified.Unix(), 10)
	}
	return New(s.Name(), buf.Bytes(), meta), nil
}
