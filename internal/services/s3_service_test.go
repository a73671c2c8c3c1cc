package services

import (
	"context"
	"errors"
	"io"
	"testing"

	"whatsapp-support/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = input
	f.body, _ = io.ReadAll(input.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestNewS3ServiceRequiresCredentials(t *testing.T) {
	_, err := NewS3Service(&config.S3Config{BucketName: "anexos"})
	assert.Error(t, err)
}

func TestUploadBytes(t *testing.T) {
	client := &fakeS3{}
	svc := &S3Service{
		s3Client: client,
		config:   &config.S3Config{BucketName: "anexos", BucketUrl: "https://anexos.s3.amazonaws.com/"},
	}

	url, err := svc.UploadBytes(context.Background(), []byte("conteudo"), "attendances/a1/f.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://anexos.s3.amazonaws.com/attendances/a1/f.png", url)
	assert.Equal(t, "anexos", aws.StringValue(client.input.Bucket))
	assert.Equal(t, "image/png", aws.StringValue(client.input.ContentType))
	assert.Equal(t, []byte("conteudo"), client.body)

	client.err = errors.New("access denied")
	_, err = svc.UploadBytes(context.Background(), []byte("x"), "k", "text/plain")
	assert.ErrorContains(t, err, "access denied")
}
