package services

import (
	"bytes"
	"context"
	"fmt"

	"whatsapp-support/config"
	"whatsapp-support/internal/utils"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type S3Service struct {
	s3Client s3iface.S3API
	config   *config.S3Config
}

func NewS3Service(cfg *config.S3Config) (*S3Service, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("S3 não configurado")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(cfg.Region),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		Endpoint:         aws.String(cfg.ServiceUrl),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao criar sessão do S3: %v", err)
	}

	return &S3Service{
		s3Client: s3.New(sess),
		config:   cfg,
	}, nil
}

// UploadBytes grava o objeto no bucket e devolve a URL pública.
func (s *S3Service) UploadBytes(ctx context.Context, data []byte, fileName string, contentType string) (string, error) {
	utils.LogInfo("Iniciando upload para S3: %s", fileName)

	params := &s3.PutObjectInput{
		Bucket:      aws.String(s.config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}

	if _, err := s.s3Client.PutObjectWithContext(ctx, params); err != nil {
		return "", fmt.Errorf("erro ao fazer upload para S3: %v", err)
	}

	fileUrl := utils.JoinURL(s.config.BucketUrl, fileName)
	utils.LogInfo("Upload concluído: %s", fileUrl)
	return fileUrl, nil
}
