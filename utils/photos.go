// utils/photos.go
package utils

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var photoClient *s3.Client
var photoBucket string
var photoCDNBase string

// InitPhotoStore configures the R2-backed bucket that holds report and
// bin-verification photos.
func InitPhotoStore() error {
	accountID := os.Getenv("CLOUDFLARE_ACCOUNT_ID")
	accessKeyID := os.Getenv("R2_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("R2_ACCESS_KEY_SECRET")
	photoBucket = os.Getenv("R2_BUCKET_NAME")
	photoCDNBase = os.Getenv("CDN_BASE_URL")
	if photoCDNBase == "" {
		photoCDNBase = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
		config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
				}, nil
			}),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to load photo store config: %w", err)
	}

	photoClient = s3.NewFromConfig(cfg)
	return nil
}

// UploadPhotoBytes stores an already-read image under the given prefix
// ("reports" or "verifications") and returns its public URL.
func UploadPhotoBytes(ctx context.Context, prefix string, data []byte, contentType string) (string, error) {
	key := path.Join(prefix, uuid.NewString()+extForContentType(contentType))

	_, err := photoClient.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(photoBucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	return fmt.Sprintf("%s/%s", photoCDNBase, key), nil
}

// ReadPhoto pulls the bytes and content type out of a multipart upload.
func ReadPhoto(fileHeader *multipart.FileHeader) ([]byte, string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open photo: %w", err)
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(file); err != nil {
		return nil, "", fmt.Errorf("failed to read photo: %w", err)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return buf.Bytes(), contentType, nil
}

func extForContentType(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
