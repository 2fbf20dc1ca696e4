package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingUploader struct {
	inputs []*s3.PutObjectInput
	bodies []string
}

func (u *recordingUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	b, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	u.inputs = append(u.inputs, input)
	u.bodies = append(u.bodies, string(b))
	return &manager.UploadOutput{}, nil
}

func TestContentTypeForFilename(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentTypeForFilename("1_image_0.jpg"))
	assert.Equal(t, "video/mp4", ContentTypeForFilename("1_video_0.MP4"))
	assert.Equal(t, "application/json", ContentTypeForFilename("metadata.json"))
	assert.Equal(t, "application/octet-stream", ContentTypeForFilename("notes"))
}

func TestS3_UploadFile(t *testing.T) {
	up := &recordingUploader{}
	s := NewS3WithUploader(up, S3Config{Region: "eu-west-1", Bucket: "ads", Prefix: "batches"}, nil)

	local := filepath.Join(t.TempDir(), "1_image_0.jpg")
	require.NoError(t, os.WriteFile(local, []byte("img"), 0o644))

	key := s.BatchKey("batch-1", "1_image_0.jpg")
	assert.Equal(t, "batches/batch-1/1_image_0.jpg", key)

	url, err := s.UploadFile(context.Background(), key, local)
	require.NoError(t, err)
	assert.Equal(t, "https://ads.s3.eu-west-1.amazonaws.com/batches/batch-1/1_image_0.jpg", url)

	require.Len(t, up.inputs, 1)
	in := up.inputs[0]
	assert.Equal(t, "ads", aws.ToString(in.Bucket))
	assert.Equal(t, "image/jpeg", aws.ToString(in.ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(in.ContentLength))
	assert.Equal(t, "img", up.bodies[0])
}

func TestS3_UploadFileMissing(t *testing.T) {
	s := NewS3WithUploader(&recordingUploader{}, S3Config{Bucket: "ads"}, nil)
	_, err := s.UploadFile(context.Background(), "k", filepath.Join(t.TempDir(), "nope.jpg"))
	assert.Error(t, err)
}
