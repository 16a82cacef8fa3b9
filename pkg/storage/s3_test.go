package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/opsdesk/pkg/storage"
)

type fakeS3 struct {
	objects map[string]string
	puts    []string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]string)}
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*params.Key] = string(data)
	f.puts = append(f.puts, *params.Key)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*params.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func newS3Store(t *testing.T, client storage.S3Client) *storage.S3 {
	t.Helper()

	store, err := storage.NewS3(context.Background(), storage.S3Config{
		Bucket: "attachments",
		Region: "eu-west-1",
	}, storage.WithS3Client(client))
	require.NoError(t, err)
	return store
}

func TestNewS3_RequiresBucketAndRegion(t *testing.T) {
	t.Parallel()

	_, err := storage.NewS3(context.Background(), storage.S3Config{Region: "eu-west-1"},
		storage.WithS3Client(newFakeS3()))
	assert.ErrorIs(t, err, storage.ErrInvalidConfig)

	_, err = storage.NewS3(context.Background(), storage.S3Config{Bucket: "attachments"},
		storage.WithS3Client(newFakeS3()))
	assert.ErrorIs(t, err, storage.ErrInvalidConfig)
}

func TestS3_RoundTrip(t *testing.T) {
	t.Parallel()

	fake := newFakeS3()
	store := newS3Store(t, fake)
	ctx := context.Background()

	key := "tickets/t1/trace.log"
	require.NoError(t, store.Put(ctx, key, strings.NewReader("stack"), "text/plain"))
	assert.Equal(t, []string{key}, fake.puts)

	r, err := store.Get(ctx, key)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "stack", string(data))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestS3_URLDefaults(t *testing.T) {
	t.Parallel()

	store := newS3Store(t, newFakeS3())
	assert.Equal(t,
		"https://attachments.s3.eu-west-1.amazonaws.com/tickets/t1/a.png",
		store.URL("tickets/t1/a.png"))

	endpointStore, err := storage.NewS3(context.Background(), storage.S3Config{
		Bucket:   "attachments",
		Region:   "us-east-1",
		Endpoint: "http://minio:9000/",
	}, storage.WithS3Client(newFakeS3()))
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/attachments/a.png", endpointStore.URL("a.png"))
}

func TestS3_RejectsInvalidKeys(t *testing.T) {
	t.Parallel()

	store := newS3Store(t, newFakeS3())
	err := store.Put(context.Background(), "../escape", strings.NewReader("x"), "")
	assert.ErrorIs(t, err, storage.ErrInvalidKey)
}
