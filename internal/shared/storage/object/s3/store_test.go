package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"resume-builder/internal/shared/storage/object"
)

type fakeS3 struct {
	objects map[string][]byte
	lastPut *s3.PutObjectInput
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.lastPut = in
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestObjectKeyPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "owner/resume.pdf", want: "owner/resume.pdf"},
		{name: "simple prefix", prefix: "resumes", key: "owner/resume.pdf", want: "resumes/owner/resume.pdf"},
		{name: "prefix and key slashes", prefix: "/resumes/", key: "/owner/resume.pdf", want: "resumes/owner/resume.pdf"},
		{name: "empty key", prefix: "resumes", key: "", want: "resumes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(nil, "b", tt.prefix, "")
			if got := s.objectKey(tt.key); got != tt.want {
				t.Fatalf("objectKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestPutThenOpen(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	store := newStore(fake, "bucket", "pdfs", "")
	ctx := context.Background()

	obj, err := store.Put(ctx, "user-1", "resume.pdf", strings.NewReader("%PDF-1.7 body"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if obj.Size != int64(len("%PDF-1.7 body")) || obj.ContentType != "application/pdf" {
		t.Fatalf("unexpected object %+v", obj)
	}
	if got := aws.ToString(fake.lastPut.Key); got != "pdfs/"+obj.Key {
		t.Fatalf("expected prefixed key, got %q", got)
	}
	if fake.lastPut.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256 without a kms key, got %q", fake.lastPut.ServerSideEncryption)
	}

	rc, err := store.Open(ctx, obj.Key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "%PDF-1.7 body" {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestOpenMissingIsNotFound(t *testing.T) {
	store := newStore(&fakeS3{objects: map[string][]byte{}}, "bucket", "", "")
	if _, err := store.Open(context.Background(), "nope"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected object.ErrNotFound, got %v", err)
	}
}

func TestPutInputKMS(t *testing.T) {
	in := newStore(nil, "b", "", "key-1").putInput("k", "application/pdf", nil)
	if in.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(in.SSEKMSKeyId) != "key-1" {
		t.Fatalf("expected kms encryption, got %+v", in)
	}
}
