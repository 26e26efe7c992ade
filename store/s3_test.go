package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// fakeS3 is an in-memory s3API keyed by object key.
type fakeS3 struct {
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	prefix := aws.ToString(in.Prefix)
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{}
	for _, k := range keys {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func newTestS3() (*S3, *fakeS3) {
	fake := newFakeS3()
	return &S3{client: fake, bucket: "harvest", prefix: "cosecha/job-test"}, fake
}

func TestS3_PutGetRoundTrip(t *testing.T) {
	st, fake := newTestS3()
	ctx := context.Background()

	want := []byte("pdf-bytes")
	if err := st.Put(ctx, DocumentPath("1001_3_TOKAAAA1.pdf"), want); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if _, ok := fake.objects["cosecha/job-test/pdfs/1001_3_TOKAAAA1.pdf"]; !ok {
		t.Fatalf("object not stored under the job prefix; have %v", keysOf(fake))
	}

	got, err := st.Get(ctx, "pdfs/1001_3_TOKAAAA1.pdf")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("Get() = %q, want %q", got, want)
	}
}

func TestS3_GetMissing(t *testing.T) {
	st, _ := newTestS3()
	_, err := st.Get(context.Background(), "results/absent.json")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestS3_ListStripsJobPrefix(t *testing.T) {
	st, _ := newTestS3()
	ctx := context.Background()

	for _, p := range []string{
		DocumentPath("1001_3_TOKAAAA1.pdf"),
		ResultPath("report.json"),
	} {
		if err := st.Put(ctx, p, []byte("x")); err != nil {
			t.Fatalf("Put(%s) error = %v", p, err)
		}
	}

	all, err := st.List(ctx, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"pdfs/1001_3_TOKAAAA1.pdf", "results/report.json"}
	if len(all) != len(want) {
		t.Fatalf("List() = %v, want %v", all, want)
	}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, all[i], want[i])
		}
	}

	results, err := st.List(ctx, DirResults)
	if err != nil {
		t.Fatalf("List(results) error = %v", err)
	}
	if len(results) != 1 || results[0] != "results/report.json" {
		t.Errorf("List(results) = %v, want the report only", results)
	}
}

func TestS3Config_Validate(t *testing.T) {
	if err := (&S3Config{}).Validate(); err == nil {
		t.Error("Validate() without bucket should fail")
	}
	if err := (&S3Config{Bucket: "harvest"}).Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestParseS3Path(t *testing.T) {
	bucket, prefix := ParseS3Path("harvest/cosecha/jobs")
	if bucket != "harvest" || prefix != "cosecha/jobs" {
		t.Errorf("ParseS3Path() = (%q, %q), want (harvest, cosecha/jobs)", bucket, prefix)
	}
	bucket, prefix = ParseS3Path("harvest")
	if bucket != "harvest" || prefix != "" {
		t.Errorf("ParseS3Path() = (%q, %q), want (harvest, \"\")", bucket, prefix)
	}
}

func keysOf(f *fakeS3) []string {
	var keys []string
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
