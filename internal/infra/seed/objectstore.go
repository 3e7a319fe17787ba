package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"gopkg.in/yaml.v3"

	"github.com/yanqian/smart-faq/internal/domain/faq"
)

// ObjectStoreOptions locates the corpus document in S3-compatible storage.
type ObjectStoreOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	ObjectKey string
}

// ObjectStoreSource reads a YAML list of FAQs from an S3-compatible bucket (R2, MinIO, S3).
type ObjectStoreSource struct {
	client *minio.Client
	bucket string
	key    string
	logger *slog.Logger
}

type corpusEntry struct {
	ID       string `yaml:"id"`
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
	Category string `yaml:"category"`
}

// NewObjectStoreSource constructs the source.
func NewObjectStoreSource(opts ObjectStoreOptions, logger *slog.Logger) (*ObjectStoreSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Bucket == "" || opts.ObjectKey == "" {
		return nil, fmt.Errorf("seed bucket and object key are required")
	}
	useSSL := strings.HasPrefix(strings.ToLower(strings.TrimSpace(opts.Endpoint)), "https")
	client, err := minio.New(sanitizeEndpoint(opts.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure:       useSSL,
		Region:       opts.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	return &ObjectStoreSource{
		client: client,
		bucket: opts.Bucket,
		key:    opts.ObjectKey,
		logger: logger.With("component", "seed.objectstore"),
	}, nil
}

// Load downloads and parses the corpus document.
func (s *ObjectStoreSource) Load(ctx context.Context) ([]faq.FAQ, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", s.bucket, s.key, err)
	}
	defer obj.Close()
	if _, err := obj.Stat(); err != nil {
		return nil, fmt.Errorf("stat %s/%s: %w", s.bucket, s.key, err)
	}
	items, err := parseCorpus(obj)
	if err != nil {
		return nil, err
	}
	s.logger.Info("seed corpus downloaded", "bucket", s.bucket, "key", s.key, "count", len(items))
	return items, nil
}

func parseCorpus(r io.Reader) ([]faq.FAQ, error) {
	var entries []corpusEntry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		if err == io.EOF {
			return []faq.FAQ{}, nil
		}
		return nil, fmt.Errorf("decode seed corpus: %w", err)
	}
	items := make([]faq.FAQ, 0, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.ID) == "" {
			return nil, fmt.Errorf("seed corpus entry %d has no id", i)
		}
		items = append(items, faq.FAQ{ID: e.ID, Question: e.Question, Answer: e.Answer, Category: e.Category})
	}
	return items, nil
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if host, _, found := strings.Cut(raw, "/"); found {
		raw = host
	}
	return raw
}

var _ faq.SeedSource = (*ObjectStoreSource)(nil)
