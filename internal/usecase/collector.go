package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/devlens-io/devlens/internal/domain"
	"github.com/devlens-io/devlens/internal/gateway"
)

// BatchEmbedder generates vectors for a batch of texts in one provider call.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ActivitySink persists raw records for later analysis. Writes are upserts
// keyed by the record's natural identity so re-collection is idempotent.
type ActivitySink interface {
	UpsertRecords(ctx context.Context, subject string, records []domain.RawRecord) error
}

// Collector is the ingestion use case: it pulls a subject's activity from
// the hosting platform, attaches embeddings, and stores the records for the
// analyzer to query.
type Collector struct {
	fetcher  gateway.Fetcher
	embedder BatchEmbedder
	sink     ActivitySink
	logger   *log.Logger
}

// NewCollector creates a new Collector instance.
func NewCollector(fetcher gateway.Fetcher, embedder BatchEmbedder, sink ActivitySink, logger *log.Logger) *Collector {
	return &Collector{
		fetcher:  fetcher,
		embedder: embedder,
		sink:     sink,
		logger:   logger,
	}
}

// Collect fetches all record shapes concurrently, embeds their text, and
// upserts them. It returns the number of records stored.
func (c *Collector) Collect(ctx context.Context, subject string) (int, error) {
	c.logger.Printf("Usecase: starting collection for %q", subject)

	var pullRequests, issues, comments, repositories []domain.RawRecord

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		pullRequests, err = c.fetcher.FetchPullRequests(egCtx, subject)
		return err
	})
	eg.Go(func() error {
		var err error
		issues, err = c.fetcher.FetchIssues(egCtx, subject)
		return err
	})
	eg.Go(func() error {
		var err error
		comments, err = c.fetcher.FetchComments(egCtx, subject)
		return err
	})
	eg.Go(func() error {
		var err error
		repositories, err = c.fetcher.FetchCreatedRepositories(egCtx, subject)
		return err
	})
	if err := eg.Wait(); err != nil {
		return 0, fmt.Errorf("fetch activity for %q: %w", subject, err)
	}

	records := make([]domain.RawRecord, 0, len(pullRequests)+len(issues)+len(comments)+len(repositories))
	records = append(records, pullRequests...)
	records = append(records, issues...)
	records = append(records, comments...)
	records = append(records, repositories...)
	c.logger.Printf("Usecase: fetched %d records (%d PRs, %d issues, %d comments, %d repositories)",
		len(records), len(pullRequests), len(issues), len(comments), len(repositories))

	if len(records) == 0 {
		return 0, nil
	}

	if err := c.embedRecords(ctx, records); err != nil {
		return 0, fmt.Errorf("embed records: %w", err)
	}

	if err := c.sink.UpsertRecords(ctx, subject, records); err != nil {
		return 0, fmt.Errorf("store records for %q: %w", subject, err)
	}

	c.logger.Printf("Usecase: collection complete, %d records stored", len(records))
	return len(records), nil
}

// embedBatchSize keeps provider requests comfortably under payload limits.
const embedBatchSize = 64

func (c *Collector) embedRecords(ctx context.Context, records []domain.RawRecord) error {
	for start := 0; start < len(records); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(records) {
			end = len(records)
		}

		texts := make([]string, 0, end-start)
		for _, rec := range records[start:end] {
			texts = append(texts, EmbeddingText(rec))
		}

		vectors, err := c.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return err
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embedding batch size mismatch: sent %d texts, got %d vectors", len(texts), len(vectors))
		}
		for i := range vectors {
			records[start+i].Embedding = vectors[i]
		}
	}
	return nil
}

// EmbeddingText builds the text a record is embedded under: its type and
// repository for context plus whatever title and body it carries. Body
// cleaning beyond whitespace trimming happens upstream.
func EmbeddingText(rec domain.RawRecord) string {
	parts := []string{rec.RecordType, rec.RepoName}
	if rec.Title != "" {
		parts = append(parts, rec.Title)
	}
	if body := strings.TrimSpace(rec.Body); body != "" {
		parts = append(parts, body)
	}
	return strings.Join(parts, " ")
}
