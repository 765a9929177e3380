package ingest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tinyrobots/robot-archive-bot/internal/models"
	"github.com/tinyrobots/robot-archive-bot/internal/scribe"
	"github.com/tinyrobots/robot-archive-bot/internal/store"
	"github.com/tinyrobots/robot-archive-bot/internal/upstream"
)

// Ingestor coordinates fetching posts from the upstream API and scribing
// them into the store.
type Ingestor struct {
	client  upstream.Client
	store   store.Store
	scriber *scribe.Scriber
	verbose bool
}

// NewIngestor creates a new Ingestor.
func NewIngestor(client upstream.Client, st store.Store, verbose bool) *Ingestor {
	return &Ingestor{
		client:  client,
		store:   st,
		scriber: scribe.NewScriber(st, verbose),
		verbose: verbose,
	}
}

// FetchAll retrieves the posts with the given ids and scribes each one,
// returning the identities of all newly archived robots. Ids already present
// in the store are dropped up front. A positive batchSize bounds how many
// ids are in flight at once: each batch is fully fetched and persisted
// before the next begins.
func (ing *Ingestor) FetchAll(ctx context.Context, ids []uint64, batchSize int) ([]models.Identity, error) {
	ids = dedupeSorted(ids)

	known, err := ing.store.ExistingPostIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	unknown := ids[:0:len(ids)]
	for _, id := range ids {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}

	logrus.Debugf("Fetching %d posts (%d already archived)", len(unknown), len(ids)-len(unknown))

	if batchSize <= 0 {
		return ing.fetchAndScribe(ctx, unknown)
	}

	var idents []models.Identity
	for start := 0; start < len(unknown); start += batchSize {
		end := start + batchSize
		if end > len(unknown) {
			end = len(unknown)
		}

		got, err := ing.fetchAndScribe(ctx, unknown[start:end])
		if err != nil {
			return nil, err
		}
		idents = append(idents, got...)
	}

	return idents, nil
}

// fetchAndScribe splits the ids into chunks of the upstream per-call
// maximum, fetches the chunks concurrently and scribes each chunk's posts as
// soon as they arrive. Any chunk failure fails the whole call; records
// committed by other chunks before the failure stay committed and are safe
// to re-run.
func (ing *Ingestor) fetchAndScribe(ctx context.Context, ids []uint64) ([]models.Identity, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	type result struct {
		idents []models.Identity
		err    error
	}

	chunks := chunkIDs(ids, upstream.MaxLookupIDs)
	results := make(chan result, len(chunks))
	var wg sync.WaitGroup

	for _, chunk := range chunks {
		wg.Add(1)
		go func(chunk []uint64) {
			defer wg.Done()

			posts, err := ing.client.GetPosts(ctx, chunk)
			if err != nil {
				results <- result{err: fmt.Errorf("failed to fetch posts: %w", err)}
				return
			}

			idents, err := ing.scriber.ScribePosts(ctx, posts)
			results <- result{idents: idents, err: err}
		}(chunk)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var idents []models.Identity
	var firstErr error
	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		idents = append(idents, res.idents...)
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return idents, nil
}

func chunkIDs(ids []uint64, size int) [][]uint64 {
	var chunks [][]uint64
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// dedupeSorted sorts the ids and removes duplicates, keeping batch
// composition deterministic.
func dedupeSorted(ids []uint64) []uint64 {
	if len(ids) == 0 {
		return ids
	}

	sorted := make([]uint64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	out := sorted[:1]
	for _, id := range sorted[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
