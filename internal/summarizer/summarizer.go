package summarizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"docsummary/internal/chunker"
	"docsummary/internal/generator"
)

// NoContentSummary is returned for empty or whitespace-only input without
// issuing any generation call.
const NoContentSummary = "No content to summarize."

const (
	summarySeparator = "\n\n---\n\n"

	cacheMaxEntries = 128
	cacheTTL        = 24 * time.Hour

	mapSystemPrompt = `You are a document summarizer. Summarize the following section of a document.
Focus on key points, main ideas, and important details.
Keep the summary concise but informative.`

	reduceSystemPrompt = `You are a document summarizer. You are given summaries of different sections from a single document.
Combine these into one coherent, well-structured summary.
Use markdown formatting for better readability.
Highlight the most important points and maintain logical flow.`
)

// Options bounds a single generation request and the reduce fan-in.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	MaxBatchSize int
}

// Summarizer produces one Markdown summary for arbitrarily long document
// text with a map-reduce strategy: chunks are summarized in parallel and
// the partial summaries are combined hierarchically until one remains.
// Every generation call goes through the shared rate-limited generator.
type Summarizer struct {
	gen          generator.Generator
	chunkSize    int
	chunkOverlap int
	maxBatchSize int
	cache        *summaryCache
	log          *slog.Logger
}

func New(gen generator.Generator, opts Options, log *slog.Logger) *Summarizer {
	return &Summarizer{
		gen:          gen,
		chunkSize:    opts.ChunkSize,
		chunkOverlap: opts.ChunkOverlap,
		maxBatchSize: opts.MaxBatchSize,
		cache:        newSummaryCache(cacheMaxEntries),
		log:          log,
	}
}

// Summarize returns the final summary for text. It fails with the first
// generation error of the run and never returns a partial result.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return NoContentSummary, nil
	}

	key := cacheKey(trimmed)
	if summary, ok := s.cache.get(key, time.Now()); ok {
		s.log.InfoContext(ctx, "Summary cache hit",
			"textLength", len(trimmed))

		return summary, nil
	}

	chunks := chunker.Split(trimmed, s.chunkSize, s.chunkOverlap)

	s.log.InfoContext(ctx, "Document is split into chunks",
		"chunkCount", len(chunks),
		"textLength", len(trimmed))

	summary, err := s.mapReduce(ctx, chunks)
	if err != nil {
		return "", err
	}

	s.cache.set(key, summary, time.Now().Add(cacheTTL), time.Now())

	return summary, nil
}

func (s *Summarizer) mapReduce(
	ctx context.Context,
	chunks []chunker.Chunk,
) (string, error) {
	if len(chunks) == 1 {
		return s.summarizeSection(ctx, chunks[0].Text)
	}

	summaries, err := s.summarizeChunks(ctx, chunks)
	if err != nil {
		return "", err
	}

	for len(summaries) > s.maxBatchSize {
		summaries, err = s.reduceOnce(ctx, summaries)
		if err != nil {
			return "", err
		}
	}

	return s.combineSummaries(ctx, summaries)
}

// summarizeChunks fans out one map call per chunk. Results land in
// index-ordered slots so concurrency never affects combination order, and
// the first failure cancels the group and aborts the run.
func (s *Summarizer) summarizeChunks(
	ctx context.Context,
	chunks []chunker.Chunk,
) ([]string, error) {
	summaries := make([]string, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			summary, err := s.summarizeSection(gctx, chunk.Text)
			if err != nil {
				return err
			}

			summaries[i] = summary

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summaries, nil
}

// reduceOnce combines consecutive batches of at most maxBatchSize
// summaries concurrently. Each pass shrinks the list by a factor of up to
// maxBatchSize, so the reduce loop always terminates.
func (s *Summarizer) reduceOnce(
	ctx context.Context,
	summaries []string,
) ([]string, error) {
	batches := partition(summaries, s.maxBatchSize)

	s.log.InfoContext(ctx, "Reducing partial summaries",
		"summaryCount", len(summaries),
		"batchCount", len(batches))

	reduced := make([]string, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			combined, err := s.combineSummaries(gctx, batch)
			if err != nil {
				return err
			}

			reduced[i] = combined

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return reduced, nil
}

func (s *Summarizer) summarizeSection(ctx context.Context, section string) (string, error) {
	return s.gen.Generate(
		ctx,
		mapSystemPrompt,
		"Summarize this section:\n\n"+section,
	)
}

func (s *Summarizer) combineSummaries(
	ctx context.Context,
	summaries []string,
) (string, error) {
	return s.gen.Generate(
		ctx,
		reduceSystemPrompt,
		"Combine these section summaries into a final summary:\n\n"+
			strings.Join(summaries, summarySeparator),
	)
}

func partition(items []string, size int) [][]string {
	batches := make([][]string, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end])
	}

	return batches
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))

	return hex.EncodeToString(sum[:])
}
