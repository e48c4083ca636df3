// Command catalog-ingest imports gzipped NDJSON supplier feeds into the
// products table. Feeds are processed in lexical order and the first feed
// carrying a product id wins, matching the catalog's duplicate rule.
//
// The tool makes two passes. Pass 1 builds a bloom filter of product ids per
// feed, concurrently, and is used only to report ids that appear in more
// than one feed. Pass 2 streams the feeds again in order and upserts
// records, skipping ids already written.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/dwarforca/storefront/internal/catalog"
	"github.com/dwarforca/storefront/internal/storage/postgres"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	progressEvery = 100_000
)

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.ndjson.gz feed files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.ndjson.gz"))
	if err != nil {
		return errors.Wrap(err, "list feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.ndjson.gz files in %s", dataDir)
	}
	sort.Strings(files)

	slog.Info("pass 1: building bloom filters", slog.Int("files", len(files)))

	filters, err := buildBloomFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	reportOverlaps(ctx, files, filters)

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	slog.Info("pass 2: upserting products")

	return upsertFeeds(ctx, pool, files)
}

// buildBloomFilters creates one bloom filter of product ids per feed,
// concurrently.
func buildBloomFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
			var count uint64

			if err := streamFeed(ctx, f, func(line []byte) error {
				p, err := catalog.ParseProductRecord(line)
				if err != nil {
					return errors.Wrap(err, "parse record")
				}
				filter.AddString(strconv.FormatInt(p.ID, 10))
				count++
				if count%progressEvery == 0 {
					slog.Info("pass 1 progress", slog.Int("file", i+1), slog.Uint64("records", count))
				}
				return nil
			}); err != nil {
				return errors.Wrapf(err, "build filter for %s", f)
			}

			slog.Info("pass 1 complete", slog.String("file", f), slog.Uint64("records", count))
			filters[i] = filter
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

// reportOverlaps logs how many of each feed's ids probably appear in an
// earlier feed. Those records lose to the earlier feed in pass 2.
func reportOverlaps(ctx context.Context, files []string, filters []*bloom.BloomFilter) {
	for i := 1; i < len(files); i++ {
		var overlaps uint64
		err := streamFeed(ctx, files[i], func(line []byte) error {
			p, err := catalog.ParseProductRecord(line)
			if err != nil {
				return nil
			}
			key := strconv.FormatInt(p.ID, 10)
			for j := 0; j < i; j++ {
				if filters[j].TestString(key) {
					overlaps++
					break
				}
			}
			return nil
		})
		if err != nil {
			slog.Warn("overlap scan failed", slog.String("file", files[i]), slog.String("error", err.Error()))
			continue
		}
		if overlaps > 0 {
			slog.Warn("feed overlaps earlier feeds",
				slog.String("file", files[i]),
				slog.Uint64("records", overlaps),
			)
		}
	}
}

// upsertFeeds writes feed records in order, first feed wins per id.
func upsertFeeds(ctx context.Context, pool *pgxpool.Pool, files []string) error {
	seen := make(map[int64]struct{})
	var written, skipped uint64

	for _, f := range files {
		if err := streamFeed(ctx, f, func(line []byte) error {
			p, err := catalog.ParseProductRecord(line)
			if err != nil {
				return errors.Wrap(err, "parse record")
			}
			if _, dup := seen[p.ID]; dup {
				skipped++
				return nil
			}
			if err := postgres.UpsertProduct(ctx, pool, p); err != nil {
				return err
			}
			seen[p.ID] = struct{}{}
			written++
			if written%progressEvery == 0 {
				slog.Info("pass 2 progress", slog.Uint64("written", written))
			}
			return nil
		}); err != nil {
			return errors.Wrapf(err, "ingest %s", f)
		}
	}

	slog.Info("pass 2 complete", slog.Uint64("written", written), slog.Uint64("skipped", skipped))
	return nil
}

// streamFeed opens a gzipped feed and calls fn for each non-empty line.
func streamFeed(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}
