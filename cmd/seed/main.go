package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"bookcatalog/internal/book"
	"bookcatalog/internal/catalog"
	"bookcatalog/internal/config"
	"bookcatalog/internal/platform/logging"
	"bookcatalog/internal/platform/openlibrary"
	"bookcatalog/internal/platform/postgres"
)

// defaultISBNs are resolved when neither -isbns nor -file is given.
var defaultISBNs = []string{
	"0451526538", // 1984
	"0451526341", // Animal Farm
	"0743273567", // The Great Gatsby
	"0061120081", // To Kill a Mockingbird
	"0141439518", // Pride and Prejudice
}

// Resolver is the part of catalog.Resolver the seeder uses.
type Resolver interface {
	ResolveOrFetch(ctx context.Context, isbn string) (book.Book, bool, error)
}

// Summary counts what a seed run did.
type Summary struct {
	Created  int
	Existing int
	Missing  int
	Failed   int
}

func main() {
	var (
		isbnList = flag.String("isbns", "", "Comma separated ISBNs to resolve")
		file     = flag.String("file", "", "File with one ISBN per line")
	)
	flag.Parse()

	cfg, err := config.LoadForTools()
	if err != nil {
		logging.Must("info").Fatal("load config", zap.Error(err))
	}
	logger := logging.Must(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	isbns, err := collectISBNs(*isbnList, *file)
	if err != nil {
		logger.Fatal("read isbns", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer pool.Close()

	resolver := catalog.NewResolver(
		book.NewPostgresRepo(pool, cfg.DBTimeout),
		openlibrary.NewClient(cfg.OpenLibraryURL, "bookcatalog-seed/1.0", nil),
		logger,
	)

	s := seed(ctx, resolver, isbns, logger)
	logger.Info("seed finished",
		zap.Int("created", s.Created),
		zap.Int("existing", s.Existing),
		zap.Int("missing", s.Missing),
		zap.Int("failed", s.Failed),
	)
	if s.Failed > 0 {
		os.Exit(1)
	}
}

// seed resolves every ISBN in order. A failing ISBN is logged and counted;
// the run continues with the next one.
func seed(ctx context.Context, resolver Resolver, isbns []string, logger *zap.Logger) Summary {
	var s Summary
	for _, isbn := range isbns {
		b, created, err := resolver.ResolveOrFetch(ctx, isbn)
		switch {
		case errors.Is(err, book.ErrNotFound):
			s.Missing++
			logger.Warn("isbn not found", zap.String("isbn", isbn))
		case err != nil:
			s.Failed++
			logger.Error("resolve isbn", zap.String("isbn", isbn), zap.Error(err))
		case created:
			s.Created++
			logger.Info("book created", zap.String("isbn", isbn), zap.String("title", b.Title))
		default:
			s.Existing++
		}
	}
	return s
}

func collectISBNs(list, file string) ([]string, error) {
	var isbns []string
	for _, part := range strings.Split(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			isbns = append(isbns, part)
		}
	}

	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		fromFile, err := readISBNs(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		isbns = append(isbns, fromFile...)
	}

	if len(isbns) == 0 {
		return defaultISBNs, nil
	}
	return isbns, nil
}

// readISBNs reads one ISBN per line, skipping blanks and # comments.
func readISBNs(r io.Reader) ([]string, error) {
	var isbns []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		isbns = append(isbns, line)
	}
	return isbns, sc.Err()
}
