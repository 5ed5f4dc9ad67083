// Package fetcher loads raw listing tables from CSV, XLSX, and ZIP sources,
// local or remote.
package fetcher

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/barzel-group/market-cli/internal/listing"
)

// Options configures table loading across formats.
type Options struct {
	// Delimiter for CSV sources; 0 means ','.
	Delimiter rune
	// Sheet selects the XLSX worksheet by name; empty means the first sheet.
	Sheet string
	// HTTP is used for remote sources; nil means a default client.
	HTTP *HTTPFetcher
}

// Load reads a listing table from the given source. The source may be a
// local .csv, .xlsx, or .zip path, or an http(s) URL to one of those;
// remote sources are downloaded to a temp file first. The format is picked
// by extension.
func Load(ctx context.Context, source string, opts Options) (*listing.RawTable, error) {
	if isRemote(source) {
		return loadRemote(ctx, source, opts)
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".csv":
		f, err := os.Open(source)
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: open csv")
		}
		defer f.Close() //nolint:errcheck
		return ReadCSV(ctx, f, CSVOptions{Delimiter: opts.Delimiter})
	case ".xlsx":
		return ReadXLSX(source, XLSXOptions{SheetName: opts.Sheet})
	case ".zip":
		return loadZip(ctx, source, opts)
	default:
		return nil, eris.Errorf("fetcher: unsupported source %q", source)
	}
}

func isRemote(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

func loadRemote(ctx context.Context, source string, opts Options) (*listing.RawTable, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: parse url")
	}

	httpf := opts.HTTP
	if httpf == nil {
		httpf = NewHTTPFetcher(HTTPOptions{})
	}

	dir, err := os.MkdirTemp("", "market-fetch-")
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: temp dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	local := filepath.Join(dir, filepath.Base(u.Path))
	n, err := httpf.DownloadToFile(ctx, source, local)
	if err != nil {
		return nil, err
	}
	zap.L().Info("downloaded dataset",
		zap.String("url", source),
		zap.Int64("bytes", n),
	)

	return Load(ctx, local, opts)
}

// loadZip extracts the single table file inside a zip archive and loads it.
func loadZip(ctx context.Context, path string, opts Options) (*listing.RawTable, error) {
	dir, err := os.MkdirTemp("", "market-zip-")
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: temp dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	inner, err := ExtractZIPSingle(path, dir)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(inner), ".zip") {
		return nil, eris.Errorf("fetcher: nested archive %q", filepath.Base(inner))
	}
	return Load(ctx, inner, opts)
}
