// Package driver orchestrates whole-file and whole-directory checking:
// file discovery, parallel validation and the on-disk result cache.
package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"buildcheck/internal/diag"
	"buildcheck/internal/schema"
	"buildcheck/internal/source"
	"buildcheck/internal/validate"
)

// Options configures a checking run.
type Options struct {
	// Schemas are consulted before the per-document inferred schema.
	Schemas   []schema.Provider
	Analyzers []*validate.Analyzer

	MaxDiagnostics int
	// Jobs bounds directory-level parallelism; 0 means GOMAXPROCS.
	Jobs int

	// Cache short-circuits validation of unchanged files; nil disables.
	Cache *DiskCache

	Log validate.Logger
}

func (o Options) maxDiagnostics() int {
	if o.MaxDiagnostics <= 0 {
		return 100
	}
	return o.MaxDiagnostics
}

// Result is the outcome for one file.
type Result struct {
	Path   string
	FileID source.FileID
	Bag    *diag.Bag
	// Doc is nil when the file failed to load or the result came from
	// the cache.
	Doc *validate.Document
}

// checkable project file extensions; ordering mirrors DocKindForPath.
func isProjectFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csproj", ".vbproj", ".fsproj", ".proj", ".ilproj", ".esproj",
		".props", ".targets":
		return true
	}
	return false
}

func listProjectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isProjectFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// CheckFile validates a single file into a fresh FileSet.
func CheckFile(ctx context.Context, path string, opts Options) (*source.FileSet, Result, error) {
	fileSet := source.NewFileSet()
	res, err := checkOne(ctx, fileSet, path, opts)
	return fileSet, res, err
}

func checkOne(ctx context.Context, fileSet *source.FileSet, path string, opts Options) (Result, error) {
	id, err := fileSet.Load(path)
	if err != nil {
		bag := diag.NewBag(opts.maxDiagnostics())
		bag.Add(diag.NewError(diag.IOError, source.Span{},
			"failed to load file: "+err.Error()))
		return Result{Path: path, Bag: bag}, nil
	}
	file := fileSet.Get(id)

	if cached, ok := opts.Cache.Lookup(file, opts.maxDiagnostics()); ok {
		return Result{Path: path, FileID: id, Bag: cached}, nil
	}

	doc := validate.NewDocument(file, opts.maxDiagnostics())
	err = validate.Validate(ctx, doc, validate.Options{
		Schemas:   opts.Schemas,
		Analyzers: opts.Analyzers,
		Log:       opts.Log,
	})
	if err != nil {
		// Cancelled mid-pass: the partial bag must not leak out.
		return Result{}, err
	}

	opts.Cache.Store(file, doc.Bag)
	return Result{Path: path, FileID: id, Bag: doc.Bag, Doc: doc}, nil
}

// CheckDir validates every project file under dir in parallel. Files are
// preloaded sequentially so the FileSet never needs locking; each worker
// writes only its own result slot. On cancellation the partial results
// are discarded.
func CheckDir(ctx context.Context, dir string, opts Options) (*source.FileSet, []Result, error) {
	files, err := listProjectFiles(dir)
	if err != nil {
		return nil, nil, err
	}
	fileSet := source.NewFileSet()
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	loaded := make([]*source.File, len(files))
	loadErrs := make([]error, len(files))
	for i, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrs[i] = err
			continue
		}
		loaded[i] = fileSet.Get(id)
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if loadErrs[i] != nil {
				bag := diag.NewBag(opts.maxDiagnostics())
				bag.Add(diag.NewError(diag.IOError, source.Span{},
					"failed to load file: "+loadErrs[i].Error()))
				results[i] = Result{Path: path, Bag: bag}
				return nil
			}

			file := loaded[i]
			if cached, ok := opts.Cache.Lookup(file, opts.maxDiagnostics()); ok {
				results[i] = Result{Path: path, FileID: file.ID, Bag: cached}
				return nil
			}

			doc := validate.NewDocument(file, opts.maxDiagnostics())
			if err := validate.Validate(gctx, doc, validate.Options{
				Schemas:   opts.Schemas,
				Analyzers: opts.Analyzers,
				Log:       opts.Log,
			}); err != nil {
				return err
			}
			opts.Cache.Store(file, doc.Bag)
			results[i] = Result{Path: path, FileID: file.ID, Bag: doc.Bag, Doc: doc}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, nil, err
	}
	return fileSet, results, nil
}
