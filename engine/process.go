package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnolang/mtrans/scanner"
)

const maxShowRecentFiles = 25

// Progress receives the progress bar and the recent file list of
// directory runs. It is stderr so results written to stdout stay clean.
var Progress io.Writer = os.Stderr

func ProcessFile(ctx context.Context, engine Translator, filePath string) ([]Result, error) {
	return engine.Run(ctx, filePath)
}

func ProcessSource(ctx context.Context, engine Translator, name string, source []byte) ([]Result, error) {
	return engine.RunSource(ctx, name, source)
}

// ProcessSources translates in-memory sources in order. Source i is
// reported under the name "<expr i>".
func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine Translator,
	sources [][]byte,
	processor func(context.Context, Translator, string, []byte) ([]Result, error),
) ([]Result, error) {
	var allResults []Result
	for i, source := range sources {
		results, err := processor(ctx, engine, fmt.Sprintf("<expr %d>", i+1), source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allResults = append(allResults, results...)
	}
	return allResults, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine Translator,
	paths []string,
	processor func(context.Context, Translator, string) ([]Result, error),
) ([]Result, error) {
	var allResults []Result
	for _, path := range paths {
		results, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		allResults = append(allResults, results...)
	}
	return allResults, nil
}

// ProcessPath translates a file, or every expression file below a
// directory using one worker per CPU. A single file is processed whatever
// its extension. Results are ordered by file name, then line. A failing
// file does not stop the others; its error is joined into the returned one.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine Translator,
	path string,
	processor func(context.Context, Translator, string) ([]Result, error),
) ([]Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}
	if !info.IsDir() {
		results, err := processor(ctx, engine, path)
		if err != nil {
			return []Result{}, err
		}
		return results, nil
	}

	scanned, err := scanner.New(path).Scan()
	if err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", path, err)
	}

	type fileResult struct {
		results []Result
		err     error
	}

	recent := newRecentFiles(Progress, maxShowRecentFiles)
	bar := progressbar.NewOptions(len(scanned),
		progressbar.OptionSetWriter(Progress),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	resultChan := make(chan fileResult, len(scanned))
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup

	var ctxErr error
dispatch:
	for _, file := range scanned {
		if ctxErr = ctx.Err(); ctxErr != nil {
			break
		}
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break dispatch
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(fp string) {
			defer wg.Done()
			defer func() { <-sem }()

			recent.push(filepath.Base(fp))

			results, err := processor(ctx, engine, fp)
			if err != nil && logger != nil {
				logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
			}
			resultChan <- fileResult{results: results, err: err}
			_ = bar.Add(1)
		}(file.Path)
	}
	wg.Wait()
	close(resultChan)

	results := []Result{}
	var errs []error
	for r := range resultChan {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		results = append(results, r.results...)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Filename != results[j].Filename {
			return results[i].Filename < results[j].Filename
		}
		return results[i].Line < results[j].Line
	})

	fmt.Fprintln(Progress)
	if ctxErr != nil {
		errs = append(errs, ctxErr)
	}
	return results, errors.Join(errs...)
}

// recentFiles redraws the names of the last files picked up by workers
// above the progress bar.
type recentFiles struct {
	mu    sync.Mutex
	w     io.Writer
	files []string
}

func newRecentFiles(w io.Writer, n int) *recentFiles {
	// make space for the list and the bar
	for range n + 1 {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\033[%dA", n+1)
	return &recentFiles{w: w, files: make([]string, n)}
}

func (r *recentFiles) push(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copy(r.files[1:], r.files)
	r.files[0] = name

	fmt.Fprintf(r.w, "\033[%dA", len(r.files))
	for _, f := range r.files {
		// \033[2K: clear the line
		fmt.Fprintf(r.w, "\033[2K\r%s\n", f)
	}
}
