package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/ehr/journal/internal/platform/store"
)

var (
	okLabel   = color.New(color.FgGreen, color.Bold).SprintFunc()
	failLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	dim       = color.New(color.Faint).SprintFunc()
)

type checkResult struct {
	file  string
	items int
	err   error
}

func checkCollection[T any](ctx context.Context, c *store.Collection[T]) checkResult {
	items, err := c.Load(ctx)
	return checkResult{file: c.Path(), items: len(items), err: err}
}

// runCheck decodes every collection file and prints one line per file. It
// fails when any file is missing or malformed.
func runCheck(ctx context.Context, w io.Writer, a *app) error {
	if ctx == nil {
		ctx = context.Background()
	}
	results := []checkResult{
		checkCollection(ctx, a.patientRepo.Collection()),
		checkCollection(ctx, a.encounterRepo.Collection()),
		checkCollection(ctx, a.noteRepo.Collection()),
	}

	failed := 0
	for _, r := range results {
		name := filepath.Base(r.file)
		if r.err != nil {
			failed++
			fmt.Fprintf(w, "%s %-15s %v\n", failLabel("FAIL"), name, r.err)
			continue
		}
		fmt.Fprintf(w, "%s   %-15s %s\n", okLabel("OK"), name, dim(fmt.Sprintf("%d items", r.items)))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d collection files failed", failed, len(results))
	}
	return nil
}
