package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lease-cli/internal/model"
	"github.com/sells-group/lease-cli/internal/pipeline"
)

var pageSeparatorRe = regexp.MustCompile(`(?mi)^-{3,}\s*page\s+\d+\s*-{3,}\s*$`)

var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Process a single lease document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := processFile(ctx, env, args[0])
		if err != nil {
			return err
		}

		fmt.Println(result.Summary)
		return nil
	},
}

// processFile loads a document from disk, registers it, and runs the pipeline.
func processFile(ctx context.Context, env *pipelineEnv, path string) (*pipeline.Result, error) {
	doc, err := loadDocument(path)
	if err != nil {
		return nil, err
	}

	if _, err := env.Store.CreateDocument(ctx, doc); err != nil {
		return nil, eris.Wrap(err, "register document")
	}

	result, err := env.Pipeline.Process(ctx, doc)
	if err != nil {
		return nil, eris.Wrapf(err, "process %s", doc.Name)
	}

	zap.L().Info("document processed",
		zap.String("document_id", doc.ID),
		zap.String("run_id", result.RunID),
	)
	return result, nil
}

// loadDocument reads a plain-text lease. A file splits into pages on
// "--- page N ---" marker lines (no markers means a single page); a
// directory yields one page per file, in name order.
func loadDocument(path string) (model.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.Document{}, eris.Wrap(err, "stat document")
	}
	if info.IsDir() {
		return loadDocumentDir(path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, eris.Wrap(err, "read document")
	}

	doc := model.Document{
		ID:        uuid.NewString(),
		Name:      filepath.Base(path),
		CreatedAt: time.Now().UTC(),
	}

	parts := pageSeparatorRe.Split(string(raw), -1)
	number := 0
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		number++
		doc.Pages = append(doc.Pages, model.Page{Number: number, Text: part})
	}
	if len(doc.Pages) == 0 {
		return model.Document{}, eris.Errorf("document %s is empty", path)
	}

	return doc, nil
}

// loadDocumentDir treats each regular file in the directory as one page,
// ordered by file name.
func loadDocumentDir(dir string) (model.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return model.Document{}, eris.Wrap(err, "read document dir")
	}

	doc := model.Document{
		ID:        uuid.NewString(),
		Name:      filepath.Base(dir),
		CreatedAt: time.Now().UTC(),
	}

	number := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return model.Document{}, eris.Wrapf(err, "read page %s", entry.Name())
		}
		if strings.TrimSpace(string(raw)) == "" {
			continue
		}
		number++
		doc.Pages = append(doc.Pages, model.Page{Number: number, Text: string(raw)})
	}
	if len(doc.Pages) == 0 {
		return model.Document{}, eris.Errorf("document %s is empty", dir)
	}

	return doc, nil
}

func init() {
	rootCmd.AddCommand(processCmd)
}
