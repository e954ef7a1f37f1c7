package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/geoext/internal/pkg/config"
	"github.com/samirrijal/geoext/internal/workflows"
)

func importCmd() *cobra.Command {
	var (
		batchSize int
		atomic    bool
		wait      bool
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Submit a bulk import to the import worker",
		Long: "Read one feature per line from FILE (or - for stdin) and start an import workflow.\n" +
			"Lines are either JSON objects {\"name\":...,\"wkt\":...} or NAME<TAB>WKT.\n" +
			"Blank lines and lines starting with # are skipped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readImportFile(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			cfg, err := config.Load("geoctl")
			if err != nil {
				return err
			}
			c, err := client.Dial(client.Options{
				HostPort:  cfg.Temporal.HostPort,
				Namespace: cfg.Temporal.Namespace,
			})
			if err != nil {
				return fmt.Errorf("temporal client: %w", err)
			}
			defer c.Close()

			input := workflows.ImportInput{
				Source:    filepath.Base(args[0]),
				Lines:     lines,
				BatchSize: batchSize,
				Atomic:    atomic,
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
				ID:                       "import-" + uuid.NewString(),
				TaskQueue:                cfg.Temporal.TaskQueue,
				WorkflowExecutionTimeout: time.Hour,
			}, workflows.ImportWorkflow, input)
			if err != nil {
				return fmt.Errorf("start import: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "started %s (%d lines)\n", run.GetID(), len(lines))
			if !wait {
				return nil
			}

			var res workflows.ImportResult
			if err := run.Get(ctx, &res); err != nil {
				return fmt.Errorf("import %s: %w", run.GetID(), err)
			}
			fmt.Fprintf(out, "imported %d, rejected %d, rolled back %v\n", res.Imported, len(res.Rejected), res.RolledBack)
			for _, r := range res.Rejected {
				fmt.Fprintf(out, "  line %d (%s): %s\n", r.Line, r.Name, r.Reason)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch", workflows.DefaultBatchSize, "lines per activity")
	cmd.Flags().BoolVar(&atomic, "atomic", false, "undo the whole import if any line fails")
	cmd.Flags().BoolVar(&wait, "wait", true, "wait for the workflow to finish")
	return cmd
}

func readImportFile(stdin io.Reader, path string) ([]workflows.ImportLine, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return parseImportLines(r)
}

// parseImportLines reads JSON or tab separated import lines.
func parseImportLines(r io.Reader) ([]workflows.ImportLine, error) {
	var out []workflows.ImportLine
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var line workflows.ImportLine
		if strings.HasPrefix(text, "{") {
			if err := json.Unmarshal([]byte(text), &line); err != nil {
				return nil, fmt.Errorf("line %d: %w", n, err)
			}
		} else {
			name, geom, ok := strings.Cut(text, "\t")
			if !ok {
				return nil, fmt.Errorf("line %d: expected NAME<TAB>WKT", n)
			}
			line = workflows.ImportLine{Name: strings.TrimSpace(name), WKT: strings.TrimSpace(geom)}
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
