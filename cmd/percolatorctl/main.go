// Command percolatorctl is a small harness over the percolate package:
// load stored queries from a file, percolate documents read from
// stdin, and print the ids of every query each document matches.
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wizenheimer/percolate"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "percolatorctl",
		Short: "Load queries and percolate documents against them",
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var queriesPath string
	var nClauseMatchers int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Index queries from a file, percolate documents read from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, queriesPath, nClauseMatchers)
		},
	}
	cmd.Flags().StringVarP(&queriesPath, "queries", "q", "", "path to a newline-delimited file of query strings (required)")
	cmd.Flags().IntVarP(&nClauseMatchers, "clause-matchers", "n", 3, "number of clause matchers")
	cmd.MarkFlagRequired("queries")
	return cmd
}

func run(cmd *cobra.Command, queriesPath string, nClauseMatchers int) error {
	qf, err := os.Open(queriesPath)
	if err != nil {
		return fmt.Errorf("opening queries file: %w", err)
	}
	defer qf.Close()

	perc := percolate.NewPercolatorBuilder[string]().
		NClauseMatchers(nClauseMatchers).
		Build()

	lineNo := 0
	uidFor := func(n int) string { return fmt.Sprintf("query-%d", n) }

	scanner := bufio.NewScanner(qf)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		q, err := percolate.ParseQuery(line)
		if err != nil {
			slog.Warn("skipping unparseable query", slog.Int("line", lineNo), slog.String("error", err.Error()))
			continue
		}
		if _, err := perc.SafeAddQuery(q, uidFor(lineNo)); err != nil {
			slog.Warn("rejected query", slog.Int("line", lineNo), slog.String("error", err.Error()))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading queries file: %w", err)
	}

	stats := perc.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d queries\n", stats.NQueries)

	docScanner := bufio.NewScanner(os.Stdin)
	docNo := 0
	for docScanner.Scan() {
		docNo++
		line := strings.TrimSpace(docScanner.Text())
		if line == "" {
			continue
		}
		doc, err := parseDocumentLine(line)
		if err != nil {
			slog.Warn("skipping unparseable document", slog.Int("line", docNo), slog.String("error", err.Error()))
			continue
		}

		var uids []string
		for uid := range perc.Percolate(doc) {
			uids = append(uids, uid)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "document %d -> %s\n", docNo, strings.Join(uids, ", "))
	}
	return docScanner.Err()
}

// parseDocumentLine parses a "field=value,field=value,..." line into
// a Document.
func parseDocumentLine(line string) (*percolate.Document, error) {
	d := percolate.NewDocument()
	for _, pair := range strings.Split(line, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		field, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("malformed field=value pair: %q", pair)
		}
		d.With(strings.TrimSpace(field), strings.TrimSpace(value))
	}
	return d, nil
}
