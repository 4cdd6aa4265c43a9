// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tomtom215/keyscope/internal/catalog"
	"github.com/tomtom215/keyscope/internal/keywords"
	"github.com/tomtom215/keyscope/internal/profile"
)

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}

func newLocalScorer(flags *globalFlags, interests keywords.InterestSource) (*keywords.Scorer, error) {
	cat, err := loadCatalog(flags.catalogPath)
	if err != nil {
		return nil, err
	}
	return keywords.NewScorer(keywords.DefaultConfig(), cat, interests, zerolog.Nop())
}

// readBatch accepts a bare document array or an analyze request body.
func readBatch(r io.Reader) ([]keywords.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("batch is empty")
	}

	if data[0] == '[' {
		var docs []keywords.Document
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, fmt.Errorf("decode batch: %w", err)
		}
		return docs, nil
	}

	var body struct {
		SearchResults []keywords.Document `json:"searchResults"`
		Results       []keywords.Document `json:"results"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	if len(body.SearchResults) > 0 {
		return body.SearchResults, nil
	}
	return body.Results, nil
}

func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func newScoreCmd(flags *globalFlags) *cobra.Command {
	var batch, keyword, user string
	var interests []string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Rank keywords in a batch of search results",
		Long: "Reads a JSON array of videos (or a search response with a results field)\n" +
			"and prints the ranked recommendations. --interest seeds a throwaway profile\n" +
			"for --user so personalization can be previewed.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := openInput(batch, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer in.Close()

			docs, err := readBatch(in)
			if err != nil {
				return err
			}

			store := profile.NewMemoryStore()
			if user != "" && len(interests) > 0 {
				if err := store.Learn(cmd.Context(), user, interests); err != nil {
					return err
				}
			}
			scorer, err := newLocalScorer(flags, store)
			if err != nil {
				return err
			}

			result, err := scorer.Score(cmd.Context(), docs, keyword, user)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}
	cmd.Flags().StringVarP(&batch, "batch", "b", "-", "Search results JSON file, - for stdin")
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "Original search keyword, excluded from results")
	cmd.Flags().StringVarP(&user, "user", "u", "", "User ID for personalization")
	cmd.Flags().StringSliceVar(&interests, "interest", nil, "Prior interest keywords for --user")
	return cmd
}

func newClassifyCmd(flags *globalFlags) *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "classify [TEXT]",
		Short: "Assign a catalog category to text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				text = args[0]
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("text is required (argument or --text)")
			}
			scorer, err := newLocalScorer(flags, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd, scorer.Classify(text))
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "Text to classify")
	return cmd
}

func newTrendingCmd(flags *globalFlags) *cobra.Command {
	var keyword, region string
	cmd := &cobra.Command{
		Use:   "trending",
		Short: "Expand a keyword into trending variants",
		RunE: func(cmd *cobra.Command, _ []string) error {
			scorer, err := newLocalScorer(flags, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd, scorer.Trending(keyword, region))
		},
	}
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "Seed keyword (required)")
	cmd.Flags().StringVarP(&region, "region", "r", "KR", "Region code")
	_ = cmd.MarkFlagRequired("keyword")
	return cmd
}

// catalogSummary is the output of catalog check.
type catalogSummary struct {
	Source     string         `json:"source"`
	Categories []string       `json:"categories"`
	Keywords   map[string]int `json:"keywords"`
	StopWords  int            `json:"stopWords"`
	Fallback   string         `json:"fallback"`
}

func newCatalogCmd(flags *globalFlags) *cobra.Command {
	catalogCmd := &cobra.Command{Use: "catalog", Short: "Catalog operations"}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a catalog file and print a summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog(flags.catalogPath)
			if err != nil {
				return err
			}
			summary := catalogSummary{
				Source:     flags.catalogPath,
				Categories: cat.CategoryNames(),
				Keywords:   make(map[string]int),
				StopWords:  cat.StopWordCount(),
				Fallback:   cat.FallbackCategory(),
			}
			if summary.Source == "" {
				summary.Source = "embedded"
			}
			for _, c := range cat.Categories() {
				summary.Keywords[c.Name] = len(c.Keywords)
			}
			return printJSON(cmd, summary)
		},
	}
	checkCmd.Flags().StringVarP(&flags.catalogPath, "path", "p", "", "Catalog YAML to check")
	catalogCmd.AddCommand(checkCmd)
	return catalogCmd
}
