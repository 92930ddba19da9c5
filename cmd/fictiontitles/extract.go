// Copyright 2020 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"
	"golang.org/x/sync/errgroup"

	"github.com/Goodwine/xmltitles"
)

// stdinName is the file name reported for documents read from standard input.
const stdinName = "-"

// Document holds the titles extracted from one input.
type Document struct {
	File   string                  `json:"file" yaml:"file"`
	Titles []xmltitles.TitleResult `json:"titles" yaml:"titles"`
}

// Extractor runs one parse per input, each with its own xmltitles.TitleExtractor.
type Extractor struct {
	Category    string
	Concurrency int
	Logger      *slog.Logger
}

// ExtractReader parses a single document read from r.
func (x *Extractor) ExtractReader(name string, r io.Reader) (Document, error) {
	titles, err := xmltitles.ParseReader(r, x.options(name)...)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", name, err)
	}
	return Document{File: name, Titles: titles}, nil
}

// ExtractFiles parses files concurrently. The documents keep the order of files and the first
// failure cancels the files not started yet.
func (x *Extractor) ExtractFiles(ctx context.Context, files []string) ([]Document, error) {
	docs := make([]Document, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.Concurrency)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := x.ExtractReader(file, f)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// options returns the parse options for one input.
func (x *Extractor) options(name string) []xmltitles.Option {
	return []xmltitles.Option{
		xmltitles.WithCategory(x.Category),
		xmltitles.WithLogger(x.Logger.With("file", name)),
	}
}

func writeDocuments(w io.Writer, format string, docs []Document) error {
	var (
		out []byte
		err error
	)
	switch format {
	case "yaml":
		out, err = yaml.Marshal(docs)
	default:
		out, err = json.MarshalIndent(docs, "", "  ")
		out = append(out, '\n')
	}
	if err != nil {
		return fmt.Errorf("encoding %s output: %w", format, err)
	}
	_, err = w.Write(out)
	return err
}
