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

// Command fictiontitles prints the titles of the fiction books found in XML bookstore documents.
//
//	fictiontitles [--category=fiction] [--format=json|yaml] [FILE...]
//
// Standard input is read when no file is given.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Category    string   `short:"c" default:"fiction" help:"Book category to select"`
	Format      string   `short:"f" enum:"json,yaml" default:"json" help:"Output format (json, yaml)"`
	Concurrency int      `short:"j" default:"4" help:"Files parsed at the same time"`
	Verbose     bool     `short:"v" help:"Log parse diagnostics to stderr"`
	Files       []string `arg:"" optional:"" help:"XML files to read, standard input when none"`
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("fictiontitles"),
		kong.Description("Print the titles of the books of one category found in XML bookstore documents"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	concurrency := cli.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	x := &Extractor{
		Category:    cli.Category,
		Concurrency: concurrency,
		Logger:      logger,
	}

	var docs []Document
	if len(cli.Files) == 0 {
		doc, err := x.ExtractReader(stdinName, stdin)
		if err != nil {
			return err
		}
		docs = []Document{doc}
	} else {
		docs, err = x.ExtractFiles(ctx, cli.Files)
		if err != nil {
			return err
		}
	}

	return writeDocuments(stdout, cli.Format, docs)
}
