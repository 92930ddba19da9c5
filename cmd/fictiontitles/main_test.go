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

package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Goodwine/xmltitles"
	main "github.com/Goodwine/xmltitles/cmd/fictiontitles"
)

const bookstore = `<bookstore>
  <book category="fiction">
    <title lang="en">Harry Potter</title>
  </book>
  <book category="cooking">
    <title lang="en">Everyday Italian</title>
  </book>
  <book category="fiction">
    <title lang="ru">Война и мир</title>
  </book>
</bookstore>`

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := main.NewMain().Run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func decode(t *testing.T, out string) []main.Document {
	t.Helper()
	var docs []main.Document
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	return docs
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, "", "--help")

	require.NoError(t, err)
	assert.Contains(t, stdout, "fictiontitles")
	assert.Contains(t, stdout, "--category")
}

func TestMain_Run_Stdin(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, bookstore)

	require.NoError(t, err)
	docs := decode(t, stdout)
	require.Len(t, docs, 1)
	assert.Equal(t, "-", docs[0].File)
	assert.Equal(t, []xmltitles.TitleResult{
		{Text: "Harry Potter", Lang: "en", Category: "fiction"},
		{Text: "Война и мир", Lang: "ru", Category: "fiction"},
	}, docs[0].Titles)
}

func TestMain_Run_Category(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, bookstore, "--category", "cooking")

	require.NoError(t, err)
	docs := decode(t, stdout)
	require.Len(t, docs, 1)
	assert.Equal(t, []xmltitles.TitleResult{
		{Text: "Everyday Italian", Lang: "en", Category: "cooking"},
	}, docs[0].Titles)
}

func TestMain_Run_EmptyInputPrintsNoTitles(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, "")

	require.NoError(t, err)
	assert.Contains(t, stdout, `"titles": []`)
}

func TestMain_Run_YAML(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, bookstore, "--format", "yaml")

	require.NoError(t, err)
	assert.Contains(t, stdout, "text: Harry Potter")
	assert.Contains(t, stdout, "lang: ru")
}

func TestMain_Run_RejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, bookstore, "--format", "xml")

	assert.Error(t, err)
}

func TestMain_Run_FilesKeepOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var files []string
	for _, name := range []string{"a.xml", "b.xml", "c.xml", "d.xml", "e.xml"} {
		content := strings.ReplaceAll(bookstore, "Harry Potter", strings.TrimSuffix(name, ".xml"))
		files = append(files, writeFile(t, dir, name, content))
	}

	stdout, _, err := run(t, "", append([]string{"-j", "2"}, files...)...)

	require.NoError(t, err)
	docs := decode(t, stdout)
	require.Len(t, docs, len(files))
	for i, doc := range docs {
		assert.Equal(t, files[i], doc.File)
		require.Len(t, doc.Titles, 2)
		assert.Equal(t, strings.TrimSuffix(filepath.Base(files[i]), ".xml"), doc.Titles[0].Text)
	}
}

func TestMain_Run_MalformedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeFile(t, dir, "good.xml", bookstore)
	bad := writeFile(t, dir, "bad.xml", `<bookstore><book category="fiction">`)

	stdout, stderr, err := run(t, "", good, bad)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.xml")
	assert.Contains(t, err.Error(), "malformed input")
	assert.Empty(t, stdout)
	// Run returns the error, it does not log it.
	assert.NotContains(t, stderr, "malformed input")
}

func TestMain_Run_MissingFile(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, "", filepath.Join(t.TempDir(), "missing.xml"))

	assert.Error(t, err)
}

func TestMain_Run_Verbose(t *testing.T) {
	t.Parallel()

	_, stderr, err := run(t, bookstore, "--verbose")

	require.NoError(t, err)
	assert.Contains(t, stderr, "title matched")
	assert.Contains(t, stderr, "file=-")
}
