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

package xmltitles_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Goodwine/xmltitles"
)

const bookstore = `<bookstore>
  <book category="fiction">
    <title lang="en">Harry Potter</title>
    <author>J.K. Rowling</author>
  </book>
  <book category="cooking">
    <title lang="en">Everyday Italian</title>
    <author>Giada De Laurentiis</author>
  </book>
  <book category="fiction">
    <title lang="ru">Война и мир</title>
    <author>Лев Толстой</author>
  </book>
</bookstore>`

// This example extracts the titles of all fiction books.
func ExampleParse() {
	titles, err := xmltitles.Parse(bookstore)
	if err != nil {
		log.Fatal(err)
	}
	for _, t := range titles {
		fmt.Printf("%s (%s) %s\n", t.Text, t.Lang, t.Category)
	}

	// Output:
	// Harry Potter (en) fiction
	// Война и мир (ru) fiction
}

// This example shows that a malformed document yields an error and no titles at all.
func ExampleParse_malformed() {
	titles, err := xmltitles.Parse(`<bookstore><book category="fiction"><title>Dune</title>`)

	var malformed *xmltitles.MalformedInputError
	fmt.Println(len(titles), errors.As(err, &malformed))
	fmt.Println(err)

	// Output:
	// 0 true
	// malformed input: unclosed tag <book> at row: 1 col: 55
}

// This example waits on the result of a parse running on its own goroutine.
func ExampleParseAsync() {
	future := xmltitles.ParseAsync(bookstore, xmltitles.WithCategory("cooking"))

	titles, err := future.Wait(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(titles[0].Text)

	// Output:
	// Everyday Italian
}

// This example drives a Handler by hand with the notifications of a Decoder.
func ExampleStream() {
	d := xmltitles.NewDecoder(strings.NewReader(`<book category="fiction"><title>Dune</title></book>`))

	var rec xmltitles.Recorder
	xmltitles.Stream(d, &rec)
	for _, ev := range rec.Events {
		fmt.Printf("%T %v\n", ev, ev)
	}

	// Output:
	// xmltitles.OpenEvent {book map[category:fiction]}
	// xmltitles.OpenEvent {title map[]}
	// xmltitles.TextEvent {Dune}
	// xmltitles.CloseEvent {title}
	// xmltitles.CloseEvent {book}
	// xmltitles.EndEvent {}
}
