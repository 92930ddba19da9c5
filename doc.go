// Package xmltitles extracts the titles of books in a given category out of an XML bookstore
// document, without building the document tree in memory.
//
// The package has three layers:
//
//	Decoder         a low-allocation XML tokenizer, StartTag -> CloseTag -> CharData ...
//	Stream/Handler  SAX-like notifications built on top of the Decoder tokens
//	TitleExtractor  a Handler that keeps the titles of <book category="fiction"> elements
//
// Most callers only need Parse:
//
//	titles, err := xmltitles.Parse(doc)
//
// A parse resolves exactly once: with the titles in document order, or with a
// *MalformedInputError and no titles at all. ParseAsync exposes that resolution as a Future.
//
// The Decoder is not a validating parser. Namespaces are kept as prefixes and never resolved,
// and CDATA sections are returned as directives.
package xmltitles
