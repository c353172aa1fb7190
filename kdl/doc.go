// Package kdl is the public entry point for parsing and serializing KDL
// 2.0.0 documents. It wires together the tokenizer
// (internal/token), the structural scanner (internal/structscan), the
// grammar-aware builders (internal/build), the document IR
// (github.com/kdl-lang/kdl/document) and the event vocabulary
// (github.com/kdl-lang/kdl/event) behind a small set of entry points:
// Parse, ParseReader, Iterate, IterateReader, ParseWithSink,
// ParseReaderWithSink, Serialize, SerializeToBytes, FindNodeBoundaries
// and Merge.
package kdl
