// Package docgraph turns heterogeneous content (uploaded documents, web pages
// and video links) into plain text, scores its quality, segments it into a
// table of contents and extracts a small knowledge graph from it.
//
// This package contains domain types, interfaces and the pure pipeline stages
// following Ben Johnson's Standard Package Layout. Implementations that talk to
// the outside world live in subdirectories named after their primary
// dependency (e.g., sqlite/, goquery/, gemini/).
package docgraph
