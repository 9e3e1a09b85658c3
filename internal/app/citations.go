package app

import (
	"github.com/google/uuid"

	"greatlibrary/internal/filesearch"
	"greatlibrary/internal/model"
)

// extractCitations walks the grounding chunks in order and merges chunks
// referencing the same document into one citation, keeping the first
// non-empty snippet. The dedup key is the parsed document id, then the
// context URI, then a fresh random id — so two fully anonymous chunks are
// never merged. Order of first appearance is preserved and snippets are not
// truncated here; display truncation happens in the transport layer.
func extractCitations(chunks []filesearch.GroundingChunk, docs []model.Document) []model.Citation {
	names := make(map[string]string, len(docs))
	for _, d := range docs {
		names[d.ID] = d.Name
	}

	var citations []model.Citation
	seen := make(map[string]int)

	for _, chunk := range chunks {
		rc := chunk.RetrievedContext
		if rc == nil {
			continue
		}

		docID := filesearch.ResourceID(rc.DocumentName)
		key := docID
		if key == "" {
			key = rc.URI
		}
		if key == "" {
			key = uuid.NewString()
		}

		if i, ok := seen[key]; ok {
			if citations[i].Snippet == "" {
				citations[i].Snippet = rc.Snippet()
			}
			continue
		}

		name := names[docID]
		if name == "" {
			name = rc.Title
		}
		if name == "" {
			name = docID
		}
		if name == "" {
			name = "Document"
		}

		seen[key] = len(citations)
		citations = append(citations, model.Citation{
			ID:           key,
			DocumentID:   docID,
			DocumentName: name,
			Snippet:      rc.Snippet(),
			URI:          rc.URI,
		})
	}
	return citations
}
