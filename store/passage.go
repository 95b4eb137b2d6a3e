package store

// Passage is a stored unit of text paired with a precomputed embedding.
// The corpus is populated ahead of time by an external ingestion job and is
// read-only from this service's perspective.
type Passage struct {
	Text      string
	Embedding []float32
}

// RetrievedPassage is a per-query projection of a Passage with the
// similarity of its embedding to the query vector. For the textual
// fallback tier the similarity is a fixed sentinel, not a real ranking.
type RetrievedPassage struct {
	Text       string
	Similarity float64
}

// FindSimilarPassages holds the parameters of a vector similarity search.
type FindSimilarPassages struct {
	Vector []float32
	Limit  int
}

// FindPassagesByText holds the parameters of a textual substring search.
// Score is the sentinel similarity assigned to every match.
type FindPassagesByText struct {
	Query string
	Score float64
	Limit int
}
