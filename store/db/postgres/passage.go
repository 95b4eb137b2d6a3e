package postgres

import (
	"context"
	"database/sql"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/rogally/allychat/store"
)

// passageTable is the pre-populated corpus table. It is created and filled
// by an external ingestion job; this service never writes to it.
const passageTable = "items_xbox"

// VectorSearchPassages ranks passages by cosine similarity using pgvector.
// The <=> operator computes cosine distance (1 - cosine_similarity), so
// ordering by distance ASC returns the most similar passages first.
func (d *DB) VectorSearchPassages(ctx context.Context, find *store.FindSimilarPassages) ([]*store.RetrievedPassage, error) {
	query := `
		SELECT
			text,
			1 - (embedding <=> $1) AS similarity
		FROM ` + passageTable + `
		ORDER BY embedding <=> $1
		LIMIT $2
	`

	vector := pgvector.NewVector(find.Vector)
	rows, err := d.db.QueryContext(ctx, query, vector, find.Limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to vector search passages")
	}
	defer rows.Close()

	return scanRetrievedPassages(rows)
}

// VectorSearchPassagesCast is the same ranking query with the stored
// embedding explicitly cast to a vector type. Corpora ingested before the
// column was migrated to the native vector type store embeddings as a
// float array, which pgvector can still rank after a cast.
func (d *DB) VectorSearchPassagesCast(ctx context.Context, find *store.FindSimilarPassages) ([]*store.RetrievedPassage, error) {
	query := `
		SELECT
			text,
			1 - (embedding::vector <=> $1) AS similarity
		FROM ` + passageTable + `
		ORDER BY embedding::vector <=> $1
		LIMIT $2
	`

	vector := pgvector.NewVector(find.Vector)
	rows, err := d.db.QueryContext(ctx, query, vector, find.Limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to vector search passages with cast")
	}
	defer rows.Close()

	return scanRetrievedPassages(rows)
}

// TextSearchPassages performs a case-insensitive substring match against
// passage text. Every match carries the caller-supplied sentinel score;
// row order is whatever the store returns.
func (d *DB) TextSearchPassages(ctx context.Context, find *store.FindPassagesByText) ([]*store.RetrievedPassage, error) {
	query := `
		SELECT
			text,
			$1::float8 AS similarity
		FROM ` + passageTable + `
		WHERE text ILIKE $2
		LIMIT $3
	`

	rows, err := d.db.QueryContext(ctx, query, find.Score, "%"+find.Query+"%", find.Limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to text search passages")
	}
	defer rows.Close()

	return scanRetrievedPassages(rows)
}

func scanRetrievedPassages(rows *sql.Rows) ([]*store.RetrievedPassage, error) {
	list := []*store.RetrievedPassage{}
	for rows.Next() {
		var passage store.RetrievedPassage
		if err := rows.Scan(&passage.Text, &passage.Similarity); err != nil {
			return nil, errors.Wrap(err, "failed to scan retrieved passage")
		}
		list = append(list, &passage)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
