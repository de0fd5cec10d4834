package store

import (
	"context"
	"time"

	"github.com/halissimsek/edit-text/ot"
	"github.com/halissimsek/edit-text/text"
)

// DocumentInfo holds document metadata and its styled content.
type DocumentInfo struct {
	ID        string
	Runs      []text.DocString
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Content returns the document text with styling flattened away.
func (d *DocumentInfo) Content() string {
	s := ""
	for _, r := range d.Runs {
		s += r.String()
	}
	return s
}

// DocumentStore abstracts document persistence. Styled runs cross the
// persistence boundary in their wire encoding.
// Implementations: MemoryStore, FirestoreStore, CachedStore.
type DocumentStore interface {
	Create(ctx context.Context, id string, runs []text.DocString) error
	Get(ctx context.Context, id string) (*DocumentInfo, error)
	List(ctx context.Context) ([]DocumentInfo, error)
	UpdateRuns(ctx context.Context, id string, runs []text.DocString, version int) error
	AppendOperation(ctx context.Context, id string, op ot.Operation, version int) error
	GetOperations(ctx context.Context, id string, fromVersion int) ([]ot.Operation, error)
}
