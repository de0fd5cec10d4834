package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/halissimsek/edit-text/ot"
	"github.com/halissimsek/edit-text/text"
)

// FirestoreStore is a Firestore-backed implementation of DocumentStore.
// Styled runs and operations are stored in their JSON wire encoding, so a
// styleless run persists as a plain string and a styled run as its
// [text, styles] pair.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore creates a new FirestoreStore using the given Firestore client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{
		client:     client,
		collection: "documents",
	}
}

func (s *FirestoreStore) docRef(id string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(id)
}

func (s *FirestoreStore) opsCollection(docID string) *firestore.CollectionRef {
	return s.docRef(docID).Collection("operations")
}

func zeroPad(version int) string {
	return fmt.Sprintf("%010d", version)
}

func encodeRuns(runs []text.DocString) (string, error) {
	if runs == nil {
		runs = []text.DocString{}
	}
	data, err := json.Marshal(runs)
	if err != nil {
		return "", fmt.Errorf("encode runs: %w", err)
	}
	return string(data), nil
}

func decodeRuns(data string) ([]text.DocString, error) {
	if data == "" {
		return nil, nil
	}
	var runs []text.DocString
	if err := json.Unmarshal([]byte(data), &runs); err != nil {
		return nil, fmt.Errorf("decode runs: %w", err)
	}
	return runs, nil
}

func (s *FirestoreStore) Create(ctx context.Context, id string, runs []text.DocString) error {
	encoded, err := encodeRuns(runs)
	if err != nil {
		return err
	}
	now := time.Now()
	_, err = s.docRef(id).Create(ctx, map[string]interface{}{
		"runs":      encoded,
		"version":   0,
		"createdAt": now,
		"updatedAt": now,
	})
	if status.Code(err) == codes.AlreadyExists {
		return fmt.Errorf("document %q already exists", id)
	}
	return err
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (*DocumentInfo, error) {
	snap, err := s.docRef(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("document %q not found", id)
	}
	if err != nil {
		return nil, err
	}
	return snapshotToDocInfo(id, snap)
}

func snapshotToDocInfo(id string, snap *firestore.DocumentSnapshot) (*DocumentInfo, error) {
	data := snap.Data()
	encoded, _ := data["runs"].(string)
	runs, err := decodeRuns(encoded)
	if err != nil {
		return nil, fmt.Errorf("document %q: %w", id, err)
	}
	version, _ := data["version"].(int64)
	createdAt, _ := data["createdAt"].(time.Time)
	updatedAt, _ := data["updatedAt"].(time.Time)
	return &DocumentInfo{
		ID:        id,
		Runs:      runs,
		Version:   int(version),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (s *FirestoreStore) List(ctx context.Context) ([]DocumentInfo, error) {
	iter := s.client.Collection(s.collection).Documents(ctx)
	defer iter.Stop()

	var result []DocumentInfo
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		info, err := snapshotToDocInfo(snap.Ref.ID, snap)
		if err != nil {
			return nil, err
		}
		result = append(result, *info)
	}
	return result, nil
}

func (s *FirestoreStore) UpdateRuns(ctx context.Context, id string, runs []text.DocString, version int) error {
	encoded, err := encodeRuns(runs)
	if err != nil {
		return err
	}
	_, err = s.docRef(id).Update(ctx, []firestore.Update{
		{Path: "runs", Value: encoded},
		{Path: "version", Value: version},
		{Path: "updatedAt", Value: time.Now()},
	})
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("document %q not found", id)
	}
	return err
}

func (s *FirestoreStore) AppendOperation(ctx context.Context, id string, op ot.Operation, version int) error {
	encoded, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("encode operation v%d: %w", version, err)
	}

	// Store with 0-based index: version 1 → index 0, matching MemoryStore's
	// history slice semantics where GetOperations(fromVersion) returns history[fromVersion:].
	index := version - 1
	_, err = s.opsCollection(id).Doc(zeroPad(index)).Set(ctx, map[string]interface{}{
		"op":      string(encoded),
		"version": version,
	})
	return err
}

func (s *FirestoreStore) GetOperations(ctx context.Context, id string, fromVersion int) ([]ot.Operation, error) {
	// Verify document exists.
	_, err := s.docRef(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("document %q not found", id)
	}
	if err != nil {
		return nil, err
	}

	iter := s.opsCollection(id).
		OrderBy(firestore.DocumentID, firestore.Asc).
		StartAt(zeroPad(fromVersion)).
		Documents(ctx)
	defer iter.Stop()

	var ops []ot.Operation
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		op, err := snapshotToOperation(snap)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func snapshotToOperation(snap *firestore.DocumentSnapshot) (ot.Operation, error) {
	data := snap.Data()
	encoded, ok := data["op"].(string)
	if !ok {
		return ot.Operation{}, fmt.Errorf("invalid op field in operation %s", snap.Ref.ID)
	}
	var op ot.Operation
	if err := json.Unmarshal([]byte(encoded), &op); err != nil {
		return ot.Operation{}, fmt.Errorf("decode operation %s: %w", snap.Ref.ID, err)
	}
	return op, nil
}
