package history

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"route-finder/internal/route"
)

// Collection is where the directions proxy has always logged searches.
const Collection = "routes"

type FirestoreStore struct {
	ref *firestore.CollectionRef
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{ref: client.Collection(Collection)}
}

// Add writes the entry under a fresh document. The stored timestamp is the
// server's; the returned entry carries the local one.
func (s *FirestoreStore) Add(ctx context.Context, e Entry) (Entry, error) {
	doc := s.ref.NewDoc()
	e.ID = doc.ID
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	data := entryToFirestore(&e)
	data["timestamp"] = firestore.ServerTimestamp
	if _, err := doc.Create(ctx, data); err != nil {
		return Entry{}, fmt.Errorf("firestore add history: %w", err)
	}
	return e, nil
}

func (s *FirestoreStore) Recent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	q := s.ref.Where("userId", "==", userID).OrderBy("timestamp", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	it := q.Documents(ctx)
	defer it.Stop()

	var out []Entry
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore recent history: %w", err)
		}
		e := firestoreToEntry(snap.Data())
		e.ID = snap.Ref.ID
		out = append(out, *e)
	}
	return out, nil
}

func entryToFirestore(e *Entry) map[string]interface{} {
	m := map[string]interface{}{
		"userId":      e.UserID,
		"origin":      e.Origin,
		"destination": e.Destination,
		"timestamp":   e.Timestamp,
	}
	if e.Mode != "" {
		m["mode"] = string(e.Mode)
	}
	return m
}

func firestoreToEntry(m map[string]interface{}) *Entry {
	e := &Entry{}
	e.UserID, _ = m["userId"].(string)
	e.Origin, _ = m["origin"].(string)
	e.Destination, _ = m["destination"].(string)
	if v, ok := m["mode"].(string); ok {
		e.Mode = route.Mode(v)
	}
	if v, ok := m["timestamp"].(time.Time); ok {
		e.Timestamp = v
	}
	return e
}
