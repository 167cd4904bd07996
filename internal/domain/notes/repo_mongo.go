package notes

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/hms/hms/internal/platform/docstore"
)

const collectionName = "patient_notes"

type repoMongo struct {
	coll *mongo.Collection
}

// NewRepoMongo binds the note store to the patient_notes collection and
// provisions its indexes. Provisioning is idempotent, so every process can
// run it at startup without coordination.
func NewRepoMongo(ctx context.Context, db *mongo.Database) (Repository, error) {
	coll := db.Collection(collectionName)

	if err := docstore.EnsureTextIndex(ctx, coll, "content", "content_text"); err != nil {
		return nil, fmt.Errorf("provision notes text index: %w", err)
	}
	compound := bson.D{{Key: "patientId", Value: 1}, {Key: "createdAt", Value: -1}}
	if err := docstore.EnsureCompoundIndex(ctx, coll, "patientId_1_createdAt_-1", compound); err != nil {
		return nil, fmt.Errorf("provision notes compound index: %w", err)
	}

	return &repoMongo{coll: coll}, nil
}

func (r *repoMongo) Insert(ctx context.Context, n *PatientNote) error {
	if n.ID.IsZero() {
		n.ID = bson.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (r *repoMongo) FindByPatient(ctx context.Context, patientID int64) ([]*PatientNote, error) {
	filter := bson.M{"patientId": patientID}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find notes for patient %d: %w", patientID, err)
	}
	return decodeNotes(ctx, cur)
}

func (r *repoMongo) SearchText(ctx context.Context, term string) ([]*PatientNote, error) {
	if strings.TrimSpace(term) == "" {
		return []*PatientNote{}, nil
	}
	filter := bson.M{"$text": bson.M{"$search": term}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	return decodeNotes(ctx, cur)
}

func (r *repoMongo) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, &ValidationError{Field: "id", Reason: "malformed object id"}
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("delete note %s: %w", id, err)
	}
	return res.DeletedCount > 0, nil
}

func decodeNotes(ctx context.Context, cur *mongo.Cursor) ([]*PatientNote, error) {
	defer cur.Close(ctx)

	notes := []*PatientNote{}
	for cur.Next(ctx) {
		var n PatientNote
		if err := cur.Decode(&n); err != nil {
			return nil, fmt.Errorf("decode note: %w", err)
		}
		notes = append(notes, &n)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}
