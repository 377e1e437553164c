package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"studytrack/models"
)

const (
	goalsCollection      = "goals"
	sessionsCollection   = "sessions"
	confidenceCollection = "confidence"
	notesCollection      = "notes"
)

// MongoStore is the remote document-store backend.
type MongoStore struct {
	client   *mongo.Client
	db       *mongo.Database
	pageSize int
}

// OpenMongoStore connects to uri, verifies the connection and ensures the
// unique indexes that back upsert semantics.
func OpenMongoStore(ctx context.Context, uri, database string, pageSize int) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, wrapErr("connect", "mongo", "", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, wrapErr("ping", "mongo", "", err)
	}
	s := NewMongoStore(client, database, pageSize)
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func NewMongoStore(client *mongo.Client, database string, pageSize int) *MongoStore {
	if pageSize <= 0 {
		pageSize = DefaultSessionPageSize
	}
	return &MongoStore{client: client, db: client.Database(database), pageSize: pageSize}
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(confidenceCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return wrapErr("index", confidenceCollection, "", err)
	}
	_, err = s.db.Collection(notesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return wrapErr("index", notesCollection, "", err)
	}
	for _, coll := range []string{goalsCollection, sessionsCollection} {
		_, err := s.db.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
		})
		if err != nil {
			return wrapErr("index", coll, "", err)
		}
	}
	return nil
}

// ---------- goals ----------

func (s *MongoStore) GetGoals(ctx context.Context, userID, today string) ([]models.Goal, error) {
	goals, err := s.findGoals(ctx, bson.M{"user_id": userID, "date": bson.M{"$lte": today}})
	if err != nil {
		return nil, err
	}
	return models.VisibleGoals(goals, today), nil
}

func (s *MongoStore) AllGoals(ctx context.Context, userID string) ([]models.Goal, error) {
	return s.findGoals(ctx, bson.M{"user_id": userID})
}

func (s *MongoStore) findGoals(ctx context.Context, filter bson.M) ([]models.Goal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.db.Collection(goalsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr("list", "goal", "", err)
	}
	goals := []models.Goal{}
	if err := cur.All(ctx, &goals); err != nil {
		return nil, wrapErr("decode", "goal", "", err)
	}
	return goals, nil
}

func (s *MongoStore) AddGoal(ctx context.Context, userID string, g *models.Goal) error {
	if g.ID == "" {
		g.ID = primitive.NewObjectID().Hex()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	g.UserID = userID
	_, err := s.db.Collection(goalsCollection).InsertOne(ctx, g)
	return wrapErr("create", "goal", g.ID, err)
}

func (s *MongoStore) UpdateGoal(ctx context.Context, userID, goalID string, patch GoalPatch) error {
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Subject != nil {
		set["subject"] = *patch.Subject
	}
	if patch.TargetHours != nil {
		set["target_hours"] = *patch.TargetHours
	}
	if patch.Priority != nil {
		set["priority"] = *patch.Priority
	}
	if len(set) == 0 {
		return s.exists(ctx, "update", goalsCollection, "goal", userID, goalID)
	}
	return s.updateOne(ctx, "update", goalsCollection, "goal", userID, goalID, bson.M{"$set": set})
}

func (s *MongoStore) ToggleGoal(ctx context.Context, userID, goalID string, current bool, today string) error {
	update := bson.M{
		"$set":   bson.M{"completed": false},
		"$unset": bson.M{"completed_at": ""},
	}
	if !current {
		update = bson.M{"$set": bson.M{"completed": true, "completed_at": today}}
	}
	return s.updateOne(ctx, "toggle", goalsCollection, "goal", userID, goalID, update)
}

func (s *MongoStore) DeleteGoal(ctx context.Context, userID, goalID string) error {
	return s.deleteOne(ctx, goalsCollection, "goal", userID, goalID)
}

// ---------- sessions ----------

func (s *MongoStore) GetSessions(ctx context.Context, userID, date string) ([]models.StudySession, error) {
	filter := bson.M{"user_id": userID}
	opts := sessionOrder()
	if date != "" {
		filter["date"] = date
	} else {
		opts.SetLimit(int64(s.pageSize))
	}
	return s.findSessions(ctx, filter, opts)
}

func (s *MongoStore) AllSessions(ctx context.Context, userID string) ([]models.StudySession, error) {
	return s.findSessions(ctx, bson.M{"user_id": userID}, sessionOrder())
}

func sessionOrder() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "end_time", Value: -1}, {Key: "created_at", Value: -1}})
}

func (s *MongoStore) findSessions(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.StudySession, error) {
	cur, err := s.db.Collection(sessionsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr("list", "session", "", err)
	}
	sessions := []models.StudySession{}
	if err := cur.All(ctx, &sessions); err != nil {
		return nil, wrapErr("decode", "session", "", err)
	}
	// Sessions missing end_time sort last in mongo; match the other backends.
	SortSessionsNewestFirst(sessions)
	return sessions, nil
}

func (s *MongoStore) AddSession(ctx context.Context, userID string, ss *models.StudySession) error {
	if ss.ID == "" {
		ss.ID = primitive.NewObjectID().Hex()
	}
	if ss.CreatedAt.IsZero() {
		ss.CreatedAt = time.Now().UTC()
	}
	ss.UserID = userID
	_, err := s.db.Collection(sessionsCollection).InsertOne(ctx, ss)
	return wrapErr("create", "session", ss.ID, err)
}

func (s *MongoStore) UpdateSession(ctx context.Context, userID, sessionID string, patch SessionPatch) error {
	set := bson.M{}
	if patch.Subject != nil {
		set["subject"] = *patch.Subject
	}
	if patch.Topic != nil {
		set["topic"] = *patch.Topic
	}
	if patch.DurationMinutes != nil {
		set["duration_minutes"] = *patch.DurationMinutes
	}
	if len(set) == 0 {
		return s.exists(ctx, "update", sessionsCollection, "session", userID, sessionID)
	}
	return s.updateOne(ctx, "update", sessionsCollection, "session", userID, sessionID, bson.M{"$set": set})
}

func (s *MongoStore) DeleteSession(ctx context.Context, userID, sessionID string) error {
	return s.deleteOne(ctx, sessionsCollection, "session", userID, sessionID)
}

// ---------- confidence ----------

func (s *MongoStore) GetConfidence(ctx context.Context, userID, date string) (*models.ConfidenceEntry, error) {
	filter := bson.M{"user_id": userID}
	if date != "" {
		filter["date"] = date
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})
	var entry models.ConfidenceEntry
	err := s.db.Collection(confidenceCollection).FindOne(ctx, filter, opts).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get", "confidence", date, err)
	}
	return &entry, nil
}

func (s *MongoStore) LogConfidence(ctx context.Context, userID, date string, score int) error {
	_, err := s.db.Collection(confidenceCollection).UpdateOne(ctx,
		bson.M{"user_id": userID, "date": date},
		bson.M{"$set": bson.M{"score": score, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return wrapErr("upsert", "confidence", date, err)
}

func (s *MongoStore) GetConfidenceHistory(ctx context.Context, userID string) ([]models.ConfidenceEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cur, err := s.db.Collection(confidenceCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, wrapErr("list", "confidence", "", err)
	}
	entries := []models.ConfidenceEntry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, wrapErr("decode", "confidence", "", err)
	}
	return entries, nil
}

// ---------- notes ----------

func (s *MongoStore) GetNote(ctx context.Context, userID string) (string, error) {
	var note models.Note
	err := s.db.Collection(notesCollection).FindOne(ctx, bson.M{"user_id": userID}).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", wrapErr("get", "note", userID, err)
	}
	return note.Content, nil
}

func (s *MongoStore) SaveNote(ctx context.Context, userID, content string) error {
	_, err := s.db.Collection(notesCollection).UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"content": content, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return wrapErr("upsert", "note", userID, err)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ---------- internals ----------

func (s *MongoStore) updateOne(ctx context.Context, op, coll, resource, userID, id string, update bson.M) error {
	res, err := s.db.Collection(coll).UpdateOne(ctx, bson.M{"_id": id, "user_id": userID}, update)
	if err != nil {
		return wrapErr(op, resource, id, err)
	}
	if res.MatchedCount == 0 {
		return wrapErr(op, resource, id, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) deleteOne(ctx context.Context, coll, resource, userID, id string) error {
	res, err := s.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return wrapErr("delete", resource, id, err)
	}
	if res.DeletedCount == 0 {
		return wrapErr("delete", resource, id, ErrNotFound)
	}
	return nil
}

func (s *MongoStore) exists(ctx context.Context, op, coll, resource, userID, id string) error {
	n, err := s.db.Collection(coll).CountDocuments(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return wrapErr(op, resource, id, err)
	}
	if n == 0 {
		return wrapErr(op, resource, id, ErrNotFound)
	}
	return nil
}
