package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	PierColName = "piers"
)

type Pier struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name" validate:"required"`
	Location    string             `bson:"location" json:"location" validate:"required"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	IsActive    bool               `bson:"is_active" json:"is_active"`
	CreatedAt   time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt   time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

type PierRepo interface {
	CreatePier(ctx context.Context, pier *Pier) (*Pier, error)
	GetPierByID(ctx context.Context, id primitive.ObjectID) (*Pier, error)
	ListPiers(ctx context.Context) ([]*Pier, error)
	UpdatePier(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*Pier, error)
	DeletePier(ctx context.Context, id primitive.ObjectID) error
}

func (mdb *MongodbRepo) CreatePier(ctx context.Context, pier *Pier) (*Pier, error) {
	col, err := mdb.GetCollection(ctx, DbName, PierColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now()
	if pier.ID.IsZero() {
		pier.ID = primitive.NewObjectID()
	}
	pier.IsActive = true
	pier.CreatedAt = now
	pier.UpdatedAt = now

	if _, err := col.InsertOne(ctx, pier); err != nil {
		return nil, fmt.Errorf("error inserting pier: %v", err)
	}
	return pier, nil
}

func (mdb *MongodbRepo) GetPierByID(ctx context.Context, id primitive.ObjectID) (*Pier, error) {
	col, err := mdb.GetCollection(ctx, DbName, PierColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var pier Pier
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&pier)
	if err == mongo.ErrNoDocuments {
		return nil, NewAppError(KindNotFound, "pier not found")
	}
	if err != nil {
		return nil, fmt.Errorf("error finding pier: %v", err)
	}
	return &pier, nil
}

func (mdb *MongodbRepo) ListPiers(ctx context.Context) ([]*Pier, error) {
	col, err := mdb.GetCollection(ctx, DbName, PierColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error finding piers: %v", err)
	}
	defer cursor.Close(ctx)

	var piers []*Pier
	if err := cursor.All(ctx, &piers); err != nil {
		return nil, fmt.Errorf("error decoding piers: %v", err)
	}
	return piers, nil
}

func (mdb *MongodbRepo) UpdatePier(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*Pier, error) {
	col, err := mdb.GetCollection(ctx, DbName, PierColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	setFields := bson.M{"updated_at": time.Now()}
	for key, value := range update {
		setFields[key] = value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var pier Pier
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": setFields}, opts).Decode(&pier)
	if err == mongo.ErrNoDocuments {
		return nil, NewAppError(KindNotFound, "pier not found")
	}
	if err != nil {
		return nil, fmt.Errorf("error updating pier: %v", err)
	}
	return &pier, nil
}

func (mdb *MongodbRepo) DeletePier(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, PierColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting pier: %v", err)
	}
	if res.DeletedCount == 0 {
		return NewAppError(KindNotFound, "pier not found")
	}
	return nil
}
