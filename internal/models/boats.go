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
	BoatColName = "boats"
)

type BoatStatus string

const (
	BoatAvailable   BoatStatus = "available"
	BoatMaintenance BoatStatus = "maintenance"
	BoatRetired     BoatStatus = "retired"
)

type Boat struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name" validate:"required"`
	Capacity    int                `bson:"capacity" json:"capacity" validate:"required,min=1"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Status      BoatStatus         `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt   time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

type BoatRepo interface {
	CreateBoat(ctx context.Context, boat *Boat) (*Boat, error)
	GetBoatByID(ctx context.Context, id primitive.ObjectID) (*Boat, error)
	ListBoats(ctx context.Context) ([]*Boat, error)
	UpdateBoat(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*Boat, error)
	DeleteBoat(ctx context.Context, id primitive.ObjectID) error
}

func (mdb *MongodbRepo) CreateBoat(ctx context.Context, boat *Boat) (*Boat, error) {
	col, err := mdb.GetCollection(ctx, DbName, BoatColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now()
	if boat.ID.IsZero() {
		boat.ID = primitive.NewObjectID()
	}
	if boat.Status == "" {
		boat.Status = BoatAvailable
	}
	boat.CreatedAt = now
	boat.UpdatedAt = now

	if _, err := col.InsertOne(ctx, boat); err != nil {
		return nil, fmt.Errorf("error inserting boat: %v", err)
	}
	return boat, nil
}

func (mdb *MongodbRepo) GetBoatByID(ctx context.Context, id primitive.ObjectID) (*Boat, error) {
	col, err := mdb.GetCollection(ctx, DbName, BoatColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var boat Boat
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&boat)
	if err == mongo.ErrNoDocuments {
		return nil, NewAppError(KindNotFound, "boat not found")
	}
	if err != nil {
		return nil, fmt.Errorf("error finding boat: %v", err)
	}
	return &boat, nil
}

func (mdb *MongodbRepo) ListBoats(ctx context.Context) ([]*Boat, error) {
	col, err := mdb.GetCollection(ctx, DbName, BoatColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("error finding boats: %v", err)
	}
	defer cursor.Close(ctx)

	var boats []*Boat
	if err := cursor.All(ctx, &boats); err != nil {
		return nil, fmt.Errorf("error decoding boats: %v", err)
	}
	return boats, nil
}

func (mdb *MongodbRepo) UpdateBoat(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) (*Boat, error) {
	col, err := mdb.GetCollection(ctx, DbName, BoatColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	setFields := bson.M{"updated_at": time.Now()}
	for key, value := range update {
		setFields[key] = value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var boat Boat
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": setFields}, opts).Decode(&boat)
	if err == mongo.ErrNoDocuments {
		return nil, NewAppError(KindNotFound, "boat not found")
	}
	if err != nil {
		return nil, fmt.Errorf("error updating boat: %v", err)
	}
	return &boat, nil
}

func (mdb *MongodbRepo) DeleteBoat(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, DbName, BoatColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting boat: %v", err)
	}
	if res.DeletedCount == 0 {
		return NewAppError(KindNotFound, "boat not found")
	}
	return nil
}
