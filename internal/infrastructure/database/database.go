package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	WaypointCollection = "waypoints"
	UserCollection     = "users"
)

type Database struct {
	DBName       string
	QueryTimeout time.Duration
	WriteTimeout time.Duration
	Client       *mongo.Client
}

func Connect(cfg Config) (*Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ConnectionTimeout)*time.Millisecond)
	defer cancel()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(cfg.URI).
		SetServerAPIOptions(serverAPI).
		SetConnectTimeout(time.Duration(cfg.ConnectionTimeout) * time.Millisecond).
		SetBSONOptions(&options.BSONOptions{
			UseJSONStructTags: true,
			NilSliceAsEmpty:   true,
		})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	qCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.QueryTimeout)*time.Millisecond)
	defer cancel()

	if err := client.Ping(qCtx, nil); err != nil {
		return nil, err
	}

	db := &Database{
		Client:       client,
		DBName:       cfg.DBName,
		QueryTimeout: time.Duration(cfg.QueryTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
	}

	if err := initWaypointCollection(db); err != nil {
		return nil, err
	}

	if err := initUserCollection(db); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *Database) collection(name string) *mongo.Collection {
	return db.Client.Database(db.DBName).Collection(name)
}

func collectionExists(ctx context.Context, db *Database, name string) (bool, error) {
	collections, err := db.Client.Database(db.DBName).ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}

	return len(collections) > 0, nil
}

var mediaRefSchema = bson.M{
	"bsonType": []string{"object", "null"},
	"required": []string{"bucket", "key", "url"},
	"properties": bson.M{
		"bucket":       bson.M{"bsonType": "string"},
		"key":          bson.M{"bsonType": "string", "minLength": 1},
		"url":          bson.M{"bsonType": "string", "minLength": 1},
		"content_type": bson.M{"bsonType": "string"},
		"size":         bson.M{"bsonType": []string{"long", "int"}},
	},
}

func initWaypointCollection(db *Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), db.QueryTimeout)
	defer cancel()

	exists, err := collectionExists(ctx, db, WaypointCollection)
	if err != nil {
		return err
	}
	if exists {
		return nil // already exists
	}

	collOpts := options.CreateCollection().SetValidator(bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{"_id", "user_id", "latitude", "longitude", "title", "tags", "timestamp"},
			"properties": bson.M{
				"_id":           bson.M{"bsonType": "string", "minLength": 1},
				"user_id":       bson.M{"bsonType": "string", "minLength": 1},
				"back_photo":    mediaRefSchema,
				"front_photo":   mediaRefSchema,
				"audio":         mediaRefSchema,
				"latitude":      bson.M{"bsonType": "double", "minimum": -90, "maximum": 90},
				"longitude":     bson.M{"bsonType": "double", "minimum": -180, "maximum": 180},
				"location_name": bson.M{"bsonType": "string"},
				"title":         bson.M{"bsonType": "string"},
				"tags": bson.M{
					"bsonType": "array",
					"items":    bson.M{"bsonType": "string"},
				},
				"timestamp": bson.M{"bsonType": "date"},
			},
		},
	})

	err = db.Client.Database(db.DBName).CreateCollection(ctx, WaypointCollection, collOpts)
	if err != nil {
		return err
	}

	_, err = db.collection(WaypointCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
	})

	return err
}

func initUserCollection(db *Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), db.QueryTimeout)
	defer cancel()

	exists, err := collectionExists(ctx, db, UserCollection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	collOpts := options.CreateCollection().SetValidator(bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": []string{"_id", "email", "password_hash", "created_at"},
			"properties": bson.M{
				"_id":           bson.M{"bsonType": "string"},
				"email":         bson.M{"bsonType": "string", "pattern": "^[^@\\s]+@[^@\\s]+$"},
				"password_hash": bson.M{"bsonType": "string", "minLength": 1},
				"created_at":    bson.M{"bsonType": "date"},
			},
		},
	})

	if err := db.Client.Database(db.DBName).CreateCollection(ctx, UserCollection, collOpts); err != nil {
		return err
	}

	_, err = db.collection(UserCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return err
}

func (db *Database) Stop() error {
	if err := db.Client.Disconnect(context.Background()); err != nil {
		return err
	}

	return nil
}
