package post

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collection = "posts"

type document struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Status      string             `bson:"status"`
	Date        time.Time          `bson:"date"`
	ImageURL    string             `bson:"imageUrl"`
}

func (d *document) toPost() Post {
	return Post{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      Status(d.Status),
		Date:        d.Date.UTC(),
		ImageURL:    d.ImageURL,
	}
}

type mongoRepo struct{ conn Connector }

func (r *mongoRepo) coll(ctx context.Context) (*mongo.Collection, error) {
	s, err := r.conn.Connect(ctx)
	if err != nil {
		return nil, err
	}
	d, err := s.Database()
	if err != nil {
		return nil, err
	}
	return d.Collection(collection), nil
}

func mongoFilter(f Filter) (bson.M, error) {
	m := bson.M{}
	if f.Status != "" {
		m["status"] = string(f.Status)
	}
	from, until, ok, err := f.DateRange()
	if err != nil {
		return nil, err
	}
	if ok {
		m["date"] = bson.M{"$gte": from, "$lt": until}
	}
	return m, nil
}

func mongoSet(c Changes) bson.M {
	set := bson.M{}
	if c.Title != nil {
		set["title"] = *c.Title
	}
	if c.Description != nil {
		set["description"] = *c.Description
	}
	if c.Status != nil {
		set["status"] = string(*c.Status)
	}
	if c.Date != nil {
		set["date"] = *c.Date
	}
	if c.ImageURL != nil {
		set["imageUrl"] = *c.ImageURL
	}
	return set
}

func (r *mongoRepo) List(ctx context.Context, f Filter) ([]Post, error) {
	c, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	filter, err := mongoFilter(f)
	if err != nil {
		return nil, err
	}
	cur, err := c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Post, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toPost())
	}
	return out, nil
}

func (r *mongoRepo) Get(ctx context.Context, id string) (*Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	c, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	return decodeOne(c.FindOne(ctx, bson.M{"_id": oid}))
}

func (r *mongoRepo) Create(ctx context.Context, p *Post) (*Post, error) {
	c, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	doc := document{
		Title:       p.Title,
		Description: p.Description,
		Status:      string(p.Status),
		Date:        p.Date,
		ImageURL:    p.ImageURL,
	}
	res, err := c.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	out := doc.toPost()
	return &out, nil
}

// Update applies $set and returns the document after the change. A malformed
// id cannot match anything and is treated like an unknown one.
func (r *mongoRepo) Update(ctx context.Context, id string, ch Changes) (*Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	c, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	if ch.Empty() {
		return decodeOne(c.FindOne(ctx, bson.M{"_id": oid}))
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return decodeOne(c.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": mongoSet(ch)}, opts))
}

func (r *mongoRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	c, err := r.coll(ctx)
	if err != nil {
		return err
	}
	_, err = c.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

func decodeOne(res *mongo.SingleResult) (*Post, error) {
	var doc document
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	p := doc.toPost()
	return &p, nil
}
