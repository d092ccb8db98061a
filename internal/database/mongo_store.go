package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/isdelr/devlink/internal/models"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

type developerDoc struct {
	ID        string    `bson:"_id"`
	OwnerID   string    `bson:"owner"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Phone     string    `bson:"phone"`
	GitHub    string    `bson:"github"`
	LinkedIn  string    `bson:"linkedin"`
	Domain    string    `bson:"domain"`
	TechStack []string  `bson:"techstack"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func developerToDoc(d *models.Developer) developerDoc {
	techstack := []string(d.TechStack)
	if techstack == nil {
		techstack = []string{}
	}
	return developerDoc{
		ID: d.ID, OwnerID: d.OwnerID, Name: d.Name, Email: d.Email, Phone: d.Phone,
		GitHub: d.GitHub, LinkedIn: d.LinkedIn, Domain: d.Domain, TechStack: techstack,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

func (doc developerDoc) model() models.Developer {
	techstack := models.TechStack(doc.TechStack)
	if techstack == nil {
		techstack = models.TechStack{}
	}
	return models.Developer{
		ID: doc.ID, OwnerID: doc.OwnerID, Name: doc.Name, Email: doc.Email, Phone: doc.Phone,
		GitHub: doc.GitHub, LinkedIn: doc.LinkedIn, Domain: doc.Domain, TechStack: techstack,
		CreatedAt: doc.CreatedAt.UTC(), UpdatedAt: doc.UpdatedAt.UTC(),
	}
}

// MongoStore implements Store on MongoDB.
type MongoStore struct {
	m *Mongo
}

// NewMongoStore wraps a connected Mongo handle.
func NewMongoStore(m *Mongo) *MongoStore {
	return &MongoStore{m: m}
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.m.Close(ctx)
}

// CreateUser inserts a new user.
func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.m.Users.InsertOne(ctx, userDoc{
		ID: user.ID, Username: user.Username, Email: user.Email,
		PasswordHash: user.PasswordHash, CreatedAt: user.CreatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateEmail
		}
		return fmt.Errorf("mongo: insert user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by id.
func (s *MongoStore) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

// GetUserByEmail retrieves a user by normalized email.
func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (models.User, error) {
	var doc userDoc
	if err := s.m.Users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, models.ErrNotFound
		}
		return models.User{}, fmt.Errorf("mongo: find user: %w", err)
	}
	return models.User{
		ID: doc.ID, Username: doc.Username, Email: doc.Email,
		PasswordHash: doc.PasswordHash, CreatedAt: doc.CreatedAt.UTC(),
	}, nil
}

// CreateDeveloper inserts a developer record.
func (s *MongoStore) CreateDeveloper(ctx context.Context, dev *models.Developer) error {
	if _, err := s.m.Developers.InsertOne(ctx, developerToDoc(dev)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateEmail
		}
		return fmt.Errorf("mongo: insert developer: %w", err)
	}
	return nil
}

// GetDeveloper retrieves a developer record by id regardless of owner.
func (s *MongoStore) GetDeveloper(ctx context.Context, id string) (models.Developer, error) {
	var doc developerDoc
	if err := s.m.Developers.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Developer{}, models.ErrNotFound
		}
		return models.Developer{}, fmt.Errorf("mongo: find developer: %w", err)
	}
	return doc.model(), nil
}

// UpdateDeveloper replaces the mutable fields of a record owned by dev.OwnerID.
func (s *MongoStore) UpdateDeveloper(ctx context.Context, dev *models.Developer) error {
	doc := developerToDoc(dev)
	update := bson.M{"$set": bson.M{
		"name": doc.Name, "email": doc.Email, "phone": doc.Phone,
		"github": doc.GitHub, "linkedin": doc.LinkedIn, "domain": doc.Domain,
		"techstack": doc.TechStack, "updated_at": doc.UpdatedAt,
	}}
	res, err := s.m.Developers.UpdateOne(ctx, bson.M{"_id": dev.ID, "owner": dev.OwnerID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateEmail
		}
		return fmt.Errorf("mongo: update developer: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteDeveloper removes a record owned by ownerID.
func (s *MongoStore) DeleteDeveloper(ctx context.Context, id, ownerID string) error {
	res, err := s.m.Developers.DeleteOne(ctx, bson.M{"_id": id, "owner": ownerID})
	if err != nil {
		return fmt.Errorf("mongo: delete developer: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListDevelopers returns the owner's records matching filter, oldest first.
func (s *MongoStore) ListDevelopers(ctx context.Context, ownerID string, filter models.DeveloperFilter) ([]models.Developer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.m.Developers.Find(ctx, buildDeveloperFilter(ownerID, filter), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: find developers: %w", err)
	}
	defer cur.Close(ctx)

	devs := []models.Developer{}
	for cur.Next(ctx) {
		var doc developerDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo: decode developer: %w", err)
		}
		devs = append(devs, doc.model())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo: find developers: %w", err)
	}
	return devs, nil
}

// buildDeveloperFilter renders the owner-scoped listing filter. User input is
// quoted before it is placed in a regular expression.
func buildDeveloperFilter(ownerID string, f models.DeveloperFilter) bson.D {
	if f.IsEmpty() {
		return bson.D{{Key: "owner", Value: ownerID}}
	}
	and := bson.A{bson.M{"owner": ownerID}}

	if f.Domain != "" {
		and = append(and, bson.M{"domain": containsRegex(f.Domain)})
	}

	for _, term := range f.TechStack {
		and = append(and, bson.M{"techstack": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(term) + "$", Options: "i"}})
	}

	if f.Search != "" {
		re := containsRegex(f.Search)
		or := bson.A{bson.M{"name": re}, bson.M{"email": re}}
		if f.SearchDomain {
			or = append(or, bson.M{"domain": re})
		}
		and = append(and, bson.M{"$or": or})
	}

	return bson.D{{Key: "$and", Value: and}}
}

func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}
