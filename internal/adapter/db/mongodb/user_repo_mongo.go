package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"user-service/internal/domain/user"
	usecase "user-service/internal/usecase/user"
	pkgerrors "user-service/pkg/errors"
	"user-service/pkg/logger"
	"user-service/pkg/security"
)

// UsersCollection is the collection holding user documents.
const UsersCollection = "users"

var _ usecase.Repository = (*UserRepoMongo)(nil)

// UserRepoMongo implements the Repository interface on a MongoDB collection.
// Every call is bounded by timeout and goes straight to the store.
type UserRepoMongo struct {
	coll    *mongo.Collection
	timeout time.Duration
	log     *zap.Logger
	now     func() time.Time
}

// NewUserRepoMongo creates a new instance of UserRepoMongo on db's users collection.
func NewUserRepoMongo(db *mongo.Database, timeout time.Duration, log *zap.Logger) *UserRepoMongo {
	return &UserRepoMongo{
		coll:    db.Collection(UsersCollection),
		timeout: timeout,
		log:     log,
		now:     time.Now,
	}
}

// userDocument is the stored shape of a user.
type userDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Age       *int               `bson:"age,omitempty"`
	IsActive  bool               `bson:"isActive"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d userDocument) toDomain() user.User {
	return user.User{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Age:       d.Age,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// EnsureIndexes creates the unique email index and the default sort index.
func (r *UserRepoMongo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("created_at_desc"),
		},
	})
	if err != nil {
		r.log.Error("failed to create user indexes", zap.Error(err))
		return classifyError("create indexes", err)
	}

	r.log.Info("user indexes ensured", zap.String("collection", UsersCollection))
	return nil
}

// Insert stores u as a new document. The store assigns the id and both timestamps.
// A second user with the same email fails with *pkgerrors.AlreadyExistsError.
func (r *UserRepoMongo) Insert(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, pkgerrors.NewInternalError("insert user", errors.New("user cannot be nil"))
	}
	log := logger.WithContext(ctx, r.log)

	// Mongo keeps millisecond precision; truncate so the returned value equals the stored one.
	now := r.now().UTC().Truncate(time.Millisecond)
	doc := userDocument{
		ID:        primitive.NewObjectID(),
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		IsActive:  u.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Warn("duplicate email on insert", zap.String("email", u.Email))
		} else {
			log.Error("failed to insert user in db", zap.Error(err), zap.String("email", u.Email))
		}
		return nil, classifyError("insert user", err)
	}

	log.Info("user inserted in db", zap.String("id", doc.ID.Hex()))
	created := doc.toDomain()
	return &created, nil
}

// FindPage returns users matching filter ordered by sort. Ties are broken by _id in the same
// direction so consecutive pages never overlap.
func (r *UserRepoMongo) FindPage(ctx context.Context, filter user.Filter, sort user.Sort, skip, limit int64) ([]user.User, error) {
	log := logger.WithContext(ctx, r.log)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().
		SetSort(buildSort(sort)).
		SetSkip(skip).
		SetLimit(limit)

	cur, err := r.coll.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		log.Error("failed to find users in db", zap.Error(err), zap.Int64("skip", skip), zap.Int64("limit", limit))
		return nil, classifyError("find users", err)
	}

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		log.Error("failed to decode users from db", zap.Error(err))
		return nil, classifyError("decode users", err)
	}

	users := make([]user.User, len(docs))
	for i, d := range docs {
		users[i] = d.toDomain()
	}
	return users, nil
}

// Count returns the number of users matching filter.
func (r *UserRepoMongo) Count(ctx context.Context, filter user.Filter) (int64, error) {
	log := logger.WithContext(ctx, r.log)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	total, err := r.coll.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		log.Error("failed to count users in db", zap.Error(err))
		return 0, classifyError("count users", err)
	}
	return total, nil
}

// buildFilter translates a domain filter into a query document. FindPage and Count share it.
func buildFilter(f user.Filter) bson.D {
	filter := bson.D{}
	if f.IsEmpty() {
		return filter
	}

	if f.IsActive != nil {
		filter = append(filter, bson.E{Key: "isActive", Value: *f.IsActive})
	}
	if f.Query != "" {
		pattern := primitive.Regex{Pattern: security.EscapeRegex(f.Query), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "name", Value: pattern}},
			bson.D{{Key: "email", Value: pattern}},
		}})
	}
	return filter
}

func buildSort(s user.Sort) bson.D {
	dir := 1
	if s.Descending {
		dir = -1
	}
	return bson.D{
		{Key: s.Field, Value: dir},
		{Key: "_id", Value: dir},
	}
}

// classifyError maps driver errors onto the error taxonomy.
func classifyError(op string, err error) error {
	switch {
	case mongo.IsDuplicateKeyError(err):
		return pkgerrors.NewAlreadyExistsError("user", "email already exists")
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, mongo.ErrClientDisconnected),
		mongo.IsTimeout(err),
		mongo.IsNetworkError(err):
		return pkgerrors.NewUnavailableError(op, err)
	default:
		return pkgerrors.NewInternalError(fmt.Sprintf("failed to %s", op), err)
	}
}
