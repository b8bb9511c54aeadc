//go:build integration

package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap/zaptest"

	"user-service/internal/domain/user"
	pkgerrors "user-service/pkg/errors"
)

var mongoClient *mongo.Client

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not connect to docker: %s", err)
	}

	container, err := pool.Run("mongo", "7.0", nil)
	if err != nil {
		log.Fatalf("Could not start container: %s", err)
	}

	uri := fmt.Sprintf("mongodb://localhost:%s", container.GetPort("27017/tcp"))
	if err := pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			return err
		}
		if err := client.Ping(ctx, nil); err != nil {
			return err
		}
		mongoClient = client
		return nil
	}); err != nil {
		log.Fatalf("Could not connect to docker: %s", err)
	}

	code := m.Run()

	if err := mongoClient.Disconnect(context.Background()); err != nil {
		log.Printf("Could not disconnect mongo client: %s", err)
	}
	if err := pool.Purge(container); err != nil {
		log.Fatalf("Could not purge container: %s", err)
	}

	os.Exit(code)
}

type UserRepoMongoIntegrationSuite struct {
	suite.Suite
	db   *mongo.Database
	repo *UserRepoMongo
}

func (s *UserRepoMongoIntegrationSuite) SetupTest() {
	s.db = mongoClient.Database(fmt.Sprintf("user_service_it_%d", time.Now().UnixNano()))
	s.repo = NewUserRepoMongo(s.db, 5*time.Second, zaptest.NewLogger(s.T()))
	s.Require().NoError(s.repo.EnsureIndexes(context.Background()))
}

func (s *UserRepoMongoIntegrationSuite) TearDownTest() {
	s.Require().NoError(s.db.Drop(context.Background()))
}

func (s *UserRepoMongoIntegrationSuite) insert(name, email string) *user.User {
	created, err := s.repo.Insert(context.Background(), &user.User{Name: name, Email: email, IsActive: true})
	s.Require().NoError(err)
	return created
}

func (s *UserRepoMongoIntegrationSuite) TestDuplicateEmailRejected() {
	s.insert("Ann", "ann@test.com")

	_, err := s.repo.Insert(context.Background(), &user.User{Name: "Other Ann", Email: "ann@test.com", IsActive: true})

	var exists *pkgerrors.AlreadyExistsError
	s.True(errors.As(err, &exists))

	total, err := s.repo.Count(context.Background(), user.Filter{})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
}

func (s *UserRepoMongoIntegrationSuite) TestPagesDoNotOverlap() {
	for i := 0; i < 25; i++ {
		s.insert(fmt.Sprintf("User %02d", i), fmt.Sprintf("user%02d@test.com", i))
	}

	seen := map[string]bool{}
	sort := user.Sort{Field: "createdAt", Descending: true}
	for _, skip := range []int64{0, 10, 20} {
		page, err := s.repo.FindPage(context.Background(), user.Filter{}, sort, skip, 10)
		s.Require().NoError(err)
		for _, u := range page {
			s.False(seen[u.ID], "user %s returned twice", u.ID)
			seen[u.ID] = true
		}
	}
	s.Len(seen, 25)

	second, err := s.repo.FindPage(context.Background(), user.Filter{}, sort, 10, 10)
	s.Require().NoError(err)
	s.Len(second, 10)

	total, err := s.repo.Count(context.Background(), user.Filter{})
	s.Require().NoError(err)
	s.Equal(int64(25), total)
}

func (s *UserRepoMongoIntegrationSuite) TestSortByNameAscending() {
	s.insert("Carol", "carol@test.com")
	s.insert("Alice", "alice@test.com")
	s.insert("Bob", "bob@test.com")

	users, err := s.repo.FindPage(context.Background(), user.Filter{}, user.Sort{Field: "name"}, 0, 10)
	s.Require().NoError(err)
	s.Require().Len(users, 3)
	s.Equal("Alice", users[0].Name)
	s.Equal("Bob", users[1].Name)
	s.Equal("Carol", users[2].Name)
}

func (s *UserRepoMongoIntegrationSuite) TestQueryAndActiveFilter() {
	s.insert("Alice", "alice@test.com")
	s.insert("Bob", "bob@example.org")
	_, err := s.db.Collection(UsersCollection).UpdateOne(context.Background(),
		bson.D{{Key: "email", Value: "bob@example.org"}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "isActive", Value: false}}}})
	s.Require().NoError(err)

	byQuery, err := s.repo.FindPage(context.Background(), user.Filter{Query: "ALICE"}, user.Sort{Field: "name"}, 0, 10)
	s.Require().NoError(err)
	s.Require().Len(byQuery, 1)
	s.Equal("alice@test.com", byQuery[0].Email)

	inactive := false
	total, err := s.repo.Count(context.Background(), user.Filter{IsActive: &inactive})
	s.Require().NoError(err)
	s.Equal(int64(1), total)
}

func TestUserRepoMongoIntegration(t *testing.T) {
	suite.Run(t, new(UserRepoMongoIntegrationSuite))
}
