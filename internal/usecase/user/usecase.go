package user

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	domain "user-service/internal/domain/user"
	pkgerrors "user-service/pkg/errors"
	"user-service/pkg/logger"
	"user-service/pkg/security"
)

const (
	opCreateUser = "create user"
	opListUsers  = "list users"
)

var _ Service = (*Usecase)(nil)

// Usecase implements the business logic for user management operations.
// It holds no per-request state and is safe for concurrent use.
type Usecase struct {
	repo     Repository          // Repository for data access
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
}

// New creates a new instance of Usecase with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Usecase {
	return &Usecase{repo: r, log: log, validate: newValidator()}
}

// CreateUser validates the request and persists a new active user.
// Every failure is returned as a *pkgerrors.ServiceError wrapping the underlying kind.
func (uc *Usecase) CreateUser(ctx context.Context, in CreateUserRequest) (*User, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("creating user", zap.String("email", in.Email))

	u, err := Validate(uc.validate, in)
	if err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, pkgerrors.NewServiceError(opCreateUser, err)
	}

	created, err := uc.repo.Insert(ctx, u)
	if err != nil {
		var exists *pkgerrors.AlreadyExistsError
		if errors.As(err, &exists) {
			log.Warn("email already exists", zap.String("email", u.Email))
		} else {
			log.Error("failed to create user", zap.Error(err))
		}
		return nil, pkgerrors.NewServiceError(opCreateUser, err)
	}
	if created == nil || created.ID == "" {
		err := pkgerrors.NewInternalError("insert user", errors.New("store returned no user"))
		log.Error("failed to create user", zap.Error(err))
		return nil, pkgerrors.NewServiceError(opCreateUser, err)
	}

	log.Info("user created", zap.String("id", created.ID))
	return toDTO(created), nil
}

// ListUsers returns one page of users matching the request filter together with pagination metadata.
// The page and the total come from two independent store calls, so under concurrent writes the
// total may not match the page contents exactly.
func (uc *Usecase) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	query, err := security.ValidateSearchQuery(in.Query)
	if err != nil {
		log.Warn("invalid search query", zap.String("query", in.Query), zap.Error(err))
		return nil, pkgerrors.NewServiceError(opListUsers, pkgerrors.NewValidationError("query", err.Error()))
	}

	page := domain.NewPageRequest(in.Page, in.Limit, in.SortField, in.SortOrder)
	filter := domain.Filter{Query: query, IsActive: in.IsActive}

	log.Info("listing users",
		zap.String("query", query),
		zap.Int64("page", page.Page),
		zap.Int64("limit", page.Limit),
		zap.String("sort", page.SortField),
		zap.String("order", string(page.SortOrder)),
	)

	var (
		users []domain.User
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = uc.repo.FindPage(gctx, filter, page.Sort(), page.Skip(), page.Limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = uc.repo.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to list users", zap.Int64("page", page.Page), zap.Int64("limit", page.Limit), zap.Error(err))
		return nil, pkgerrors.NewServiceError(opListUsers, err)
	}

	out := make([]User, len(users))
	for i := range users {
		out[i] = *toDTO(&users[i])
	}

	p := domain.NewPagination(total, page.Page, page.Limit)
	return &ListUsersResponse{
		Users: out,
		Pagination: &Pagination{
			Total:      p.Total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: p.TotalPages,
		},
	}, nil
}

func toDTO(u *domain.User) *User {
	return &User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
