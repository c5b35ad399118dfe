package class

import (
	"context"
	goerrors "errors"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kymani/udahili/core"
)

var (
	ErrNotFound    = goerrors.New("class not found")
	ErrClassExists = goerrors.New("a class with this name already exists")
)

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name string) error
		CreateClass(ctx context.Context, cls Class) (Class, error)
		GetClassByName(ctx context.Context, name string) (Class, error)
		QueryAllClasses(ctx context.Context) ([]Class, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, nc NewClass) (Class, error)
		QueryAll(ctx context.Context) ([]Class, error)
		ClassExists(ctx context.Context, name string) (bool, error)
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) ServiceInterface {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nc NewClass) (Class, error) {
	if err := svc.repo.CheckNameUniqueness(ctx, nc.Name); err != nil {
		if errors.Cause(err) == ErrClassExists {
			return Class{}, core.NewValidationError(ErrClassExists, core.FieldError{Field: "name", Error: ErrClassExists.Error()})
		}
		return Class{}, err
	}
	return svc.repo.CreateClass(ctx, Class{
		Name:      nc.Name,
		Level:     null.NewString(nc.Level, nc.Level != ""),
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *service) QueryAll(ctx context.Context) ([]Class, error) {
	return svc.repo.QueryAllClasses(ctx)
}

func (svc *service) ClassExists(ctx context.Context, name string) (bool, error) {
	if _, err := svc.repo.GetClassByName(ctx, name); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
