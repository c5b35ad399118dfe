package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kymani/udahili/core/class"
)

type classApi struct {
	svc        class.ServiceInterface
	validate   *validator.Validate
	translator ut.Translator
}

func registerClassAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := classApi{
		svc:        deps.ClassSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	cg := g.Group("/classes", jwt, adminMiddleware())
	cg.GET("", api.query)
	cg.POST("", api.create)
}

func (api *classApi) create(ctx echo.Context) error {
	var data class.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	cls, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *classApi) query(ctx echo.Context) error {
	classes, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}
