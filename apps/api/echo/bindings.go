package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kymani/udahili/core"
	"github.com/kymani/udahili/core/admission"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindApplicantFilter reads the listing filter off query params; malformed
// values are ignored rather than rejected.
func bindApplicantFilter(ctx echo.Context) *admission.QueryFilter {
	filter := &admission.QueryFilter{
		Status: admission.Status(ctx.QueryParam("status")),
		Search: ctx.QueryParam("search"),
	}
	if v := ctx.QueryParam("is_verified"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.IsVerified = &b
		}
	}
	if v := ctx.QueryParam("created_from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.CreatedFrom = t
		}
	}
	if v := ctx.QueryParam("created_to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.CreatedTo = t
		}
	}
	return filter
}
