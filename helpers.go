package contentdesk

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// paramID parses the :id path parameter.
func paramID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// queryParam returns nil when the parameter is absent, so list state is
// only changed by the parameters the caller actually sent.
func queryParam(c echo.Context, name string) *string {
	values, ok := c.QueryParams()[name]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
