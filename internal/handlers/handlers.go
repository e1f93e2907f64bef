package handlers

import (
	"billingportal/internal/common"
	"billingportal/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// MessageResponse is returned by endpoints that only acknowledge a request
type MessageResponse struct {
	Message string `json:"message"`
}

// SuccessResponse is returned by endpoints that perform an action with no payload
type SuccessResponse struct {
	Success bool `json:"success"`
}

func requestMeta(c echo.Context) models.RequestMeta {
	return models.RequestMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

// currentCustomer returns the customer set by the session middleware
func currentCustomer(c echo.Context) (uuid.UUID, error) {
	id, ok := common.GetCustomerIDFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, common.NewAuthError("Not authenticated")
	}
	return id, nil
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return common.NewValidationError("Invalid request format")
	}
	return nil
}

func fail(c echo.Context, err error) error {
	return common.Render(c, common.Failure(err))
}

func ok(c echo.Context, data any) error {
	return common.Render(c, common.Success(data))
}
