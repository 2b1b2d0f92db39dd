package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/coffee-order/services"
	"github.com/yeremiapane/coffee-order/utils"
)

// currentUserID reads the user id AuthMiddleware stored in the context.
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// requireUser writes a 401 and returns false when there is no user in context.
func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
	}
	return userID, ok
}

// respondServiceError maps service sentinels to HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrItemNotFound), errors.Is(err, services.ErrOrderNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrEmptyOrder):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrGateway):
		utils.RespondError(c, http.StatusBadGateway, err)
	default:
		utils.ErrorLogger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
