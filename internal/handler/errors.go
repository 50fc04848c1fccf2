package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/firewatch-backend-go/internal/repository"
	"github.com/jengzang/firewatch-backend-go/internal/service"
	"github.com/jengzang/firewatch-backend-go/pkg/response"
)

// respondError maps service errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrRunNotActive):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrNoHotspotSource):
		response.Error(c, http.StatusServiceUnavailable, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c, err.Error())
	}
}
