package projection

import (
	"errors"
	"log/slog"
	"net/http"

	httperr "github.com/aevon-lab/reorder-features/internal/core/errors"
	"github.com/aevon-lab/reorder-features/internal/core/storage"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the feature read routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/users/:user_id/features", s.HandleUserFeatures)
	r.GET("/v1/users/:user_id/features/:product_id", s.HandleProductFeatures)
}

// HandleUserFeatures handles GET /v1/users/:user_id/features
func (s *Service) HandleUserFeatures(c *gin.Context) {
	var uri struct {
		UserID int64 `uri:"user_id" binding:"required,gt=0"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidPathError,
			Message:   "Invalid path parameters",
			Details:   err.Error(),
		})
		return
	}

	resp, err := s.UserFeatures(c.Request.Context(), uri.UserID)
	if err != nil {
		writeQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HandleProductFeatures handles GET /v1/users/:user_id/features/:product_id
func (s *Service) HandleProductFeatures(c *gin.Context) {
	var uri struct {
		UserID    int64 `uri:"user_id" binding:"required,gt=0"`
		ProductID int64 `uri:"product_id" binding:"required,gt=0"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidPathError,
			Message:   "Invalid path parameters",
			Details:   err.Error(),
		})
		return
	}

	resp, err := s.ProductFeatures(c.Request.Context(), uri.UserID, uri.ProductID)
	if err != nil {
		writeQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func writeQueryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrProductNotFound):
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpFeaturesNotFoundError,
			Message:   "No features for request",
			Details:   err.Error(),
		})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusServiceUnavailable, httperr.ErrorResponse{
			ErrorType: httperr.HttpMergedTableMissingError,
			Message:   "Merged feature table has not been built",
		})
	default:
		slog.Error("[Projection] Feature query failed", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to query features",
			Details:   err.Error(),
		})
	}
}
