package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/careplus/clinic-backend/internal/entity"
)

// respondData wraps every successful payload in a data envelope.
func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data})
}

// respondError maps a typed domain error onto its HTTP status and error
// code. Anything else is an internal error; the detail is logged, not
// exposed.
func respondError(c *gin.Context, err error) {
	var reqErr *entity.RequestError
	if errors.As(err, &reqErr) {
		c.JSON(reqErr.StatusCode, gin.H{
			"code":    reqErr.Code,
			"message": reqErr.Message,
		})
		return
	}

	logrus.Errorf("Unhandled error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    entity.ErrInternalServer.Code,
		"message": entity.ErrInternalServer.Message,
	})
}
