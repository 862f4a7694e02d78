package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/sysdesign-arena/backend/internal/apperr"
)

type responder struct {
	showStack bool
}

// fail writes err as {"error", "code"} with the status its kind maps to.
// Outside production the captured stack is included.
func (r responder) fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	body := gin.H{
		"error": apperr.Message(err),
		"code":  kind,
	}
	if r.showStack {
		body["stack"] = fmt.Sprintf("%+v", err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(apperr.HTTPStatus(kind), body)
}
