package testutil

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newEchoEngine() *gin.Engine {
	r := gin.New()
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "ERR_INVALID_JSON", "message": err.Error()},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": body})
	})
	return r
}

func TestDo_SendsJSONBody(t *testing.T) {
	w := Do(t, newEchoEngine(), http.MethodPost, "/echo", map[string]string{"name": "zone"})

	data := AssertSuccess[map[string]string](t, w, http.StatusOK)
	assert.Equal(t, "zone", data["name"])
}

func TestAssertError(t *testing.T) {
	w := Do(t, newEchoEngine(), http.MethodPost, "/echo", nil)

	AssertError(t, w, http.StatusBadRequest, "ERR_INVALID_JSON")
}
