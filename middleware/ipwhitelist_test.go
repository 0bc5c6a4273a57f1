package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestIPWhitelist(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		client  string
		want    int
	}{
		{"no entries admits everyone", nil, "1.2.3.4", http.StatusOK},
		{"exact match", []string{"192.168.1.1"}, "192.168.1.1", http.StatusOK},
		{"not listed", []string{"10.0.0.1"}, "1.2.3.4", http.StatusForbidden},
		{"second of several", []string{"10.0.0.1", "10.0.0.2"}, "10.0.0.2", http.StatusOK},
		{"neighbour of listed", []string{"10.0.0.1", "10.0.0.2"}, "10.0.0.3", http.StatusForbidden},
		{"inside cidr", []string{"10.0.0.0/8", "not-an-ip"}, "10.20.30.40", http.StatusOK},
		{"outside cidr", []string{"10.0.0.0/8"}, "11.0.0.1", http.StatusForbidden},
		{"only unparsable entries", []string{"nope"}, "127.0.0.1", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := gin.New()
			eng.Use(IPWhitelist(tt.allowed))
			eng.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })
			assert.Equal(t, tt.want, hit(eng, "/admin", tt.client).Code)
		})
	}
}
