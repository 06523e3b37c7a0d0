package webserver

import (
	"crypto/subtle"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type Auth struct {
	apiKeys   []string
	jwtSecret []byte
}

func NewAuth(apiKeys []string, secret []byte) Auth {
	return Auth{apiKeys: apiKeys, jwtSecret: secret}
}

// Exchange trades a configured API key for a short-lived bearer token.
func (a Auth) Exchange(c *gin.Context) {
	var req struct {
		Key string `json:"key" binding:"required,min=16,max=128"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if !a.keyKnown(req.Key) {
		log.Printf("Rejected auth attempt from IP %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"err": "unknown api key"})
		return
	}

	token, err := issueJWT(a.jwtSecret)
	if err != nil {
		log.Printf("Failed to issue token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (a Auth) keyKnown(key string) bool {
	for _, k := range a.apiKeys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			return true
		}
	}
	return false
}

func issueJWT(secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"scope": "reports",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	return token.SignedString(secret)
}
