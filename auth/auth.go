// Package auth resolves the session identity of a request and provides the
// predicates handlers use to gate their workflows.
package auth

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"generalstuff/models"
)

const (
	sessionAccountKey  = "account_id"
	contextIdentityKey = "identity"
)

// Identity is who the current request acts as. The zero value is an
// anonymous visitor.
type Identity struct {
	AccountID uint
	Username  string
	Staff     bool
}

// Accounts is the lookup the Load middleware needs.
type Accounts interface {
	AccountByID(ctx context.Context, id uint) (*models.Account, error)
}

// Load resolves the account stored in the session and puts its Identity on
// the gin context. A stale session id is dropped.
func Load(accounts Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, ok := session.Get(sessionAccountKey).(uint)
		if !ok || id == 0 {
			c.Next()
			return
		}

		account, err := accounts.AccountByID(c.Request.Context(), id)
		if err != nil {
			session.Delete(sessionAccountKey)
			_ = session.Save()
			c.Next()
			return
		}

		c.Set(contextIdentityKey, IdentityOf(account))
		c.Set("username", account.Username)
		c.Next()
	}
}

func IdentityOf(account *models.Account) Identity {
	return Identity{AccountID: account.ID, Username: account.Username, Staff: account.IsStaff}
}

// Current returns the identity resolved by Load.
func Current(c *gin.Context) Identity {
	if v, ok := c.Get(contextIdentityKey); ok {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Identity{}
}

// Login binds the session to account.
func Login(c *gin.Context, account *models.Account) error {
	session := sessions.Default(c)
	session.Set(sessionAccountKey, account.ID)
	c.Set(contextIdentityKey, IdentityOf(account))
	return session.Save()
}

// Logout drops everything stored in the session.
func Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	c.Set(contextIdentityKey, Identity{})
	return session.Save()
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
