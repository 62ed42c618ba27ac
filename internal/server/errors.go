package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/habitshare/internal/auth"
	"github.com/julianstephens/habitshare/internal/logger"
	"github.com/julianstephens/habitshare/internal/storage"
)

var (
	errNotOwner   = errors.New("only the owner can change this record")
	errUpvoteOnly = errors.New("only the upvote count of another user's share can change")
)

// invalid marks a request rejected before it reached storage
type invalid struct{ err error }

func (e invalid) Error() string { return e.err.Error() }
func (e invalid) Unwrap() error { return e.err }

func badRequest(err error) error { return invalid{err: err} }

// respond writes err with the status matching its cause
func respond(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var verrs validator.ValidationErrors
	var bad invalid

	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrConflict), errors.Is(err, auth.ErrEmailExists):
		status = http.StatusConflict
	case errors.Is(err, errNotOwner), errors.Is(err, errUpvoteOnly):
		status = http.StatusForbidden
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.As(err, &verrs), errors.As(err, &bad), errors.Is(err, auth.ErrWeakPassword):
		status = http.StatusBadRequest
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.FullPath(), "error", err)
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
