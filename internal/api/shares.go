package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/julianstephens/habitshare/internal/models"
)

func (c *Client) FetchShares(ctx context.Context) ([]models.Share, error) {
	var out []models.Share
	err := c.do(ctx, http.MethodGet, "/shares", nil, nil, &out)
	return out, err
}

func (c *Client) GetShare(ctx context.Context, id string) (models.Share, error) {
	var out models.Share
	err := c.do(ctx, http.MethodGet, "/shares/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) AddShare(ctx context.Context, s models.Share) (models.Share, error) {
	var out models.Share
	err := c.do(ctx, http.MethodPost, "/shares", nil, s, &out)
	return out, err
}

// UpdateShare is a full replace. Using it to bump upvotes races with other clients.
func (c *Client) UpdateShare(ctx context.Context, s models.Share) (models.Share, error) {
	var out models.Share
	err := c.do(ctx, http.MethodPut, "/shares/"+url.PathEscape(s.ID), nil, s, &out)
	return out, err
}

// IncrementUpvotes asks the server to add one upvote atomically
func (c *Client) IncrementUpvotes(ctx context.Context, id string) (models.Share, error) {
	var out models.Share
	err := c.do(ctx, http.MethodPost, "/shares/"+url.PathEscape(id)+"/upvote", nil, nil, &out)
	return out, err
}

func (c *Client) DeleteShare(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/shares/"+url.PathEscape(id), nil, nil, nil)
}

// FetchUpvotes lists legacy upvote records, all of them when shareID is empty
func (c *Client) FetchUpvotes(ctx context.Context, shareID string) ([]models.Upvote, error) {
	var q url.Values
	if shareID != "" {
		q = url.Values{"shareId": {shareID}}
	}
	var out []models.Upvote
	err := c.do(ctx, http.MethodGet, "/upvotes", q, nil, &out)
	return out, err
}

func (c *Client) AddUpvote(ctx context.Context, u models.Upvote) (models.Upvote, error) {
	var out models.Upvote
	err := c.do(ctx, http.MethodPost, "/upvotes", nil, u, &out)
	return out, err
}
