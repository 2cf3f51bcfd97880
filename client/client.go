// Package client implements the REST side of the todo service contract. It
// is request/response glue: each method performs one HTTP call and either
// decodes the expected success response or reports the unexpected status.
// There is deliberately no retry, caching, or token management.
package client

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/todobackend/ws-contract-tests/config"
	"github.com/todobackend/ws-contract-tests/framework"
	"github.com/todobackend/ws-contract-tests/servicedef"
)

const todosPath = "/todos"

// Client talks to the todo service's CRUD endpoints.
type Client struct {
	http       *resty.Client
	authHeader string
	logger     framework.Logger
}

func New(cfg *config.Config, logger framework.Logger) *Client {
	if logger == nil {
		logger = framework.NullLogger()
	}
	rc := resty.New().
		SetBaseURL(cfg.RestBaseURL).
		SetTimeout(cfg.RequestTimeout()).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: rc, authHeader: cfg.AuthHeader, logger: logger}
}

func todoPath(id int64) string {
	return fmt.Sprintf("%s/%d", todosPath, id)
}

func unexpectedStatus(method, path string, resp *resty.Response) error {
	return fmt.Errorf("%s %s returned status %d: %s", method, path, resp.StatusCode(), resp.String())
}

// List fetches one page of todos. Undefined offset/limit values are omitted
// from the query so the service applies its defaults.
func (c *Client) List(offset, limit ldvalue.OptionalInt) ([]servicedef.Todo, error) {
	todos := []servicedef.Todo{}
	req := c.http.R().SetResult(&todos)
	if offset.IsDefined() {
		req.SetQueryParam("offset", strconv.Itoa(offset.IntValue()))
	}
	if limit.IsDefined() {
		req.SetQueryParam("limit", strconv.Itoa(limit.IntValue()))
	}
	resp, err := req.Get(todosPath)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", todosPath, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, unexpectedStatus("GET", todosPath, resp)
	}
	return todos, nil
}

// Create adds a todo and returns the created record.
func (c *Client) Create(text string, completed bool) (servicedef.Todo, error) {
	var todo servicedef.Todo
	resp, err := c.http.R().
		SetBody(servicedef.NewTodoRequest(text, completed)).
		SetResult(&todo).
		Post(todosPath)
	if err != nil {
		return servicedef.Todo{}, fmt.Errorf("POST %s: %w", todosPath, err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return servicedef.Todo{}, unexpectedStatus("POST", todosPath, resp)
	}
	c.logger.Printf("Created todo %d (%q)", todo.ID, todo.Text)
	return todo, nil
}

// CreateRaw posts an arbitrary body and returns the raw response, for tests
// that expect the service to reject the request.
func (c *Client) CreateRaw(body interface{}) (*resty.Response, error) {
	return c.http.R().SetBody(body).Post(todosPath)
}

// Update replaces a todo's fields and returns the updated record.
func (c *Client) Update(id int64, text string, completed bool) (servicedef.Todo, error) {
	var todo servicedef.Todo
	path := todoPath(id)
	resp, err := c.http.R().
		SetBody(servicedef.NewTodoRequest(text, completed)).
		SetResult(&todo).
		Put(path)
	if err != nil {
		return servicedef.Todo{}, fmt.Errorf("PUT %s: %w", path, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return servicedef.Todo{}, unexpectedStatus("PUT", path, resp)
	}
	c.logger.Printf("Updated todo %d", id)
	return todo, nil
}

// UpdateRaw puts an arbitrary body to a todo's resource and returns the raw
// response.
func (c *Client) UpdateRaw(id int64, body interface{}) (*resty.Response, error) {
	return c.http.R().SetBody(body).Put(todoPath(id))
}

// Delete removes a todo. Delete is the only operation in the contract that
// requires the Authorization header.
func (c *Client) Delete(id int64) error {
	path := todoPath(id)
	resp, err := c.http.R().
		SetHeader("Authorization", c.authHeader).
		Delete(path)
	if err != nil {
		return fmt.Errorf("DELETE %s: %w", path, err)
	}
	if resp.StatusCode() != http.StatusNoContent {
		return unexpectedStatus("DELETE", path, resp)
	}
	c.logger.Printf("Deleted todo %d", id)
	return nil
}

// DeleteRaw deletes with or without the Authorization header and returns the
// raw response, for auth and unknown-id tests.
func (c *Client) DeleteRaw(id int64, withAuth bool) (*resty.Response, error) {
	req := c.http.R()
	if withAuth {
		req.SetHeader("Authorization", c.authHeader)
	}
	return req.Delete(todoPath(id))
}
