package apiclient

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-console/internal/session"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/logger"
	"github.com/jwalitptl/clinic-console/pkg/notifier"
)

// Client wraps every outbound request with the stored credential, intercepts
// expired-session responses and centralizes transient-failure notification.
type Client struct {
	http     *resty.Client
	session  *session.Session
	nav      session.Navigator
	notifier notifier.Notifier
	logger   *logger.Logger
}

func New(baseURL string, timeout time.Duration, sess *session.Session, nav session.Navigator, notif notifier.Notifier, log *logger.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:     httpClient,
		session:  sess,
		nav:      nav,
		notifier: notif,
		logger:   log,
	}
}

// errorBody is the structured error payload of the backend.
type errorBody struct {
	Detail string `json:"detail"`
}

// Do issues an authenticated request. On success the response body is
// unmarshalled into result when result is non-nil. Failures follow the
// taxonomy: missing credential and 401 clear the session and redirect,
// network failures notify, non-2xx bodies surface the server detail.
func (c *Client) Do(ctx context.Context, method, path string, body, result interface{}, query map[string]string) error {
	token := c.session.Token()
	if token == "" {
		if c.session.State() != session.StateLoggingOut {
			c.session.Clear()
			c.nav.Goto(session.PageLogin)
		}
		return errors.NewAuth("no authentication token", nil)
	}

	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("X-Request-ID", uuid.NewString())
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return c.classifyTransportError(err)
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		if c.session.State() != session.StateLoggingOut {
			c.logger.Info("session expired, redirecting to login")
			c.session.MarkExpired()
			c.session.Clear()
			c.nav.Goto(session.PageLogin)
		}
		return errors.NewAuth("session expired", nil)
	}

	if resp.IsError() {
		return applicationError(resp)
	}

	return nil
}

// Get issues an authenticated GET with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, result interface{}, query map[string]string) error {
	return c.Do(ctx, http.MethodGet, path, nil, result, query)
}

func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	return c.Do(ctx, http.MethodPost, path, body, result, nil)
}

func (c *Client) Put(ctx context.Context, path string, body, result interface{}) error {
	return c.Do(ctx, http.MethodPut, path, body, result, nil)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) classifyTransportError(err error) error {
	switch {
	case stderrors.Is(err, context.Canceled):
		// Navigation-triggered abort, not a failure to surface.
		return err
	case stderrors.Is(err, context.DeadlineExceeded):
		c.logger.Error(err, "request timed out")
		if c.session.State() != session.StateLoggingOut {
			c.notifier.Notify(notifier.LevelError, "Richiesta scaduta, riprova")
		}
		return errors.NewTimeout(err)
	default:
		c.logger.Error(err, "request failed")
		if c.session.State() != session.StateLoggingOut {
			c.notifier.Notify(notifier.LevelError, "Errore di connessione al server")
		}
		return errors.NewNetwork(err)
	}
}

func applicationError(resp *resty.Response) error {
	var body errorBody
	message := "Si è verificato un errore, riprova"
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Detail != "" {
		message = body.Detail
	}
	if resp.StatusCode() == http.StatusNotFound {
		return &errors.AppError{Code: errors.ErrNotFound, Message: message}
	}
	return errors.NewApplication(message, nil)
}
