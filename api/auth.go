package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"apexpos/credentials"
	"apexpos/model"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authPayload struct {
	User         model.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

// Register creates an account and starts a session: on success the new
// token pair and identity are persisted to the credential store.
func (c *Client) Register(ctx context.Context, name, email, password string) (model.User, error) {
	if strings.TrimSpace(name) == "" {
		return model.User{}, &ValidationError{Field: "name", Reason: "required"}
	}
	email, err := validateEmail(email)
	if err != nil {
		return model.User{}, err
	}
	password, err = validatePassword(password)
	if err != nil {
		return model.User{}, err
	}
	return c.authenticate(ctx, "/auth/register", registerRequest{Name: name, Email: email, Password: password})
}

// Login exchanges email/password for a session.
func (c *Client) Login(ctx context.Context, email, password string) (model.User, error) {
	email, err := validateEmail(email)
	if err != nil {
		return model.User{}, err
	}
	password, err = validatePassword(password)
	if err != nil {
		return model.User{}, err
	}
	return c.authenticate(ctx, "/auth/login", loginRequest{Email: email, Password: password})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (model.User, error) {
	data, status, err := c.roundTrip(ctx, http.MethodPost, path, body, "")
	if err != nil {
		return model.User{}, err
	}
	if _, err := checkStatus(data, status); err != nil {
		return model.User{}, err
	}
	var env struct {
		Data authPayload `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return model.User{}, &NetworkError{Op: "decode " + path, Err: err}
	}
	pair := credentials.Pair{
		AccessToken:  env.Data.AccessToken,
		RefreshToken: env.Data.RefreshToken,
	}
	if err := c.creds.Save(pair); err != nil {
		return model.User{}, err
	}
	if err := c.creds.SaveUser(env.Data.User); err != nil {
		return model.User{}, err
	}
	return env.Data.User, nil
}

// Logout ends the session locally. The stored pair and identity are
// removed; there is no server-side call to make.
func (c *Client) Logout() error {
	return c.creds.Clear()
}

// CurrentUser returns the persisted identity, if a session exists.
func (c *Client) CurrentUser() (model.User, bool, error) {
	return c.creds.ReadUser()
}
