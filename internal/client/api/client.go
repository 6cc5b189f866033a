// Package api is the HTTP client of the exam portal used by portalctl and
// the session store. It speaks the JSON wire format of the server's /api
// routes.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrNoAutorizado covers 401 responses: missing, expired or revoked token.
	ErrNoAutorizado = errors.New("no autorizado")
	// ErrCredenciales covers 422 login rejections.
	ErrCredenciales = errors.New("credenciales inválidas")
	// ErrCuentaInactiva covers 403 denials (pending or suspended accounts).
	ErrCuentaInactiva = errors.New("cuenta inactiva")
)

// Usuario is the profile snapshot the server returns on login and perfil.
type Usuario struct {
	IDUsuario string `json:"idUsuario"`
	Nombre    string `json:"nombre"`
	Apellidos string `json:"apellidos"`
	Correo    string `json:"correo"`
	Rol       string `json:"rol"`
}

// Client calls the portal API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type loginResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	Usuario     *Usuario `json:"usuario"`
}

// Login exchanges credentials for an access token and the profile snapshot.
func (c *Client) Login(ctx context.Context, correo, password string) (string, *Usuario, error) {
	body, _ := json.Marshal(map[string]string{"correo": correo, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewReader(body))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer drain(res.Body)

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusUnprocessableEntity:
		return "", nil, ErrCredenciales
	case http.StatusForbidden:
		return "", nil, ErrCuentaInactiva
	default:
		return "", nil, fmt.Errorf("login: estado inesperado %d", res.StatusCode)
	}

	var out loginResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", nil, err
	}
	if out.AccessToken == "" || out.Usuario == nil {
		return "", nil, errors.New("login: respuesta incompleta")
	}
	return out.AccessToken, out.Usuario, nil
}

// Perfil validates the token against the server and returns the fresh profile.
func (c *Client) Perfil(ctx context.Context, token string) (*Usuario, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/perfil", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer drain(res.Body)

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrNoAutorizado
	case http.StatusForbidden:
		return nil, ErrCuentaInactiva
	default:
		return nil, fmt.Errorf("perfil: estado inesperado %d", res.StatusCode)
	}

	var out struct {
		Usuario *Usuario `json:"usuario"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Usuario == nil {
		return nil, errors.New("perfil: respuesta incompleta")
	}
	return out.Usuario, nil
}

// Logout revokes the server-side session for the token's user.
func (c *Client) Logout(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer drain(res.Body)

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusUnauthorized {
		return fmt.Errorf("logout: estado inesperado %d", res.StatusCode)
	}
	return nil
}

func drain(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 1<<20))
	_ = rc.Close()
}
