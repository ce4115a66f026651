package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/noah-isme/school-portal-gateway/internal/models"
)

const noStaffMessage = "No se encontraron usuarios"

// StaffClient talks to the staff (personal) service.
type StaffClient struct {
	c *Client
}

// NewStaffClient wraps a backend client.
func NewStaffClient(c *Client) *StaffClient {
	return &StaffClient{c: c}
}

// List returns every staff member. The service's "no users" message is an empty list.
func (s *StaffClient) List(ctx context.Context) ([]models.StaffMember, error) {
	raw, err := s.c.Get(ctx, "/usuarios/listar")
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return []models.StaffMember{}, nil
		}
		return nil, err
	}
	if envelopeMessage(raw) == noStaffMessage {
		return []models.StaffMember{}, nil
	}
	var rows []staffRow
	if err := DecodeList(raw, &rows, "usuarios"); err != nil {
		return nil, err
	}
	staff := make([]models.StaffMember, 0, len(rows))
	for _, r := range rows {
		staff = append(staff, models.StaffMember{
			ID:     r.ID.String(),
			Name:   r.Nombre,
			Email:  r.Email,
			Phone:  r.Telefono.String(),
			Type:   r.Tipo,
			Status: r.Estado,
		})
	}
	return staff, nil
}

type staffRow struct {
	ID       flexString         `json:"id"`
	Nombre   string             `json:"nombre"`
	Email    string             `json:"email"`
	Telefono flexString         `json:"telefono"`
	Tipo     string             `json:"tipo"`
	Estado   models.StaffStatus `json:"estado"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type staffUser struct {
	ID     flexString `json:"id"`
	Nombre string     `json:"nombre"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Roles  []string   `json:"roles"`
}

// Login verifies credentials against the staff service and returns the identity.
func (s *StaffClient) Login(ctx context.Context, email, password string) (*models.StaffIdentity, error) {
	raw, err := s.c.PostJSON(ctx, "/usuarios/login", loginPayload{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	var body struct {
		User *staffUser      `json:"user"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	user := body.User
	if user == nil && present(body.Data) {
		var nested struct {
			User *staffUser `json:"user"`
		}
		if err := json.Unmarshal(body.Data, &nested); err == nil {
			user = nested.User
		}
	}
	if user == nil || user.ID == "" {
		return nil, fmt.Errorf("login response without user")
	}
	name := user.Nombre
	if name == "" {
		name = user.Name
	}
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return &models.StaffIdentity{ID: user.ID.String(), Name: name, Email: user.Email, Roles: roles}, nil
}
