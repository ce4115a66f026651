package models

import (
	"encoding/json"
	"strings"
)

// StaffMember is a person listed by the staff service.
type StaffMember struct {
	ID     string      `json:"id"`
	Name   string      `json:"nombre"`
	Email  string      `json:"email"`
	Phone  string      `json:"telefono"`
	Type   string      `json:"tipo"`
	Status StaffStatus `json:"estado"`
}

// StaffStatus accepts the service's mixed encodings ("Activo", true, ...).
type StaffStatus struct {
	Known  bool
	Active bool
}

// UnmarshalJSON decodes boolean or string statuses.
func (s *StaffStatus) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*s = StaffStatus{Known: true, Active: b}
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		*s = StaffStatus{}
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "activo", "true":
		*s = StaffStatus{Known: true, Active: true}
	case "inactivo", "false":
		*s = StaffStatus{Known: true, Active: false}
	default:
		*s = StaffStatus{}
	}
	return nil
}

// MarshalJSON renders the status the way the staff service spells it.
func (s StaffStatus) MarshalJSON() ([]byte, error) {
	switch {
	case !s.Known:
		return []byte("null"), nil
	case s.Active:
		return []byte(`"Activo"`), nil
	default:
		return []byte(`"Inactivo"`), nil
	}
}
