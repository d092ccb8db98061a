package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Developer is a developer profile owned by exactly one user.
type Developer struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	GitHub    string    `json:"github"`
	LinkedIn  string    `json:"linkedin"`
	Domain    string    `json:"domain"`
	TechStack TechStack `json:"techstack"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// JSON string field for DB storage
	TechStackJSON string `json:"-" bson:"-"`
}

// PrepareForSave marshals the tech stack into TechStackJSON for DB storage.
func (d *Developer) PrepareForSave() {
	if d.TechStack == nil {
		d.TechStack = TechStack{}
	}
	b, _ := json.Marshal([]string(d.TechStack))
	d.TechStackJSON = string(b)
}

// PrepareForAPI unmarshals TechStackJSON back into the tech stack.
func (d *Developer) PrepareForAPI() {
	d.TechStack = TechStack{}
	if d.TechStackJSON != "" {
		var items []string
		if err := json.Unmarshal([]byte(d.TechStackJSON), &items); err == nil {
			d.TechStack = items
		}
	}
}

// DeveloperInput holds the client-editable fields of a developer record.
type DeveloperInput struct {
	Name      string    `json:"name" validate:"required,max=200"`
	Email     string    `json:"email" validate:"required,email,max=254"`
	Phone     string    `json:"phone" validate:"max=50"`
	GitHub    string    `json:"github" validate:"omitempty,url"`
	LinkedIn  string    `json:"linkedin" validate:"omitempty,url"`
	Domain    string    `json:"domain" validate:"max=100"`
	TechStack TechStack `json:"techstack"`
}

// Normalize trims every field and lower-cases the email.
func (in *DeveloperInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.GitHub = strings.TrimSpace(in.GitHub)
	in.LinkedIn = strings.TrimSpace(in.LinkedIn)
	in.Domain = strings.TrimSpace(in.Domain)
	in.TechStack = NormalizeTechStack(in.TechStack)
}

// Apply copies the input fields onto d.
func (in DeveloperInput) Apply(d *Developer) {
	d.Name = in.Name
	d.Email = in.Email
	d.Phone = in.Phone
	d.GitHub = in.GitHub
	d.LinkedIn = in.LinkedIn
	d.Domain = in.Domain
	d.TechStack = in.TechStack
}

// TechStack is an ordered list of technology names. In JSON it accepts either
// an array of strings or a single comma-separated string.
type TechStack []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TechStack) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = TechStack{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = ParseTechStack(s)
		return nil
	case len(data) > 0 && data[0] == '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("techstack must be a list of strings: %w", err)
		}
		*t = NormalizeTechStack(items)
		return nil
	}
	return fmt.Errorf("techstack must be a string or a list of strings")
}

// MarshalJSON implements json.Marshaler and always emits an array.
func (t TechStack) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

// ParseTechStack splits a comma-separated list into trimmed, non-empty terms.
func ParseTechStack(s string) TechStack {
	return NormalizeTechStack(strings.Split(s, ","))
}

// NormalizeTechStack trims each term and drops empty ones.
func NormalizeTechStack(items []string) TechStack {
	out := make(TechStack, 0, len(items))
	for _, item := range items {
		if term := strings.TrimSpace(item); term != "" {
			out = append(out, term)
		}
	}
	return out
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
