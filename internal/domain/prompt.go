package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// PromptStatus represents the publication status of a prompt record.
type PromptStatus string

const (
	PromptStatusPending PromptStatus = "pending"
	PromptStatusActive  PromptStatus = "active"
)

// StringArray is a custom type for storing string arrays as JSON in the database.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// Contributor is the person credited for a prompt.
type Contributor struct {
	Name    string `gorm:"column:contributor_name;type:text" json:"name"`
	Profile string `gorm:"column:contributor_profile;type:text" json:"profile"`
}

// Prompt is a titled block of instructional text written for an AI tool.
type Prompt struct {
	ID          string       `gorm:"type:text;primaryKey" json:"id"`
	Title       string       `gorm:"type:text;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	Text        string       `gorm:"type:text;not null" json:"text"`
	Tool        string       `gorm:"type:text;index:idx_prompts_tool" json:"tool"`
	Upvotes     int          `gorm:"default:0" json:"upvotes"`
	Contributor Contributor  `gorm:"embedded" json:"contributor"`
	Tags        StringArray  `gorm:"type:text" json:"tags"`
	Categories  StringArray  `gorm:"type:text" json:"categories"`
	Featured    bool         `gorm:"default:false;index:idx_prompts_featured" json:"featured"`
	Status      PromptStatus `gorm:"type:text;index:idx_prompts_status;default:active" json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TableName returns the database table name for Prompt.
func (Prompt) TableName() string {
	return "prompts"
}

// NumericID parses the identifier as an integer. ok is false for non-numeric ids.
func (p *Prompt) NumericID() (n int64, ok bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(p.ID), 10, 64)
	return n, err == nil
}

// HasCategory reports whether the prompt carries the category id, ignoring case.
func (p *Prompt) HasCategory(id string) bool {
	for _, c := range p.Categories {
		if strings.EqualFold(c, id) {
			return true
		}
	}
	return false
}
