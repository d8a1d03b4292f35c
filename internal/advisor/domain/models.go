// Package domain contains the advisory chat turn model and the contract with
// the external LLM provider.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// ChatTurn is one metered question/answer exchange.
type ChatTurn struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	UserID    string       `gorm:"type:text;not null;index"`
	Question  string       `gorm:"type:text;not null"`
	Answer    string       `gorm:"type:text;not null"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ChatTurn) TableName() string { return "chat_turns" }

type AskRequest struct {
	Question string `json:"question"`
}

type AskResponse struct {
	Answer    string `json:"answer"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
}

// Client is the stateless text-generation provider. External collaborator;
// nothing about prompts or models leaks into the metering core.
type Client interface {
	Complete(ctx context.Context, question string) (string, error)
}

type Service interface {
	Ask(ctx context.Context, userID string, req AskRequest) (AskResponse, error)
}

var ErrEmptyQuestion = errors.New("empty_question")
