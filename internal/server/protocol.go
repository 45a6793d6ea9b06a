// Package server defines the JSON frames exchanged with chat clients and the
// parsing rules applied to inbound traffic.
package server

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Frame type tags.
const (
	TypeRegister        = "register"
	TypeRegisterSuccess = "register_success"
	TypeSystem          = "system"
	TypeChat            = "chat"
	TypeOnlineCount     = "online_count"
)

var validate = validator.New()

// Inbound is a parsed client frame: RegisterRequest, ChatRequest or UnknownRequest.
type Inbound interface {
	frameType() string
}

// RegisterRequest binds the connection to a display name.
type RegisterRequest struct {
	Username string
}

// ChatRequest carries a message body to broadcast.
type ChatRequest struct {
	Message string
}

// UnknownRequest is any well-formed frame whose type the server does not handle.
type UnknownRequest struct {
	Type string
}

func (RegisterRequest) frameType() string { return TypeRegister }
func (ChatRequest) frameType() string     { return TypeChat }
func (u UnknownRequest) frameType() string {
	return u.Type
}

type envelope struct {
	Type string `json:"type"`
}

type registerFrame struct {
	Username *string `json:"username" validate:"required"`
}

type chatFrame struct {
	Message *string `json:"message" validate:"required"`
}

// ParseFrame decodes one inbound text frame. Errors wrap ErrMalformedFrame,
// ErrMissingType or ErrInvalidUsername; the caller drops the frame either way.
// Usernames are trimmed and limited to maxUsername runes.
func ParseFrame(raw []byte, maxUsername int) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if env.Type == "" {
		return nil, ErrMissingType
	}

	switch env.Type {
	case TypeRegister:
		var f registerFrame
		if err := decodeAndValidate(raw, &f); err != nil {
			return nil, err
		}
		username := strings.TrimSpace(*f.Username)
		if err := validate.Var(username, "required,max="+strconv.Itoa(maxUsername)); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidUsername, username)
		}
		return RegisterRequest{Username: username}, nil

	case TypeChat:
		var f chatFrame
		if err := decodeAndValidate(raw, &f); err != nil {
			return nil, err
		}
		return ChatRequest{Message: *f.Message}, nil

	default:
		return UnknownRequest{Type: env.Type}, nil
	}
}

func decodeAndValidate(raw []byte, target any) error {
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return nil
}

// RegisterSuccess acknowledges a registration to the registrant.
type RegisterSuccess struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// SystemMessage is a server announcement.
type SystemMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ChatMessage is a chat body attributed to its sender.
type ChatMessage struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Username string `json:"username"`
	UserID   string `json:"userId"`
}

// OnlineCount reports the number of registered sessions.
type OnlineCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

func newRegisterSuccess(s *Session) RegisterSuccess {
	return RegisterSuccess{Type: TypeRegisterSuccess, UserID: s.ID, Username: s.Username}
}

func newSystemMessage(text string) SystemMessage {
	return SystemMessage{Type: TypeSystem, Message: text}
}

func newChatMessage(s *Session, body string) ChatMessage {
	return ChatMessage{Type: TypeChat, Message: body, Username: s.Username, UserID: s.ID}
}

func newOnlineCount(n int) OnlineCount {
	return OnlineCount{Type: TypeOnlineCount, Count: n}
}

func joinedText(username string) string { return username + " has joined" }
func leftText(username string) string   { return username + " has left" }

func encode(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return payload, nil
}
