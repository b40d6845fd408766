package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	ErrMalformedMessage = errors.New("malformed message")
	ErrUnknownEvent     = errors.New("unknown event")
	ErrInvalidMessage   = errors.New("invalid message")
)

// Inbound is a decoded and validated client event.
type Inbound interface {
	EventName() string
	Validate() error
}

// IdentifyMessage binds a user to the connection.
type IdentifyMessage struct {
	Event    string `json:"event"`
	UserID   string `json:"userId" validate:"notblank"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

// StartStreamMessage is sent by the creator to go live.
type StartStreamMessage struct {
	Event    string `json:"event"`
	StreamID string `json:"streamId" validate:"notblank"`
	UserID   string `json:"userId" validate:"notblank"`
}

// JoinStreamMessage is sent by a viewer to enter a room.
type JoinStreamMessage struct {
	Event    string `json:"event"`
	StreamID string `json:"streamId" validate:"notblank"`
	UserID   string `json:"userId"`
}

// LeaveStreamMessage is sent by a viewer to leave a room.
type LeaveStreamMessage struct {
	Event    string `json:"event"`
	StreamID string `json:"streamId" validate:"notblank"`
}

// EndStreamMessage ends a stream. stop-stream decodes into the same type.
type EndStreamMessage struct {
	Event    string `json:"event"`
	StreamID string `json:"streamId" validate:"notblank"`
	UserID   string `json:"userId,omitempty"`
}

// SignalMessage is an offer, answer or ice-candidate. When the client sends
// no payload field, Payload holds the whole frame.
type SignalMessage struct {
	Event    string          `json:"event"`
	StreamID string          `json:"streamId" validate:"notblank"`
	TargetID string          `json:"targetId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// ChatMessage accepts both the username/userType and senderName/senderRole spellings.
type ChatMessage struct {
	Event      string `json:"event"`
	StreamID   string `json:"streamId" validate:"notblank"`
	Message    string `json:"message" validate:"notblank"`
	Username   string `json:"username,omitempty"`
	SenderName string `json:"senderName,omitempty"`
	UserID     string `json:"userId"`
	UserType   string `json:"userType,omitempty"`
	SenderRole string `json:"senderRole,omitempty"`
	TipAmount  *int64 `json:"tipAmount,omitempty" validate:"omitempty,gt=0"`
}

// TipMessage transfers Amount tokens to the stream creator. Its fields are
// checked by the coordinator so every tip failure is answered with tip-error.
type TipMessage struct {
	Event    string `json:"event"`
	StreamID string `json:"streamId"`
	Amount   int64  `json:"amount"`
	Username string `json:"username"`
	UserID   string `json:"userId"`
	Message  string `json:"message,omitempty"`
}

// PingMessage is a keepalive.
type PingMessage struct {
	Event string `json:"event"`
}

func (m *IdentifyMessage) EventName() string    { return EventIdentify }
func (m *StartStreamMessage) EventName() string { return EventStartStream }
func (m *JoinStreamMessage) EventName() string  { return EventJoinStream }
func (m *LeaveStreamMessage) EventName() string { return EventLeaveStream }
func (m *EndStreamMessage) EventName() string   { return EventEndStream }
func (m *SignalMessage) EventName() string      { return m.Event }
func (m *ChatMessage) EventName() string        { return EventChatMessage }
func (m *TipMessage) EventName() string         { return EventTipMessage }
func (m *PingMessage) EventName() string        { return EventPing }

func (m *IdentifyMessage) Validate() error    { return validateMessage(m) }
func (m *StartStreamMessage) Validate() error { return validateMessage(m) }
func (m *JoinStreamMessage) Validate() error  { return validateMessage(m) }
func (m *LeaveStreamMessage) Validate() error { return validateMessage(m) }
func (m *EndStreamMessage) Validate() error   { return validateMessage(m) }
func (m *SignalMessage) Validate() error      { return validateMessage(m) }
func (m *ChatMessage) Validate() error        { return validateMessage(m) }
func (m *TipMessage) Validate() error         { return nil }
func (m *PingMessage) Validate() error        { return nil }

// DisplayName returns the sender name under either spelling.
func (m *ChatMessage) DisplayName() string {
	if m.SenderName != "" {
		return m.SenderName
	}
	return m.Username
}

// DisplayRole returns the sender role under either spelling, defaulting to viewer.
func (m *ChatMessage) DisplayRole() string {
	switch {
	case m.SenderRole != "":
		return m.SenderRole
	case m.UserType != "":
		return m.UserType
	default:
		return string(RoleViewer)
	}
}

// DecodeInbound parses one client frame into its typed message and validates it.
func DecodeInbound(data []byte) (Inbound, error) {
	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	var msg Inbound
	switch base.Event {
	case EventIdentify:
		msg = &IdentifyMessage{}
	case EventStartStream:
		msg = &StartStreamMessage{}
	case EventJoinStream:
		msg = &JoinStreamMessage{}
	case EventLeaveStream:
		msg = &LeaveStreamMessage{}
	case EventEndStream, EventStopStream:
		msg = &EndStreamMessage{}
	case EventOffer, EventAnswer, EventICECandidate:
		msg = &SignalMessage{}
	case EventChatMessage:
		msg = &ChatMessage{}
	case EventTipMessage:
		msg = &TipMessage{}
	case EventPing:
		msg = &PingMessage{}
	case "":
		return nil, fmt.Errorf("%w: missing event", ErrMalformedMessage)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, base.Event)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedMessage, base.Event, err)
	}

	if sig, ok := msg.(*SignalMessage); ok && isEmptyJSON(sig.Payload) {
		sig.Payload = append(json.RawMessage(nil), data...)
	}

	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return msg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// validateMessage runs the struct tags and reports the first failing field
// under its wire name.
func validateMessage(m interface{}) error {
	err := validate.Struct(m)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "notblank", "required":
		return fmt.Errorf("%w: %s is required", ErrInvalidMessage, fe.Field())
	case "gt":
		return fmt.Errorf("%w: %s must be positive", ErrInvalidMessage, fe.Field())
	default:
		return fmt.Errorf("%w: %s is invalid", ErrInvalidMessage, fe.Field())
	}
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
