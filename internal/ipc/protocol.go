package ipc

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// MessageType identifies a control message
type MessageType string

const (
	MessageTypeStatus         MessageType = "status"
	MessageTypeStatusResponse MessageType = "status_response"
	MessageTypeStop           MessageType = "stop"
	MessageTypeShowLauncher   MessageType = "show_launcher"
	MessageTypeAck            MessageType = "ack"
	MessageTypeError          MessageType = "error"
)

const typeField = "type"

// StatusResponse is the session state reported to control clients
type StatusResponse struct {
	Running       bool
	Engine        string
	Inhibited     bool
	Owner         uint32
	Clients       int
	Resources     int
	Windows       int
	ActiveWindow  uint64
	UptimeSeconds float64
	LauncherKey   string
	StopKey       string
}

// TypeOf returns the type of msg, or an empty type when it carries none
func TypeOf(msg *structpb.Struct) MessageType {
	v, ok := msg.GetFields()[typeField]
	if !ok {
		return ""
	}
	return MessageType(v.GetStringValue())
}

func newMessage(t MessageType) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		typeField: structpb.NewStringValue(string(t)),
	}}
}

// NewStatusMessage creates a status query
func NewStatusMessage() *structpb.Struct {
	return newMessage(MessageTypeStatus)
}

// NewStopMessage asks the session to stop
func NewStopMessage() *structpb.Struct {
	return newMessage(MessageTypeStop)
}

// NewShowLauncherMessage asks the session to show the launcher
func NewShowLauncherMessage() *structpb.Struct {
	return newMessage(MessageTypeShowLauncher)
}

// NewAckMessage acknowledges a command
func NewAckMessage() *structpb.Struct {
	return newMessage(MessageTypeAck)
}

// NewErrorMessage creates an error response
func NewErrorMessage(errMsg string) *structpb.Struct {
	msg := newMessage(MessageTypeError)
	msg.Fields["error"] = structpb.NewStringValue(errMsg)
	return msg
}

// NewStatusResponseMessage creates a status response
func NewStatusResponseMessage(status *StatusResponse) (*structpb.Struct, error) {
	msg, err := structpb.NewStruct(map[string]any{
		typeField:        string(MessageTypeStatusResponse),
		"running":        status.Running,
		"engine":         status.Engine,
		"inhibited":      status.Inhibited,
		"owner":          status.Owner,
		"clients":        status.Clients,
		"resources":      status.Resources,
		"windows":        status.Windows,
		"active_window":  status.ActiveWindow,
		"uptime_seconds": status.UptimeSeconds,
		"launcher_key":   status.LauncherKey,
		"stop_key":       status.StopKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode status: %w", err)
	}
	return msg, nil
}

// GetStatusResponse extracts the status from a status response
func GetStatusResponse(msg *structpb.Struct) (*StatusResponse, error) {
	if TypeOf(msg) != MessageTypeStatusResponse {
		return nil, fmt.Errorf("message is not a status response")
	}

	f := msg.GetFields()
	return &StatusResponse{
		Running:       f["running"].GetBoolValue(),
		Engine:        f["engine"].GetStringValue(),
		Inhibited:     f["inhibited"].GetBoolValue(),
		Owner:         uint32(f["owner"].GetNumberValue()),
		Clients:       int(f["clients"].GetNumberValue()),
		Resources:     int(f["resources"].GetNumberValue()),
		Windows:       int(f["windows"].GetNumberValue()),
		ActiveWindow:  uint64(f["active_window"].GetNumberValue()),
		UptimeSeconds: f["uptime_seconds"].GetNumberValue(),
		LauncherKey:   f["launcher_key"].GetStringValue(),
		StopKey:       f["stop_key"].GetStringValue(),
	}, nil
}

// GetErrorResponse extracts the message of an error response
func GetErrorResponse(msg *structpb.Struct) (string, error) {
	if TypeOf(msg) != MessageTypeError {
		return "", fmt.Errorf("message is not an error response")
	}
	return msg.GetFields()["error"].GetStringValue(), nil
}
