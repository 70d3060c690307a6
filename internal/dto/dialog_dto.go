package dto

import "gym-statistics/internal/entity"

// DialogMessageRequest is one inbound chat message from the messaging transport.
type DialogMessageRequest struct {
	Handle string `json:"handle" validate:"required,max=128"`
	Text   string `json:"text" validate:"max=4096"`
}

type DialogMessageResponse struct {
	Text           string     `json:"text"`
	Keyboard       [][]string `json:"keyboard,omitempty"`
	RemoveKeyboard bool       `json:"remove_keyboard"`
}

func NewDialogMessageResponse(reply *entity.DialogReply) *DialogMessageResponse {
	if reply == nil {
		return &DialogMessageResponse{}
	}
	return &DialogMessageResponse{
		Text:           reply.Text,
		Keyboard:       reply.Keyboard,
		RemoveKeyboard: reply.RemoveKeyboard,
	}
}
