package models

import "encoding/json"

// MessageRecord is one inbound message kept in the volatile history.
// Raw retains the transport's opaque payload so a message can later be
// rehydrated (quoted, resent) by the transport; it is never parsed by
// the core beyond the text extraction in ExtractText.
type MessageRecord struct {
	ID         string          `json:"id,omitempty"`
	ChatJID    string          `json:"chatJid"`
	FromMe     bool            `json:"fromMe"`
	SenderName string          `json:"senderName,omitempty"`
	TS         int64           `json:"ts"`
	Text       string          `json:"text,omitempty"`
	Raw        json.RawMessage `json:"-"`
}

// payloadText mirrors the subset of the transport payload that can carry
// a text body. Field order below is also the extraction fallback order.
type payloadText struct {
	Conversation string `json:"conversation"`
	Extended     struct {
		Text string `json:"text"`
	} `json:"extendedTextMessage"`
	Image struct {
		Caption string `json:"caption"`
	} `json:"imageMessage"`
	Video struct {
		Caption string `json:"caption"`
	} `json:"videoMessage"`
	Document struct {
		Caption string `json:"caption"`
	} `json:"documentMessage"`
}

// ExtractText pulls a display text out of an opaque message payload.
// Fallback order: conversation, extendedTextMessage.text, then the
// caption of image/video/document sub-messages. Returns "" when no
// sub-field matches or the payload is not JSON.
func ExtractText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var p payloadText
	if err := json.Unmarshal(raw, &p); err != nil {
		return ""
	}
	switch {
	case p.Conversation != "":
		return p.Conversation
	case p.Extended.Text != "":
		return p.Extended.Text
	case p.Image.Caption != "":
		return p.Image.Caption
	case p.Video.Caption != "":
		return p.Video.Caption
	case p.Document.Caption != "":
		return p.Document.Caption
	}
	return ""
}
