package messaging

import (
	"bytes"
	"encoding/xml"
)

const twimlHeader = `<?xml version="1.0" encoding="UTF-8"?>`

// BuildTwiMLReply renders a message as the TwiML envelope Twilio expects
// back from a webhook. The message text is XML-escaped.
func BuildTwiMLReply(message string) string {
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(message))
	return twimlHeader + "<Response><Message>" + escaped.String() + "</Message></Response>"
}

// EmptyTwiMLResponse acknowledges a webhook without sending a message.
func EmptyTwiMLResponse() string {
	return twimlHeader + "<Response></Response>"
}
