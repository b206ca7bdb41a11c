package chat

// SystemInstruction fixes the answer format: paragraphs separated by a
// blank line. Sent as the leading system message of every turn.
const SystemInstruction = "You are an AI assistant for reviewing documents. " +
	"Please structure your response with clear paragraphs separated by double newlines (\n\n). " +
	"Focus on answering the question with accurate information from the document."

// ErrorMessageText is the fixed assistant message committed when a turn
// fails for any reason other than cancellation. Internal errors are never
// surfaced verbatim.
const ErrorMessageText = "Error: Unable to respond. Please try again."

// UploadNoticeText is the system notice appended to a fresh transcript
// when a document finishes ingesting.
const UploadNoticeText = "Document uploaded successfully. You can now ask questions about it."

// UploadFailedText is the system notice recorded when an upload cannot be
// processed.
const UploadFailedText = "Error: Unable to process the document. Please try again."

// groundingMessage wraps the document's full text as the grounding context
// message that precedes the conversation history.
func groundingMessage(fullText string) Message {
	return Message{Role: RoleUser, Content: "Document text:\n" + fullText}
}
