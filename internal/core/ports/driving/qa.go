package driving

import "context"

// Source identifies a document that grounded an answer, with its similarity
// score against the question.
type Source struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// Answer is the synthesised response plus the documents it was grounded on,
// in ranked order.
type Answer struct {
	Text    string
	Sources []Source
}

// QAService answers questions over the document corpus. With a document ID
// it uses exactly that document as context; without one it retrieves the
// top five most similar documents.
type QAService interface {
	// Ask runs the retrieval pipeline and answer synthesis. An empty
	// docID selects corpus-wide mode.
	Ask(ctx context.Context, question, docID string) (*Answer, error)
}
