package service

// ErrorKind tells which stage of answering failed.
type ErrorKind string

const (
	KindRetrieval  ErrorKind = "retrieval"
	KindCompletion ErrorKind = "completion"
)

const (
	prefixRAG        = "Error in RAG mode retrieval: "
	prefixAllDocs    = "Error in ALL_DOCS mode processing: "
	prefixCompletion = "Error in LLM API call: "
)

type AnswerError struct {
	Kind    ErrorKind
	Message string
}

func (e *AnswerError) Error() string { return e.Message }

// Answer is the outcome of one question. Exactly one of Text and Err is
// meaningful.
type Answer struct {
	RequestID   string
	Mode        Mode
	Prompt      string
	FragmentIDs []int
	Text        string
	Err         *AnswerError
}

// String renders the answer text, or the prefixed error message.
func (a Answer) String() string {
	if a.Err != nil {
		return a.Err.Message
	}
	return a.Text
}

func (a Answer) Failed() bool { return a.Err != nil }
