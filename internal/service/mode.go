package service

import "strings"

// Mode selects how a question is grounded before it reaches the completion
// service.
type Mode string

const (
	ModeRAG     Mode = "rag"
	ModeAllDocs Mode = "all_docs"
	ModeBase    Mode = "base_model"
)

// Modes lists the modes in the order the UI cycles through them.
func Modes() []Mode { return []Mode{ModeRAG, ModeAllDocs, ModeBase} }

// ParseMode normalizes s. Unknown values are kept and answered in base mode.
func ParseMode(s string) Mode {
	return Mode(strings.ToLower(strings.TrimSpace(s)))
}

func (m Mode) String() string { return string(m) }

// Label is the human-readable name shown in the UI.
func (m Mode) Label() string {
	switch m {
	case ModeRAG:
		return "RAG"
	case ModeAllDocs:
		return "All documents"
	default:
		return "Base model"
	}
}
