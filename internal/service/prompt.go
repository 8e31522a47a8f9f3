package service

const (
	groundedPreamble = "Berdasarkan informasi berikut (jawablah dalam Bahasa Indonesia)!\n"
	basePreamble     = "Jawablah dalam Bahasa Indonesia!\n"
)

// GroundedPrompt asks for an Indonesian answer using only the given context.
func GroundedPrompt(context, question string) string {
	return groundedPreamble + context + "\n\nPertanyaan: " + question + "\nJawaban:"
}

// BasePrompt carries no corpus content at all.
func BasePrompt(question string) string {
	return basePreamble + question
}
