package models

const (
	// DefaultChunkBudget is the word budget used for both ingestion and
	// map-reduce chat.
	DefaultChunkBudget = 1500

	// DefaultTopN is the number of sections retrieved per query.
	DefaultTopN = 5

	// DefaultWindow is the carried-history size between map-reduce turns.
	DefaultWindow = 1

	// DefaultTemperature is applied to every completion call.
	DefaultTemperature = 0.2

	// RefusalSentence is the literal reply the model is told to emit when
	// the retrieved sections cannot answer the question.
	RefusalSentence = "I cannot find the answer in the provided documents."
)

var (
	// SectionHeaderTemplate labels one retrieved chunk: id, then text.
	SectionHeaderTemplate = "Document section %s:\n%s\n\n"

	// RetrievalInstruction directs the model to answer only from the
	// sections above it in the prompt.
	RetrievalInstruction = `Answer the request below using only the document sections above. If the sections do not contain the information needed, reply exactly: "` + RefusalSentence + `"

`

	// MapSingleTemplate is used when the whole document fits in one chunk.
	MapSingleTemplate = `Here is a document:

%s

%s`

	// MapIntermediateTemplate is used for every chunk but the last of a
	// multi-chunk document.
	MapIntermediateTemplate = `I am sending you a document in parts because it is too large to fit in your context window. Here is part %d of %d:

%s

%s

This is not the last part, so do not give a final answer yet. Produce an intermediate answer I can review, with the quotes or summary you will need to carry forward.`

	// MapFinalTemplate is used for the last chunk of a multi-chunk document.
	MapFinalTemplate = `Here is part %d of %d, the final part of the document:

%s

Combine your understanding from the earlier parts with this part and answer: %s`
)
