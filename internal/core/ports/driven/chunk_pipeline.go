package driven

// TextSpan is a piece of extracted text on its way to becoming a chunk
type TextSpan struct {
	Content     string
	Position    int // Index within the source (0-based)
	StartOffset int // Byte offset from the start of the source text
	EndOffset   int
}

// ChunkProcessor is one stage of the chunking pipeline.
// The first stage (the splitter) receives a single span holding the whole text.
type ChunkProcessor interface {
	Process(spans []TextSpan) []TextSpan

	// Name returns the stage name for logging
	Name() string

	// Order returns the stage position (lower = earlier)
	Order() int
}

// ChunkPipeline turns a source text into the spans that get embedded
type ChunkPipeline interface {
	Process(content string) []TextSpan
	Add(processor ChunkProcessor)
	List() []string
}
