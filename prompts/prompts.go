package prompts

import _ "embed"

// Embedded prompt files

//go:embed docs_assistant.txt
var docsAssistant string

//go:embed title_generator.txt
var titleGenerator string

func DocsAssistant() string  { return docsAssistant }
func TitleGenerator() string { return titleGenerator }
