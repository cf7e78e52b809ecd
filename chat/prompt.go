package chat

import "strings"

// Prompt fragments used to synthesize system and user messages.
const (
	systemRolePrefix   = "You are a software developer with expert knowledge in "
	systemRoleSuffix   = " programming language."
	systemMarkdown     = "Always return the response in Markdown."
	systemCommandsInfo = "The promptctx plugin supports the following commands: " +
		"/test: write unit tests on selected code\n" +
		"/explain: explain the selected code\n" +
		"/review: review selected code\n" +
		"/custom: set custom prompt in settings"
	systemNoFabrication = "Do not include any more info which might be incorrect, " +
		"like discord, twitter, documentation or website info. " +
		"Only provide info that is correct and relevant to the code or plugin."

	questionPrefix = "The user question: "
	contextPrefix  = "Question context: \n"

	// defaultLanguage labels the system message when the editor language
	// is unknown.
	defaultLanguage = "programming"
)

// NewSystemMessage builds the fixed per-conversation system message for
// the given editor language. An empty language falls back to a generic
// label.
func NewSystemMessage(language string) Message {
	if language == "" {
		language = defaultLanguage
	}
	return SystemMessage(systemRolePrefix + language + systemRoleSuffix +
		systemMarkdown + "\n" +
		systemCommandsInfo + "\n" +
		systemNoFabrication)
}

// NewUserMessage builds the user turn from the prompt and its optional
// editor selection and assembled project context. With neither present
// the prompt is sent with just the question prefix.
func NewUserMessage(prompt, selectedText, projectContext string) Message {
	if selectedText == "" && projectContext == "" {
		return UserMessage(questionPrefix + " " + prompt)
	}

	var b strings.Builder
	b.WriteString(questionPrefix)
	b.WriteString(prompt)
	b.WriteString(contextPrefix)
	if selectedText != "" {
		b.WriteString(selectedText)
		b.WriteString("\n")
	}
	if projectContext != "" {
		b.WriteString(projectContext)
	}
	return UserMessage(b.String())
}
