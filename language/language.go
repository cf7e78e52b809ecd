// Package language maps files to programming languages and detects
// binary content that cannot be included in a prompt.
package language

import (
	"path/filepath"
	"strings"
)

// byExtension maps file extensions (without dot) to language names.
var byExtension = map[string]string{
	"go": "Go",
	"js": "JavaScript", "jsx": "JavaScript", "mjs": "JavaScript",
	"ts": "TypeScript", "tsx": "TypeScript",
	"py": "Python", "pyi": "Python",
	"rs":   "Rust",
	"java": "Java", "kt": "Kotlin", "kts": "Kotlin",
	"c": "C", "h": "C",
	"cpp": "C++", "cc": "C++", "hpp": "C++",
	"cs":    "C#",
	"swift": "Swift",
	"rb":    "Ruby",
	"php":   "PHP",
	"scala": "Scala",
	"sh":    "Shell", "bash": "Shell", "zsh": "Shell",
	"html": "HTML", "css": "CSS", "scss": "SCSS",
	"json": "JSON", "yaml": "YAML", "yml": "YAML", "toml": "TOML", "xml": "XML",
	"md":         "Markdown",
	"sql":        "SQL",
	"proto":      "Protobuf",
	"gradle":     "Gradle",
	"properties": "Properties",
	"txt":        "Text",
}

// byBasename covers well-known extensionless files.
var byBasename = map[string]string{
	"makefile":   "Makefile",
	"dockerfile": "Dockerfile",
	"gemfile":    "Ruby",
	"rakefile":   "Ruby",
	".gitignore": "Git Config",
}

// Detect returns the language for a file path, or "Unknown".
func Detect(filePath string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), "."))
	if lang, ok := byExtension[ext]; ok {
		return lang
	}
	if lang, ok := byBasename[strings.ToLower(filepath.Base(filePath))]; ok {
		return lang
	}
	return "Unknown"
}

// IsBinaryContent reports whether data looks like binary content. A null
// byte within the first 512 bytes is the signal.
func IsBinaryContent(data []byte) bool {
	probe := data
	if len(probe) > 512 {
		probe = probe[:512]
	}
	for _, b := range probe {
		if b == 0 {
			return true
		}
	}
	return false
}
