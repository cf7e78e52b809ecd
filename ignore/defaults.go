package ignore

// DefaultExcludedDirectories are directory names skipped when the caller
// does not configure an explicit set. Build output and dependency caches
// are never useful prompt context.
var DefaultExcludedDirectories = []string{
	// Version control
	".git",
	".svn",
	".hg",

	// Dependencies
	"node_modules",
	"vendor",
	"bower_components",

	// Build output
	"build",
	"out",
	"target",
	"dist",
	"bin",
	"obj",

	// IDE / Editor
	".idea",
	".vscode",
	".vs",

	// Python
	"__pycache__",
	".venv",
	"venv",

	// Caches and coverage
	".cache",
	".gradle",
	"coverage",
	".nyc_output",
}

// DefaultIncludedExtensions are the file extensions (without dot,
// lowercase) included when the caller does not configure an allow-list.
var DefaultIncludedExtensions = []string{
	"go",
	"java", "kt", "kts",
	"py",
	"js", "jsx", "mjs",
	"ts", "tsx",
	"rs",
	"c", "h", "cpp", "cc", "hpp",
	"cs",
	"rb",
	"php",
	"swift",
	"scala",
	"sh",
	"sql",
	"html", "css", "scss",
	"json", "yaml", "yml", "toml", "xml",
	"md",
	"proto",
	"gradle",
	"properties",
	"txt",
}
