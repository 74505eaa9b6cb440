package domain

import (
	"path"
	"strings"
)

// FileCategory groups file types by how they are presented.
type FileCategory string

// Available file categories.
const (
	CategoryCode         FileCategory = "code"
	CategoryPlainText    FileCategory = "plaintext"
	CategoryMarkdown     FileCategory = "markdown"
	CategoryMarkup       FileCategory = "markup"
	CategoryTabular      FileCategory = "tabular"
	CategoryNotebook     FileCategory = "notebook"
	CategoryImage        FileCategory = "image"
	CategoryPDF          FileCategory = "pdf"
	CategoryVideo        FileCategory = "video"
	CategoryAudio        FileCategory = "audio"
	CategoryLayeredImage FileCategory = "layered_image"
)

// IsBinary reports whether files of this category are presented from their
// raw bytes. Automatic text decoding is skipped for them.
func (c FileCategory) IsBinary() bool {
	switch c {
	case CategoryImage, CategoryPDF, CategoryVideo, CategoryAudio, CategoryLayeredImage:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c FileCategory) String() string {
	return string(c)
}

// FileType is the type detected for a file from its name.
type FileType struct {
	// Type is the language or format identifier, e.g. "go", "markdown", "png".
	Type string

	// DisplayName is the human-readable name, e.g. "Go", "Markdown".
	DisplayName string

	// Extension is the lower-cased extension including the dot, or empty.
	Extension string

	// Category decides which renderer family presents the file.
	Category FileCategory
}

// IsZero reports whether no type was detected.
func (t FileType) IsZero() bool {
	return t.Type == ""
}

type fileTypeInfo struct {
	typ      string
	display  string
	category FileCategory
}

// plainText is the fallback for unknown file names.
var plainText = fileTypeInfo{"plaintext", "Plain Text", CategoryPlainText}

// fileTypesByName holds exact file name matches. These take precedence
// over the extension table.
var fileTypesByName = map[string]fileTypeInfo{
	"dockerfile":     {"dockerfile", "Dockerfile", CategoryCode},
	"containerfile":  {"dockerfile", "Dockerfile", CategoryCode},
	"makefile":       {"makefile", "Makefile", CategoryCode},
	"gnumakefile":    {"makefile", "Makefile", CategoryCode},
	"cmakelists.txt": {"cmake", "CMake", CategoryCode},
	"gemfile":        {"ruby", "Ruby", CategoryCode},
	"rakefile":       {"ruby", "Ruby", CategoryCode},
	"podfile":        {"ruby", "Ruby", CategoryCode},
	"vagrantfile":    {"ruby", "Ruby", CategoryCode},
	"jenkinsfile":    {"groovy", "Groovy", CategoryCode},
	"procfile":       {"yaml", "YAML", CategoryCode},
	"go.mod":         {"gomod", "Go Module", CategoryCode},
	"go.sum":         {"plaintext", "Go Checksums", CategoryPlainText},
	".gitignore":     {"ignore", "Ignore", CategoryCode},
	".dockerignore":  {"ignore", "Ignore", CategoryCode},
	".npmignore":     {"ignore", "Ignore", CategoryCode},
	".editorconfig":  {"ini", "INI", CategoryCode},
	".env":           {"dotenv", "Environment", CategoryCode},
	".bashrc":        {"shell", "Shell Script", CategoryCode},
	".zshrc":         {"shell", "Shell Script", CategoryCode},
	"license":        {"plaintext", "License", CategoryPlainText},
}

// fileTypesByExtension maps lower-cased extensions to types.
var fileTypesByExtension = map[string]fileTypeInfo{
	// Images
	".png":  {"png", "PNG Image", CategoryImage},
	".jpg":  {"jpeg", "JPEG Image", CategoryImage},
	".jpeg": {"jpeg", "JPEG Image", CategoryImage},
	".gif":  {"gif", "GIF Image", CategoryImage},
	".webp": {"webp", "WebP Image", CategoryImage},
	".bmp":  {"bmp", "Bitmap Image", CategoryImage},
	".ico":  {"ico", "Icon", CategoryImage},
	".svg":  {"svg", "SVG Image", CategoryImage},
	".psd":  {"psd", "Photoshop Document", CategoryLayeredImage},

	// Documents
	".pdf":      {"pdf", "PDF", CategoryPDF},
	".md":       {"markdown", "Markdown", CategoryMarkdown},
	".mdx":      {"mdx", "MDX", CategoryMarkdown},
	".markdown": {"markdown", "Markdown", CategoryMarkdown},
	".adoc":     {"asciidoc", "AsciiDoc", CategoryMarkup},
	".asciidoc": {"asciidoc", "AsciiDoc", CategoryMarkup},
	".rst":      {"restructuredtext", "reStructuredText", CategoryMarkup},
	".csv":      {"csv", "CSV", CategoryTabular},
	".tsv":      {"tsv", "TSV", CategoryTabular},
	".ipynb":    {"ipynb", "Jupyter Notebook", CategoryNotebook},
	".txt":      {"plaintext", "Plain Text", CategoryPlainText},
	".log":      {"plaintext", "Log", CategoryPlainText},

	// Media
	".mp4":  {"mp4", "MP4 Video", CategoryVideo},
	".webm": {"webm", "WebM Video", CategoryVideo},
	".mov":  {"mov", "QuickTime Video", CategoryVideo},
	".ogv":  {"ogv", "Ogg Video", CategoryVideo},
	".mp3":  {"mp3", "MP3 Audio", CategoryAudio},
	".wav":  {"wav", "WAV Audio", CategoryAudio},
	".ogg":  {"ogg", "Ogg Audio", CategoryAudio},
	".flac": {"flac", "FLAC Audio", CategoryAudio},
	".m4a":  {"m4a", "AAC Audio", CategoryAudio},

	// Code
	".go":      {"go", "Go", CategoryCode},
	".js":      {"javascript", "JavaScript", CategoryCode},
	".mjs":     {"javascript", "JavaScript", CategoryCode},
	".cjs":     {"javascript", "JavaScript", CategoryCode},
	".jsx":     {"javascript", "JavaScript React", CategoryCode},
	".ts":      {"typescript", "TypeScript", CategoryCode},
	".tsx":     {"typescript", "TypeScript React", CategoryCode},
	".py":      {"python", "Python", CategoryCode},
	".pyi":     {"python", "Python", CategoryCode},
	".rb":      {"ruby", "Ruby", CategoryCode},
	".rs":      {"rust", "Rust", CategoryCode},
	".java":    {"java", "Java", CategoryCode},
	".kt":      {"kotlin", "Kotlin", CategoryCode},
	".kts":     {"kotlin", "Kotlin", CategoryCode},
	".scala":   {"scala", "Scala", CategoryCode},
	".swift":   {"swift", "Swift", CategoryCode},
	".c":       {"c", "C", CategoryCode},
	".h":       {"c", "C", CategoryCode},
	".cc":      {"cpp", "C++", CategoryCode},
	".cpp":     {"cpp", "C++", CategoryCode},
	".cxx":     {"cpp", "C++", CategoryCode},
	".hpp":     {"cpp", "C++", CategoryCode},
	".cs":      {"csharp", "C#", CategoryCode},
	".fs":      {"fsharp", "F#", CategoryCode},
	".php":     {"php", "PHP", CategoryCode},
	".pl":      {"perl", "Perl", CategoryCode},
	".lua":     {"lua", "Lua", CategoryCode},
	".r":       {"r", "R", CategoryCode},
	".dart":    {"dart", "Dart", CategoryCode},
	".ex":      {"elixir", "Elixir", CategoryCode},
	".exs":     {"elixir", "Elixir", CategoryCode},
	".erl":     {"erlang", "Erlang", CategoryCode},
	".hs":      {"haskell", "Haskell", CategoryCode},
	".clj":     {"clojure", "Clojure", CategoryCode},
	".zig":     {"zig", "Zig", CategoryCode},
	".sh":      {"shell", "Shell Script", CategoryCode},
	".bash":    {"shell", "Shell Script", CategoryCode},
	".zsh":     {"shell", "Shell Script", CategoryCode},
	".ps1":     {"powershell", "PowerShell", CategoryCode},
	".bat":     {"bat", "Batch", CategoryCode},
	".sql":     {"sql", "SQL", CategoryCode},
	".graphql": {"graphql", "GraphQL", CategoryCode},
	".proto":   {"protobuf", "Protocol Buffers", CategoryCode},
	".html":    {"html", "HTML", CategoryCode},
	".htm":     {"html", "HTML", CategoryCode},
	".css":     {"css", "CSS", CategoryCode},
	".scss":    {"scss", "SCSS", CategoryCode},
	".less":    {"less", "Less", CategoryCode},
	".vue":     {"vue", "Vue", CategoryCode},
	".svelte":  {"svelte", "Svelte", CategoryCode},
	".json":    {"json", "JSON", CategoryCode},
	".jsonc":   {"json", "JSON", CategoryCode},
	".yaml":    {"yaml", "YAML", CategoryCode},
	".yml":     {"yaml", "YAML", CategoryCode},
	".toml":    {"toml", "TOML", CategoryCode},
	".ini":     {"ini", "INI", CategoryCode},
	".xml":     {"xml", "XML", CategoryCode},
	".tf":      {"hcl", "Terraform", CategoryCode},
	".hcl":     {"hcl", "HCL", CategoryCode},
	".diff":    {"diff", "Diff", CategoryCode},
	".patch":   {"diff", "Diff", CategoryCode},
	".tex":     {"latex", "LaTeX", CategoryCode},
}

// DetectFileType looks up the type of a file by name. Exact file name
// matches take precedence over extension matches; unknown names fall back
// to plain text. Lookups are case-insensitive.
func DetectFileType(name string) FileType {
	base := strings.ToLower(path.Base(strings.TrimSpace(name)))
	ext := Extension(base)

	info, ok := fileTypesByName[base]
	if !ok {
		info, ok = fileTypesByExtension[ext]
	}
	if !ok {
		info = plainText
	}

	return FileType{
		Type:        info.typ,
		DisplayName: info.display,
		Extension:   ext,
		Category:    info.category,
	}
}

// Extension returns the lower-cased extension of name including the dot.
// Names without a dot have no extension.
func Extension(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx:])
}
