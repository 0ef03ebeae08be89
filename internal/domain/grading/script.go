package grading

import (
	"path/filepath"
	"strings"
)

// Language identifies the runtime needed to execute a script.
type Language string

const (
	LanguagePython Language = "python"
	LanguageGo     Language = "go"
)

// Script references a student script on disk, ready for execution.
type Script struct {
	ID       string
	Path     string
	Language Language
	Limits   RunLimits
}

// LanguageForPath infers the script language from its file extension.
// The second return value is false when the extension is not recognized.
func LanguageForPath(path string) (Language, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return LanguagePython, true
	case ".go":
		return LanguageGo, true
	default:
		return "", false
	}
}
