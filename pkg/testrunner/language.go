package testrunner

import (
	"regexp"
	"strings"
)

// Language is a programming language the runner knows about.
type Language string

const (
	LanguageUnknown    Language = "unknown"
	LanguageJavaScript Language = "javascript"
	LanguagePython     Language = "python"
	LanguagePHP        Language = "php"
	LanguageGo         Language = "go"
	LanguageJava       Language = "java"
	LanguageDart       Language = "dart"
)

// Extension is the source file extension for the language.
func (l Language) Extension() string {
	switch l {
	case LanguageJavaScript:
		return "js"
	case LanguagePython:
		return "py"
	case LanguagePHP:
		return "php"
	case LanguageGo:
		return "go"
	case LanguageJava:
		return "java"
	case LanguageDart:
		return "dart"
	default:
		return "txt"
	}
}

var fenceTags = map[string]Language{
	"js":         LanguageJavaScript,
	"javascript": LanguageJavaScript,
	"jsx":        LanguageJavaScript,
	"node":       LanguageJavaScript,
	"py":         LanguagePython,
	"python":     LanguagePython,
	"python3":    LanguagePython,
	"php":        LanguagePHP,
	"go":         LanguageGo,
	"golang":     LanguageGo,
	"java":       LanguageJava,
	"dart":       LanguageDart,
	"flutter":    LanguageDart,
}

var taskKeywords = []struct {
	pattern  *regexp.Regexp
	language Language
}{
	{regexp.MustCompile(`\b(flutter|dart)\b`), LanguageDart},
	{regexp.MustCompile(`\b(golang|go module|go package)\b`), LanguageGo},
	{regexp.MustCompile(`\b(php|laravel)\b`), LanguagePHP},
	{regexp.MustCompile(`\b(python|py|django|flask)\b`), LanguagePython},
	{regexp.MustCompile(`\b(javascript|js|node|nodejs|express|react)\b`), LanguageJavaScript},
	{regexp.MustCompile(`\bjava\b`), LanguageJava},
}

// DetectLanguage guesses the language from the fence tag, then the task
// wording, then the shape of the code.
func DetectLanguage(task string, block CodeBlock) Language {
	if l, ok := fenceTags[strings.ToLower(block.Tag)]; ok {
		return l
	}

	taskLower := strings.ToLower(task)
	for _, kw := range taskKeywords {
		if kw.pattern.MatchString(taskLower) {
			return kw.language
		}
	}

	code := block.Code
	switch {
	case strings.Contains(code, "<?php"):
		return LanguagePHP
	case strings.HasPrefix(strings.TrimSpace(code), "package ") && strings.Contains(code, "func "):
		return LanguageGo
	case strings.Contains(code, "public class") || strings.Contains(code, "public static void main"):
		return LanguageJava
	case strings.Contains(code, "def ") && strings.Contains(code, ":"):
		return LanguagePython
	case strings.Contains(code, "function") || strings.Contains(code, "=>") || strings.Contains(code, "const "):
		return LanguageJavaScript
	case strings.Contains(code, "Widget"):
		return LanguageDart
	}
	return LanguageUnknown
}

// CodeBlock is one fenced block from a model answer.
type CodeBlock struct {
	Tag  string
	Code string
}

var fencePattern = regexp.MustCompile("(?s)```([A-Za-z0-9_+-]*)[^\\n]*\\n(.*?)```")

// ExtractCode returns every fenced code block in text, in order.
func ExtractCode(text string) []CodeBlock {
	var blocks []CodeBlock
	for _, m := range fencePattern.FindAllStringSubmatch(text, -1) {
		code := strings.TrimRight(m[2], "\n")
		if strings.TrimSpace(code) == "" {
			continue
		}
		blocks = append(blocks, CodeBlock{Tag: m[1], Code: code + "\n"})
	}
	return blocks
}
