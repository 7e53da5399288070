package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Парсерные: узлы ERROR/MISSING из tree-sitter
	SynInfo         Code = 2000
	SynSyntaxError  Code = 2001
	SynMissingToken Code = 2002
	SynStrayReturn  Code = 2003 // return вне функции; tree-sitter его принимает

	// Ошибки I/O
	IOLoadFileError Code = 4001

	// Правила линтера
	LintInfo          Code = 5000
	LintNoReturnAwait Code = 5001

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

type codeInfo struct {
	scope string
	name  string
	title string
}

var codeTable = map[Code]codeInfo{
	UnknownCode:       {"internal", "unknown", "Unknown error"},
	SynInfo:           {"parser", "info", "Syntax information"},
	SynSyntaxError:    {"parser", "syntax-error", "Syntax error"},
	SynMissingToken:   {"parser", "missing-token", "Missing token"},
	SynStrayReturn:    {"parser", "return-outside-function", "Return outside of a function"},
	IOLoadFileError:   {"io", "load-file", "Cannot load file"},
	LintInfo:          {"eslint", "info", "Lint information"},
	LintNoReturnAwait: {"eslint", "no-return-await", "Disallow unnecessary return await"},
	ObsInfo:           {"observ", "info", "Observability information"},
	ObsTimings:        {"observ", "timings", "Pipeline timings"},
}

func (c Code) info() codeInfo {
	if ci, ok := codeTable[c]; ok {
		return ci
	}
	return codeTable[UnknownCode]
}

// ID returns the stable numeric identifier, e.g. "LNT5001".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("LNT%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

// Name is the rule identifier, e.g. "no-return-await".
func (c Code) Name() string {
	return c.info().name
}

// Scope is the plugin namespace shown before the name.
func (c Code) Scope() string {
	return c.info().scope
}

// Title is a short human description of the code.
func (c Code) Title() string {
	return c.info().title
}

// String renders the code the way report headers show it:
// "eslint(no-return-await)".
func (c Code) String() string {
	return fmt.Sprintf("%s(%s)", c.Scope(), c.Name())
}

// CodeByName looks a code up by its rule name. Only lint rules are
// addressable by name.
func CodeByName(name string) (Code, bool) {
	for c, ci := range codeTable {
		if ci.scope == "eslint" && ci.name == name {
			return c, true
		}
	}
	return UnknownCode, false
}
