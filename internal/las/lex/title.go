package lex

import (
	"fmt"
	"strconv"
	"strings"
)

// Category is the logical type of a section.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryVersion
	CategoryWell
	CategoryParameter
	CategoryDefinition
	CategoryData
	CategoryOther
)

func (c Category) String() string {
	switch c {
	case CategoryVersion:
		return "Version"
	case CategoryWell:
		return "Well"
	case CategoryParameter:
		return "Parameter"
	case CategoryDefinition:
		return "Definition"
	case CategoryData:
		return "Data"
	case CategoryOther:
		return "Other"
	default:
		return "Unknown"
	}
}

// LogSet is the set name of the primary Parameter/Curve/ASCII triple.
const LogSet = "Log"

var knownSets = map[string]string{
	"log":          LogSet,
	"core":         "Core",
	"drilling":     "Drilling",
	"inclinometry": "Inclinometry",
	"tops":         "Tops",
	"test":         "Test",
}

var suffixes = map[string]Category{
	"parameter":  CategoryParameter,
	"definition": CategoryDefinition,
	"data":       CategoryData,
}

// SectionHeader is the decoded form of a "~Title[n] | Name" line.
type SectionHeader struct {
	// Title is the raw text after the marker, without the association.
	Title       string
	Set         string
	Category    Category
	Index       int
	Association string
	// Alias is set when the category was resolved from the legacy
	// single-letter form (~V, ~W, ~C, ~P, ~O, ~A).
	Alias bool
}

// Name returns the canonical section name, e.g. "Core_Definition[2]".
func (h SectionHeader) Name() string {
	var name string
	switch h.Category {
	case CategoryParameter, CategoryDefinition, CategoryData:
		name = h.Set + "_" + h.Category.String()
	case CategoryUnknown:
		name = strings.TrimSpace(h.Title)
	default:
		name = h.Category.String()
	}
	if h.Index > 0 {
		name += "[" + strconv.Itoa(h.Index) + "]"
	}
	return name
}

// Key is the case-insensitive identity of the section.
func (h SectionHeader) Key() string {
	return strings.ToLower(h.Name())
}

// SetKey identifies the Parameter/Definition/Data triple a section belongs to.
func (h SectionHeader) SetKey() string {
	if h.Index > 0 {
		return fmt.Sprintf("%s[%d]", strings.ToLower(h.Set), h.Index)
	}
	return strings.ToLower(h.Set)
}

// ParseTitle decodes the text following the section marker. Full keywords
// are tried first; otherwise the first letter selects a legacy category.
func ParseTitle(raw string) SectionHeader {
	return parseTitle(raw, true)
}

// ParseReference decodes the target of a "| Name" association. Legacy
// single-letter aliases are not applied to references.
func ParseReference(raw string) SectionHeader {
	return parseTitle(raw, false)
}

func parseTitle(raw string, aliases bool) SectionHeader {
	head := raw
	var assoc string
	if i := strings.IndexByte(raw, '|'); i >= 0 {
		head = raw[:i]
		assoc = strings.TrimSpace(raw[i+1:])
	}
	head = strings.TrimSpace(head)
	h := SectionHeader{Title: head, Association: assoc}

	fields := strings.Fields(head)
	if len(fields) == 0 {
		return h
	}
	word := fields[0]
	if open := strings.IndexByte(word, '['); open > 0 && strings.HasSuffix(word, "]") {
		n, err := strconv.Atoi(word[open+1 : len(word)-1])
		if err != nil || n < 1 {
			return h
		}
		h.Index = n
		word = word[:open]
	}

	lower := strings.ToLower(word)
	switch lower {
	case "version":
		h.Category = CategoryVersion
		return h
	case "well":
		h.Category = CategoryWell
		return h
	case "parameter":
		h.Category, h.Set = CategoryParameter, LogSet
		return h
	case "curve":
		h.Category, h.Set = CategoryDefinition, LogSet
		return h
	case "ascii":
		h.Category, h.Set = CategoryData, LogSet
		return h
	case "other":
		h.Category = CategoryOther
		return h
	}

	if sep := strings.LastIndexByte(lower, '_'); sep > 0 {
		if cat, ok := suffixes[lower[sep+1:]]; ok {
			h.Category = cat
			h.Set = canonicalSet(word[:sep])
			return h
		}
	}

	if !aliases {
		return h
	}
	h.Alias = true
	switch lower[0] {
	case 'v':
		h.Category = CategoryVersion
	case 'w':
		h.Category = CategoryWell
	case 'c':
		h.Category, h.Set = CategoryDefinition, LogSet
	case 'p':
		h.Category, h.Set = CategoryParameter, LogSet
	case 'o':
		h.Category = CategoryOther
	case 'a':
		h.Category, h.Set = CategoryData, LogSet
	default:
		h.Alias = false
	}
	return h
}

func canonicalSet(prefix string) string {
	if set, ok := knownSets[strings.ToLower(prefix)]; ok {
		return set
	}
	return prefix
}
