// Package parser extracts inline annotations from notice text: #tag hashtag
// references, !name group references and @user mentions.
package parser

import (
	"fmt"
	"regexp"
)

// DefaultTagPattern matches hashtag and group identifiers.
const DefaultTagPattern = `[a-zA-Z0-9][a-zA-Z0-9_\-]*`

// DefaultUsernamePattern matches usernames in @mentions.
const DefaultUsernamePattern = `[a-zA-Z0-9][a-zA-Z0-9_.\-]*`

// Annotations is the parse result for one notice text. Slices keep text
// order and may contain duplicates; callers dedupe before counting.
type Annotations struct {
	Tags      []string
	Groups    []string
	Usernames []string
}

// Parser scans notice text with one combined pattern recognizing three
// mutually exclusive alternatives per match. Matches never overlap.
type Parser struct {
	re     *regexp.Regexp
	nameRE *regexp.Regexp
	userRE *regexp.Regexp
}

// New compiles a parser from the given identifier grammars. Tag and group
// names share tagPattern; mentions use usernamePattern.
func New(tagPattern, usernamePattern string) (*Parser, error) {
	re, err := regexp.Compile(fmt.Sprintf(`#(%s)|!(%s)|@(%s)`,
		tagPattern, tagPattern, usernamePattern))
	if err != nil {
		return nil, fmt.Errorf("compile annotation pattern: %w", err)
	}
	nameRE, err := regexp.Compile(fmt.Sprintf(`^(?:%s)$`, tagPattern))
	if err != nil {
		return nil, fmt.Errorf("compile name pattern: %w", err)
	}
	userRE, err := regexp.Compile(fmt.Sprintf(`^(?:%s)$`, usernamePattern))
	if err != nil {
		return nil, fmt.Errorf("compile username pattern: %w", err)
	}
	return &Parser{re: re, nameRE: nameRE, userRE: userRE}, nil
}

// ValidName reports whether s is a well-formed tag or group name on its own.
func (p *Parser) ValidName(s string) bool {
	return p.nameRE.MatchString(s)
}

// ValidUsername reports whether s is a well-formed username on its own.
func (p *Parser) ValidUsername(s string) bool {
	return p.userRE.MatchString(s)
}

// MustNew is New for static patterns; it panics on a bad pattern.
func MustNew(tagPattern, usernamePattern string) *Parser {
	p, err := New(tagPattern, usernamePattern)
	if err != nil {
		panic(err)
	}
	return p
}

// Parse scans text and returns the annotations found. Unannotated text is
// ignored; empty text yields empty slices. Parsing is deterministic and
// never fails.
func (p *Parser) Parse(text string) Annotations {
	var ann Annotations
	for _, m := range p.re.FindAllStringSubmatch(text, -1) {
		switch {
		case m[1] != "":
			ann.Tags = append(ann.Tags, m[1])
		case m[2] != "":
			ann.Groups = append(ann.Groups, m[2])
		case m[3] != "":
			ann.Usernames = append(ann.Usernames, m[3])
		}
	}
	return ann
}
