package schema

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// LoadDefinitions reads a slapd-style schema file — one attributetype
// or objectclass definition per logical line, continuation lines
// indented with a space per RFC 2849 — and registers each one. Parse
// errors and registration conflicts are collected and returned
// together once the file is exhausted, so a single bad definition
// doesn't hide the rest.
func (r *Registry) LoadDefinitions(rd io.Reader) error {
	var errs []string
	for _, line := range unfoldLines(rd) {
		kw, body, ok := splitKeyword(line)
		if !ok {
			continue
		}

		switch kw {
		case "attributetype":
			at, err := ParseAttributeType(body)
			if err != nil {
				errs = append(errs, err.Error())
				continue
			}
			if err := r.RegisterAttributeType(at); err != nil {
				errs = append(errs, err.Error())
			}

		case "objectclass":
			oc, err := ParseObjectClass(body)
			if err != nil {
				errs = append(errs, err.Error())
				continue
			}
			if err := r.RegisterObjectClass(oc); err != nil {
				errs = append(errs, err.Error())
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("schema: %d definition(s) failed to load:\n%s", len(errs), strings.Join(errs, "\n"))
	}
	return nil
}

// unfoldLines joins RFC 2849 line-folding continuations (a line
// beginning with a single space is a continuation of the previous
// one) into one logical line per definition.
func unfoldLines(rd io.Reader) []string {
	var lines []string
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, " ") && len(lines) > 0 {
			lines[len(lines)-1] += strings.TrimPrefix(line, " ")
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func splitKeyword(line string) (kw, body string, ok bool) {
	line = strings.TrimSpace(line)
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return "", "", false
	}
	kw = strings.ToLower(line[:i])
	if kw != "attributetype" && kw != "objectclass" {
		return "", "", false
	}
	return kw, strings.TrimSpace(line[i+1:]), true
}
