package verify

import "slices"

// sameDefinition reports whether two CREATE statements define the same object.
//
// SQLite keeps the statement text from the object name onward and prefixes it
// with a bare "CREATE TABLE" or "CREATE VIEW", so TEMP and IF NOT EXISTS never
// survive into the catalog. Keywords and identifiers compare without regard to
// ASCII case or quoting. String literals compare byte for byte.
func sameDefinition(a, b string) bool {
	return slices.Equal(stripHeader(definitionTokens(a)), stripHeader(definitionTokens(b)))
}

// stripHeader rewrites "create [temp|temporary] table|view [if not exists]"
// to "create table|view".
func stripHeader(tokens []string) []string {
	if len(tokens) < 2 || tokens[0] != "create" {
		return tokens
	}
	i := 1
	if tokens[i] == "temp" || tokens[i] == "temporary" {
		i++
	}
	if i >= len(tokens) || (tokens[i] != "table" && tokens[i] != "view") {
		return tokens
	}
	kind := tokens[i]
	i++
	if i+2 < len(tokens) && tokens[i] == "if" && tokens[i+1] == "not" && tokens[i+2] == "exists" {
		i += 3
	}
	return append([]string{"create", kind}, tokens[i:]...)
}

// definitionTokens splits a statement into tokens. Comments and whitespace are
// dropped, as is a trailing semicolon. Quoted identifiers lose their quotes.
func definitionTokens(sql string) []string {
	var tokens []string
	for i := 0; i < len(sql); {
		c := sql[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			i++
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			end := i + 2
			for end < len(sql) && !(sql[end] == '*' && end+1 < len(sql) && sql[end+1] == '/') {
				end++
			}
			i = min(end+2, len(sql))
		case c == '\'':
			end := quoted(sql, i, '\'')
			tokens = append(tokens, sql[i:end])
			i = end
		case c == '"' || c == '`' || c == '[':
			closing := c
			if c == '[' {
				closing = ']'
			}
			end := quoted(sql, i, closing)
			body := sql[i+1 : end]
			if end > i+1 && sql[end-1] == closing {
				body = sql[i+1 : end-1]
			}
			if c != '[' {
				body = unescape(body, closing)
			}
			tokens = append(tokens, lowerASCII(body))
			i = end
		case isWordByte(c):
			end := i
			for end < len(sql) && isWordByte(sql[end]) {
				end++
			}
			tokens = append(tokens, lowerASCII(sql[i:end]))
			i = end
		default:
			tokens = append(tokens, sql[i:i+1])
			i++
		}
	}
	if n := len(tokens); n > 0 && tokens[n-1] == ";" {
		tokens = tokens[:n-1]
	}
	return tokens
}

// quoted returns the offset just past the quoted run starting at sql[start].
// A doubled closing character is part of the run. An unterminated run ends
// the input.
func quoted(sql string, start int, closing byte) int {
	for i := start + 1; i < len(sql); i++ {
		if sql[i] != closing {
			continue
		}
		if closing != ']' && i+1 < len(sql) && sql[i+1] == closing {
			i++
			continue
		}
		return i + 1
	}
	return len(sql)
}

func unescape(s string, quote byte) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		if s[i] == quote && i+1 < len(s) && s[i+1] == quote {
			if b == nil {
				b = append(make([]byte, 0, len(s)), s[:i]...)
			}
			b = append(b, quote)
			i++
			continue
		}
		if b != nil {
			b = append(b, s[i])
		}
	}
	if b == nil {
		return s
	}
	return string(b)
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// lowerASCII folds A-Z only, the way SQLite matches names.
func lowerASCII(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		if c := s[i]; 'A' <= c && c <= 'Z' {
			if b == nil {
				b = []byte(s)
			}
			b[i] = c + ('a' - 'A')
		}
	}
	if b == nil {
		return s
	}
	return string(b)
}

func sameName(a, b string) bool {
	return lowerASCII(a) == lowerASCII(b)
}
