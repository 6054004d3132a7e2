package object

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// encodeTree renders entries in the canonical wire format: per entry
// "<octal mode> <name>\x00" followed by the raw id bytes. Entries must
// already be in canonical order.
func encodeTree(entries []Entry) []byte {
	var buf bytes.Buffer
	for i := range entries {
		e := &entries[i]
		buf.WriteString(e.mode.String())
		buf.WriteByte(' ')
		buf.WriteString(e.name)
		buf.WriteByte(0)
		buf.Write(e.id[:])
	}
	return buf.Bytes()
}

// parseTree decodes a tree payload, validating strict canonical order
// and name uniqueness so later binary searches can trust the sequence.
func parseTree(id OID, data []byte) (*Tree, error) {
	var entries []Entry
	rest := data
	for len(rest) > 0 {
		sp := bytes.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("tree %s: truncated mode field", id.Short())
		}
		mode, err := ParseFileMode(string(rest[:sp]))
		if err != nil {
			return nil, fmt.Errorf("tree %s: %w", id.Short(), err)
		}
		rest = rest[sp+1:]

		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return nil, fmt.Errorf("tree %s: unterminated entry name", id.Short())
		}
		name := string(rest[:nul])
		if name == "" || strings.IndexByte(name, '/') >= 0 {
			return nil, fmt.Errorf("tree %s: invalid entry name %q", id.Short(), name)
		}
		rest = rest[nul+1:]

		if len(rest) < OIDSize {
			return nil, fmt.Errorf("tree %s: truncated entry id for %q", id.Short(), name)
		}
		var eid OID
		copy(eid[:], rest[:OIDSize])
		rest = rest[OIDSize:]

		entries = append(entries, Entry{name: name, mode: mode, id: eid})
	}

	for i := 1; i < len(entries); i++ {
		prev, cur := &entries[i-1], &entries[i]
		c := PathCompare(prev.name, prev.mode.IsTree(), cur.name, cur.mode.IsTree())
		if c > 0 {
			return nil, fmt.Errorf("tree %s: entries out of canonical order at %q", id.Short(), cur.name)
		}
		if c == 0 {
			return nil, fmt.Errorf("tree %s: duplicate entry name %q", id.Short(), cur.name)
		}
	}
	return &Tree{id: id, entries: entries}, nil
}

// encodeCommit renders the commit text format: tree and parent headers,
// author and committer signatures, a blank line, then the message.
func encodeCommit(c *Commit) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.TreeID)
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", p)
	}
	fmt.Fprintf(&buf, "author %s\n", formatSignature(c.Author))
	fmt.Fprintf(&buf, "committer %s\n", formatSignature(c.Committer))
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

func parseCommit(id OID, data []byte) (*Commit, error) {
	c := &Commit{id: id}
	rest := string(data)
	for {
		line, tail, found := strings.Cut(rest, "\n")
		if !found {
			return nil, fmt.Errorf("commit %s: missing message separator", id.Short())
		}
		rest = tail
		if line == "" {
			break
		}

		field, value, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("commit %s: malformed header %q", id.Short(), line)
		}
		var err error
		switch field {
		case "tree":
			c.TreeID, err = ParseOID(value)
		case "parent":
			var p OID
			if p, err = ParseOID(value); err == nil {
				c.Parents = append(c.Parents, p)
			}
		case "author":
			c.Author, err = parseSignature(value)
		case "committer":
			c.Committer, err = parseSignature(value)
		}
		if err != nil {
			return nil, fmt.Errorf("commit %s: %w", id.Short(), err)
		}
	}
	c.Message = rest
	if c.TreeID.IsZero() {
		return nil, fmt.Errorf("commit %s: missing tree header", id.Short())
	}
	return c, nil
}

func formatSignature(s Signature) string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.When.Unix(), tzOffset(s.When))
}

func parseSignature(s string) (Signature, error) {
	open := strings.IndexByte(s, '<')
	end := strings.IndexByte(s, '>')
	if open < 0 || end < open {
		return Signature{}, fmt.Errorf("malformed signature %q", s)
	}
	sig := Signature{
		Name:  strings.TrimSpace(s[:open]),
		Email: s[open+1 : end],
	}

	fields := strings.Fields(s[end+1:])
	if len(fields) < 1 {
		return Signature{}, fmt.Errorf("malformed signature %q", s)
	}
	unix, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("malformed signature time in %q: %w", s, err)
	}
	loc := time.UTC
	if len(fields) >= 2 {
		if off, err := parseTZ(fields[1]); err == nil {
			loc = time.FixedZone(fields[1], off)
		}
	}
	sig.When = time.Unix(unix, 0).In(loc)
	return sig, nil
}

func tzOffset(t time.Time) string {
	_, off := t.Zone()
	sign := "+"
	if off < 0 {
		sign = "-"
		off = -off
	}
	return fmt.Sprintf("%s%02d%02d", sign, off/3600, (off%3600)/60)
}

func parseTZ(s string) (int, error) {
	if len(s) != 5 || (s[0] != '+' && s[0] != '-') {
		return 0, fmt.Errorf("malformed timezone %q", s)
	}
	h, err := strconv.Atoi(s[1:3])
	if err != nil {
		return 0, fmt.Errorf("malformed timezone %q", s)
	}
	m, err := strconv.Atoi(s[3:5])
	if err != nil {
		return 0, fmt.Errorf("malformed timezone %q", s)
	}
	off := h*3600 + m*60
	if s[0] == '-' {
		off = -off
	}
	return off, nil
}
