package entity

import (
	"strings"

	"github.com/pkg/errors"
)

// Var is a single name/value pair in a location variable list.
type Var struct {
	Name  string
	Value string
}

// VarList is an ordered list of name/value pairs. Ordering is load-bearing:
// it is preserved through cloning, merging and serialization so that the
// first contributor of a name keeps its position.
type VarList []Var

// Get returns the value of the first entry with the given name.
func (l VarList) Get(name string) (string, bool) {
	for _, v := range l {
		if v.Name == name {
			return v.Value, true
		}
	}

	return "", false
}

// Has reports whether an entry with the given name exists.
func (l VarList) Has(name string) bool {
	_, ok := l.Get(name)

	return ok
}

// Append adds an entry at the end of the list.
func (l *VarList) Append(name, value string) {
	*l = append(*l, Var{Name: name, Value: value})
}

// Replace overwrites the value of the first entry with the given name,
// keeping its position, or appends a new entry when the name is absent.
func (l *VarList) Replace(name, value string) {
	for i := range *l {
		if (*l)[i].Name == name {
			(*l)[i].Value = value

			return
		}
	}

	l.Append(name, value)
}

// Clone returns an independent copy of the list.
func (l VarList) Clone() VarList {
	if l == nil {
		return nil
	}

	dup := make(VarList, len(l))
	copy(dup, l)

	return dup
}

// Join renders the list as name=value pairs separated by sep, optionally
// quoting values with quote.
func (l VarList) Join(sep, eq, quote string) string {
	var b strings.Builder
	for i, v := range l {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(v.Name)
		b.WriteString(eq)
		b.WriteString(quote)
		b.WriteString(v.Value)
		b.WriteString(quote)
	}

	return b.String()
}

// ParseVar parses a single "name=value" entry. The value may be quoted with
// double quotes to protect commas and equals signs.
func ParseVar(s string) (Var, error) {
	name, value, found := strings.Cut(s, "=")
	if !found {
		return Var{}, errors.Errorf("variable %q is not in name=value form", s)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return Var{}, errors.Errorf("variable %q has an empty name", s)
	}

	value = strings.TrimSpace(value)
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		value = value[1 : len(value)-1]
	}

	return Var{Name: name, Value: value}, nil
}

// ParseVarList parses a comma separated list of name=value entries. Commas
// inside double-quoted values do not split entries.
func ParseVarList(s string) (VarList, error) {
	var list VarList

	var item strings.Builder
	inQuote := false
	flush := func() error {
		entry := strings.TrimSpace(item.String())
		item.Reset()
		if entry == "" {
			return nil
		}

		v, err := ParseVar(entry)
		if err != nil {
			return err
		}
		list = append(list, v)

		return nil
	}

	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			item.WriteRune(r)
		case r == ',' && !inQuote:
			if err := flush(); err != nil {
				return nil, err
			}
		default:
			item.WriteRune(r)
		}
	}
	if inQuote {
		return nil, errors.Errorf("unterminated quote in variable list %q", s)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return list, nil
}
