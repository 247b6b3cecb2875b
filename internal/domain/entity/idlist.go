package entity

import "strings"

// IDList is an ordered set of snowflake ids (users, channels or guilds).
// It serializes to the comma-joined form the settings file uses. Adds
// deduplicate, so an id can appear at most once regardless of how the
// backing string looked when parsed.
type IDList struct {
	ids []string
}

// ParseIDList builds an IDList from a comma-joined string. Empty segments
// and surrounding whitespace are dropped; duplicate ids collapse to their
// first occurrence.
func ParseIDList(s string) IDList {
	var l IDList
	for _, part := range strings.Split(s, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		l.Add(id)
	}
	return l
}

// Contains reports whether id is in the list.
func (l *IDList) Contains(id string) bool {
	if id == "" {
		return false
	}
	for _, v := range l.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id unless it is already present or empty.
func (l *IDList) Add(id string) {
	if id == "" || l.Contains(id) {
		return
	}
	l.ids = append(l.ids, id)
}

// Remove deletes the first occurrence of id. It is a no-op when the id is
// not present.
func (l *IDList) Remove(id string) {
	for i, v := range l.ids {
		if v == id {
			l.ids = append(l.ids[:i], l.ids[i+1:]...)
			return
		}
	}
}

// Len returns the number of ids in the list.
func (l *IDList) Len() int {
	return len(l.ids)
}

// IDs returns a copy of the ids in insertion order.
func (l *IDList) IDs() []string {
	out := make([]string, len(l.ids))
	copy(out, l.ids)
	return out
}

// String serializes the list back to its comma-joined settings form.
func (l *IDList) String() string {
	return strings.Join(l.ids, ",")
}
