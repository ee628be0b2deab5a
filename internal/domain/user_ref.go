package domain

import (
	"bytes"
	"encoding/json"
)

// RefKind는 사용자 참조가 어떤 형태로 저장되어 있는지 나타냅니다.
type RefKind uint8

const (
	// RefUnresolvable은 ID를 꺼낼 수 없는 참조입니다 (null, bool, 배열, ID 필드 없는 객체).
	RefUnresolvable RefKind = iota
	// RefBare는 ID 그 자체입니다 ("u1", 42, {"$oid": "..."}).
	RefBare
	// RefEmbedded는 `_id` 또는 `id` 필드를 가진 객체입니다 ({"_id": "u1", "name": "..."}).
	RefEmbedded
)

// UserRef는 활동 데이터 안의 사용자 참조입니다.
// 레거시 데이터는 같은 필드에 bare ID와 populate된 객체를 섞어서 담고 있어서
// 두 형태를 하나의 타입으로 받고 Normalize로만 비교합니다.
type UserRef struct {
	kind RefKind
	id   string
	raw  json.RawMessage
}

// RefID creates a bare reference
func RefID(id string) UserRef {
	return UserRef{kind: RefBare, id: id}
}

// EmbeddedRef creates an object reference carrying the given id
func EmbeddedRef(id string) UserRef {
	return UserRef{kind: RefEmbedded, id: id}
}

// RefIDs converts plain ids to bare references
func RefIDs(ids ...string) []UserRef {
	if len(ids) == 0 {
		return nil
	}
	refs := make([]UserRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, RefID(id))
	}
	return refs
}

// Kind returns the stored shape of the reference
func (r UserRef) Kind() RefKind {
	return r.kind
}

// Normalize returns the canonical user id of the reference.
// Unresolvable references normalize to "" and never match a user.
func (r UserRef) Normalize() string {
	switch r.kind {
	case RefBare, RefEmbedded:
		return r.id
	default:
		return ""
	}
}

// String returns the whole-value string form of the reference.
// Bare ids stringify to themselves, objects to their compact JSON text.
func (r UserRef) String() string {
	switch r.kind {
	case RefBare:
		return r.id
	case RefEmbedded:
		if len(r.raw) > 0 {
			return compactJSON(r.raw)
		}
		b, _ := json.Marshal(map[string]string{"_id": r.id})
		return string(b)
	default:
		if len(r.raw) > 0 {
			return compactJSON(r.raw)
		}
		return ""
	}
}

// MarshalJSON keeps the original shape so legacy documents survive a round trip
func (r UserRef) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case RefBare:
		if len(r.raw) > 0 {
			return r.raw, nil
		}
		return json.Marshal(r.id)
	case RefEmbedded:
		if len(r.raw) > 0 {
			return r.raw, nil
		}
		return json.Marshal(map[string]string{"_id": r.id})
	default:
		if len(r.raw) > 0 {
			return r.raw, nil
		}
		return []byte("null"), nil
	}
}

// UnmarshalJSON never fails: a malformed entry becomes RefUnresolvable so the
// rest of the enclosing list still decodes.
func (r *UserRef) UnmarshalJSON(data []byte) error {
	*r = parseUserRef(data)
	return nil
}

func parseUserRef(data []byte) UserRef {
	trimmed := bytes.TrimSpace(data)
	raw := append(json.RawMessage(nil), trimmed...)
	if len(trimmed) == 0 {
		return UserRef{kind: RefUnresolvable}
	}

	switch c := trimmed[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return UserRef{kind: RefUnresolvable, raw: raw}
		}
		return UserRef{kind: RefBare, id: s}
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return UserRef{kind: RefUnresolvable, raw: raw}
		}
		return UserRef{kind: RefBare, id: n.String(), raw: raw}
	case c == '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return UserRef{kind: RefUnresolvable, raw: raw}
		}
		// Extended JSON ObjectId는 bare ID로 취급
		if oid, ok := fields["$oid"]; ok {
			var s string
			if err := json.Unmarshal(oid, &s); err == nil {
				return UserRef{kind: RefBare, id: s, raw: raw}
			}
		}
		for _, key := range []string{"_id", "id"} {
			nested, ok := fields[key]
			if !ok {
				continue
			}
			inner := parseUserRef(nested)
			if inner.kind == RefBare {
				return UserRef{kind: RefEmbedded, id: inner.id, raw: raw}
			}
		}
		return UserRef{kind: RefUnresolvable, raw: raw}
	default:
		return UserRef{kind: RefUnresolvable, raw: raw}
	}
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
