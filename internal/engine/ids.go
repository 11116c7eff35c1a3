package engine

import "strings"

// NormalizeID 归一化业务编号（去空白、忽略大小写）
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// SameID 判断两个业务编号是否指向同一实体，空编号不与任何编号相等
func SameID(a, b string) bool {
	normalized := NormalizeID(a)
	if normalized == "" {
		return false
	}
	return normalized == NormalizeID(b)
}

// idSet 归一化编号集合
type idSet map[string]struct{}

func newIDSet(ids ...string) idSet {
	set := make(idSet, len(ids))
	for _, id := range ids {
		set.add(id)
	}
	return set
}

func (s idSet) add(id string) {
	if normalized := NormalizeID(id); normalized != "" {
		s[normalized] = struct{}{}
	}
}

func (s idSet) has(id string) bool {
	normalized := NormalizeID(id)
	if normalized == "" {
		return false
	}
	_, ok := s[normalized]
	return ok
}
