// Package owners 控制面所有者集合
//
// 有序、无重复的 Principal 列表：
//   - Add 幂等，已存在的成员保持原位置
//   - Remove 对非成员返回 NotFound
//   - 不阻止移除最后一个所有者
package owners

import (
	"github.com/weisyn/purchaser/pkg/types"
)

// OwnerSet 所有者集合
type OwnerSet struct {
	members []types.Principal
}

// New 从已有列表创建，重复项只保留第一次出现
func New(members []types.Principal) *OwnerSet {
	s := &OwnerSet{members: make([]types.Principal, 0, len(members))}
	for _, m := range members {
		s.Add(m)
	}
	return s
}

// IsOwner 是否为所有者
func (s *OwnerSet) IsOwner(p types.Principal) bool {
	for _, m := range s.members {
		if m == p {
			return true
		}
	}
	return false
}

// Authorize 调用者必须是所有者
func (s *OwnerSet) Authorize(caller types.Principal) error {
	if !s.IsOwner(caller) {
		return types.WrapUnauthorizedError(caller)
	}
	return nil
}

// Add 追加所有者，已存在时无操作，返回是否实际追加
func (s *OwnerSet) Add(p types.Principal) bool {
	if s.IsOwner(p) {
		return false
	}
	s.members = append(s.members, p)
	return true
}

// Remove 移除所有者
func (s *OwnerSet) Remove(p types.Principal) error {
	for i, m := range s.members {
		if m == p {
			s.members = append(s.members[:i:i], s.members[i+1:]...)
			return nil
		}
	}
	return types.WrapNotFoundError("owner", string(p))
}

// Members 返回成员副本
func (s *OwnerSet) Members() []types.Principal {
	out := make([]types.Principal, len(s.members))
	copy(out, s.members)
	return out
}

// Len 成员数量
func (s *OwnerSet) Len() int {
	return len(s.members)
}
