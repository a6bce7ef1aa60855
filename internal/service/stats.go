package service

import (
	"sort"

	"github.com/samber/lo"

	"classgrid/backend/internal/dto"
)

// groupSorted 按 key 分组，返回按 key 升序的分组名，保证统计输出稳定
func groupSorted[T any](items []T, key func(T) string) ([]string, map[string][]T) {
	groups := lo.GroupBy(items, key)
	keys := lo.Keys(groups)
	sort.Strings(keys)
	return keys, groups
}

func countGroups[T any](items []T, key func(T) string) []dto.GroupCount {
	keys, groups := groupSorted(items, key)
	return lo.Map(keys, func(k string, _ int) dto.GroupCount {
		return dto.GroupCount{Group: k, Count: len(groups[k])}
	})
}
