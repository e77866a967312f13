package util

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	slugRegex      = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugStripRegex = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRegex = regexp.MustCompile(`[\s_-]+`)
)

// IsValidSlug 小写字母与数字，用单个连字符分隔
func IsValidSlug(slug string) bool {
	return len(slug) <= 255 && slugRegex.MatchString(slug)
}

// Slugify 由标题生成候选 slug，可能为空
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStripRegex.ReplaceAllString(s, "")
	s = slugSpaceRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// StrToUint64 解析十进制 ID，失败时返回 0
func StrToUint64(s string) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// GetMidnight 返回 t 所在日期的零点
func GetMidnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// DistinctNonEmpty 去掉空白与重复值，保持首次出现的顺序，最多返回 limit 个
func DistinctNonEmpty(values []string, limit int) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, limit)
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// PtrInt 用于将 int 转换为 *int
func PtrInt(i int) *int {
	return &i
}

// PtrBool 用于将 bool 转换为 *bool
func PtrBool(b bool) *bool {
	return &b
}

// StrSliceToUInt64Slice Redis 集合成员转为 ID 列表
func StrSliceToUInt64Slice(values []string) ([]uint64, error) {
	out := make([]uint64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
