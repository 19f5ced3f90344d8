package gpa

// GradeOption 是等级表中的一项
type GradeOption struct {
	Label       string  `json:"label"`
	Points      float64 `json:"points"`
	Emoji       string  `json:"emoji"`
	GifURL      string  `json:"gifUrl"`
	Color       string  `json:"color"`
	Description string  `json:"description"`
}

// UnknownLabel 在绩点无法精确匹配等级时使用
const UnknownLabel = "Unknown"

// 等级表按绩点降序排列，顺序决定 Classify 的平局结果，不可调整
var gradeScale = [...]GradeOption{
	{Label: "A+", Points: 4.00, Emoji: "🤩", GifURL: "https://i.giphy.com/media/YTbZzCkRQCEJa/giphy.gif", Color: "text-emerald-700", Description: "Outstanding!"},
	{Label: "A", Points: 3.75, Emoji: "😁", GifURL: "https://i.giphy.com/media/l0HlQ7LRalQqdWfao/giphy.gif", Color: "text-emerald-600", Description: "Excellent"},
	{Label: "A-", Points: 3.50, Emoji: "😄", GifURL: "https://i.giphy.com/media/ubJXwwiIDmiDFv16vQ/giphy.gif", Color: "text-emerald-500", Description: "Very Good"},
	{Label: "B+", Points: 3.25, Emoji: "🙂", GifURL: "https://i.giphy.com/media/gcvxXJjiYLCXC/giphy.gif", Color: "text-blue-600", Description: "Good"},
	{Label: "B", Points: 3.00, Emoji: "😐", GifURL: "https://i.giphy.com/media/NEvPzZ8bd1V4Y/giphy.gif", Color: "text-blue-500", Description: "Satisfactory"},
	{Label: "B-", Points: 2.75, Emoji: "😕", GifURL: "https://i.giphy.com/media/3o7btUg31OCi0NXdkY/giphy.gif", Color: "text-yellow-600", Description: "Acceptable"},
	{Label: "C+", Points: 2.50, Emoji: "😟", GifURL: "https://i.giphy.com/media/ISOckXUybVfQ4/giphy.gif", Color: "text-orange-500", Description: "Average"},
	{Label: "C", Points: 2.25, Emoji: "😢", GifURL: "https://i.giphy.com/media/ylV2FYACPNCXS/giphy.gif", Color: "text-orange-600", Description: "Below Average"},
	{Label: "D", Points: 2.00, Emoji: "😭", GifURL: "https://i.giphy.com/media/26ufcVAp3AiJJsrIs/giphy.gif", Color: "text-red-600", Description: "Poor"},
	{Label: "F", Points: 0.00, Emoji: "💀", GifURL: "https://i.giphy.com/media/hgw3fUE6wCRxC/giphy.gif", Color: "text-gray-600", Description: "Fail"},
}

// CommonCredits 是学分选择器中的预设值，其余均为自定义学分
var CommonCredits = []float64{3.0, 2.0, 1.5, 1.0}

// Catalog 返回等级表的副本
func Catalog() []GradeOption {
	out := make([]GradeOption, len(gradeScale))
	copy(out, gradeScale[:])
	return out
}

// LabelFor 按绩点精确查找等级标签
func LabelFor(points float64) string {
	for _, g := range gradeScale {
		if g.Points == points {
			return g.Label
		}
	}
	return UnknownLabel
}

// IsCommonCredits 判断学分是否为预设值
func IsCommonCredits(credits float64) bool {
	for _, c := range CommonCredits {
		if c == credits {
			return true
		}
	}
	return false
}

// GradeBand 给成绩选择器着色用
func GradeBand(points float64) string {
	switch {
	case points >= 3.0:
		return "good"
	case points >= 2.0:
		return "fair"
	default:
		return "poor"
	}
}
