package collab

// defaultPalette 参与者颜色调色板
// 顺序即分配优先级，取自高对比度的编辑器高亮色
var defaultPalette = []string{
	"#e6194b", // red
	"#3cb44b", // green
	"#4363d8", // blue
	"#f58231", // orange
	"#911eb4", // purple
	"#42d4f4", // cyan
	"#f032e6", // magenta
	"#bfef45", // lime
	"#fabed4", // pink
	"#469990", // teal
	"#9a6324", // brown
	"#808000", // olive
}

// DefaultPalette 返回默认调色板的副本
func DefaultPalette() []string {
	palette := make([]string, len(defaultPalette))
	copy(palette, defaultPalette)
	return palette
}

// assignColor 从调色板中选出第一个未被占用的颜色
// taken 为当前参与者已持有的颜色集合
// 调色板耗尽时按占用数取模循环复用，此时允许出现重复颜色
func assignColor(palette []string, taken map[string]struct{}) string {
	for _, color := range palette {
		if _, used := taken[color]; !used {
			return color
		}
	}
	return palette[len(taken)%len(palette)]
}
