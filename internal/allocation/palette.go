package allocation

import "github.com/Veraticus/tally-ho/internal/model"

// Palette is the fixed ordered set of category colors. Assignment picks the
// first unused entry; when every color is taken the first entry is reused.
var Palette = []string{
	"#FF6B6B", // red
	"#4ECDC4", // teal
	"#FFE66D", // yellow
	"#95E1D3", // light teal
	"#A8D8EA", // sky
	"#AA96DA", // lavender
	"#FCBAD3", // pink
	"#C7F464", // lime
	"#F38181", // coral
	"#6A89CC", // slate blue
}

// NextColor returns the first palette color not already used by a category.
func NextColor(categories []model.Category) string {
	used := make(map[string]bool, len(categories))
	for i := range categories {
		used[categories[i].Color] = true
	}
	for _, color := range Palette {
		if !used[color] {
			return color
		}
	}
	return Palette[0]
}
