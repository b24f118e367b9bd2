package dashboard

import "ohara-cli/internal/model"

// Color is a category badge color pair.
type Color struct {
	Name string `json:"name"`
	Bg   string `json:"bg"`
	Fg   string `json:"fg"`
}

// Palette is the fixed, ordered badge palette. Its order is part of the contract:
// categories map to it by their vocabulary index.
var Palette = []Color{
	{Name: "blue", Bg: "#89b4fa", Fg: "#1e1e2e"},
	{Name: "mauve", Bg: "#cba6f7", Fg: "#1e1e2e"},
	{Name: "green", Bg: "#a6e3a1", Fg: "#1e1e2e"},
	{Name: "peach", Bg: "#fab387", Fg: "#1e1e2e"},
	{Name: "red", Bg: "#f38ba8", Fg: "#1e1e2e"},
	{Name: "yellow", Bg: "#f9e2af", Fg: "#1e1e2e"},
	{Name: "teal", Bg: "#94e2d5", Fg: "#1e1e2e"},
	{Name: "sky", Bg: "#89dceb", Fg: "#1e1e2e"},
	{Name: "sapphire", Bg: "#74c7ec", Fg: "#1e1e2e"},
	{Name: "pink", Bg: "#f5c2e7", Fg: "#1e1e2e"},
	{Name: "lavender", Bg: "#b4befe", Fg: "#1e1e2e"},
	{Name: "flamingo", Bg: "#f2cdcd", Fg: "#1e1e2e"},
}

// CategoryColor maps a category to its palette entry by vocabulary index.
// Categories missing from md use index 0.
func CategoryColor(category string, md model.Metadata) Color {
	idx := md.CategoryIndex(category)
	if idx < 0 {
		idx = 0
	}
	return Palette[idx%len(Palette)]
}
