package widget

// builtins returns the widgets that ship with the platform.
func builtins() []Widget {
	return []Widget{
		{
			Name:        "hero",
			DisplayName: "Hero",
			PageTypes:   []string{PageTypeSite, PageTypeProduct},
			DefaultSettings: map[string]any{
				"style":             "normal",
				"alignment":         "left",
				"horizontalPadding": 100,
				"verticalPadding":   80,
			},
		},
		{
			Name:        "featured",
			DisplayName: "Featured products",
			PageTypes:   []string{PageTypeSite},
		},
		{
			Name:        "rich-text",
			DisplayName: "Text",
			PageTypes:   []string{PageTypeSite, PageTypeProduct},
		},
		{
			Name:        "footer",
			DisplayName: "Footer",
			PageTypes:   []string{PageTypeSite, PageTypeProduct},
			Shared:      true,
		},
	}
}
