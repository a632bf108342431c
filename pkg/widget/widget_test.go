package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_HasBuiltins(t *testing.T) {
	r := NewRegistry()

	hero, ok := r.Get("hero")
	require.True(t, ok)
	assert.Equal(t, "Hero", hero.DisplayName)
	assert.True(t, hero.SupportsPage(PageTypeProduct))

	footer, ok := r.Get("footer")
	require.True(t, ok)
	assert.True(t, footer.Shared)
}

func TestRegister(t *testing.T) {
	r := NewRegistry()

	err := r.Register(Widget{Name: "banner", DisplayName: "Banner", PageTypes: []string{PageTypeSite}})
	require.NoError(t, err)
	_, ok := r.Get("banner")
	assert.True(t, ok)

	assert.Error(t, r.Register(Widget{DisplayName: "nameless"}))
}

func TestList_SortedByName(t *testing.T) {
	r := NewRegistry()

	list := r.List()
	require.NotEmpty(t, list)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].Name, list[i].Name)
	}
}

func TestCompatibleWith(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		version    string
		want       bool
		wantErr    bool
	}{
		{name: "empty constraint matches everything", constraint: "", version: "0.0.1", want: true},
		{name: "version in range", constraint: ">= 1.2, < 2.0", version: "1.5.0", want: true},
		{name: "version below range", constraint: ">= 1.2, < 2.0", version: "1.1.9", want: false},
		{name: "version above range", constraint: ">= 1.2, < 2.0", version: "2.0.0", want: false},
		{name: "invalid constraint", constraint: "not-a-constraint", version: "1.0.0", wantErr: true},
		{name: "invalid version", constraint: ">= 1.0", version: "garbage", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Widget{Name: "w", Compatible: tt.constraint}
			got, err := w.CompatibleWith(tt.version)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListFor_FiltersIncompatible(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Widget{Name: "legacy", Compatible: "< 1.0"}))
	require.NoError(t, r.Register(Widget{Name: "broken", Compatible: "not-a-constraint"}))

	list := r.ListFor("1.4.0")

	names := make([]string, 0, len(list))
	for _, w := range list {
		names = append(names, w.Name)
	}
	assert.NotContains(t, names, "legacy")
	assert.NotContains(t, names, "broken")
	assert.Contains(t, names, "hero")
}
