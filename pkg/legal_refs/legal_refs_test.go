package legal_refs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_StatuteSection(t *testing.T) {
	refs := Extract("The accused was convicted under Section 302 of IPC.")

	require.Len(t, refs, 1)
	assert.Equal(t, KindStatute, refs[0].Kind)
	assert.Equal(t, "IPC", refs[0].Act)
	assert.Equal(t, "302", refs[0].Section)
}

func TestExtract_StatuteVariants(t *testing.T) {
	tests := []struct {
		text    string
		act     string
		section string
	}{
		{"charged under IPC Section 420 for cheating", "IPC", "420"},
		{"booked under s. 307 IPC", "IPC", "307"},
		{"bail under Section 438 of CrPC", "CrPC", "438"},
		{"decree under Section 96 of the CPC", "CPC", "96"},
		{"liability under Section 66A of the IT Act", "IT_Act", "66A"},
		{"admissible under Section 65B of the Evidence Act", "Evidence_Act", "65B"},
	}

	for _, tt := range tests {
		refs := Extract(tt.text)
		require.Len(t, refs, 1, tt.text)
		assert.Equal(t, tt.act, refs[0].Act, tt.text)
		assert.Equal(t, tt.section, refs[0].Section, tt.text)
	}
}

func TestExtract_Article(t *testing.T) {
	refs := Extract("The petitioner invoked Article 21 of the Constitution.")

	require.Len(t, refs, 1)
	assert.Equal(t, KindArticle, refs[0].Kind)
	assert.Equal(t, "Constitution", refs[0].Act)
	assert.Equal(t, "21", refs[0].Section)
	// The full form wins over the bare "Article 21" alternative.
	assert.Contains(t, refs[0].Text, "Constitution")
}

func TestExtract_BareArticle(t *testing.T) {
	refs := Extract("Protection under Article 14 applies equally.")

	require.Len(t, refs, 1)
	assert.Equal(t, KindArticle, refs[0].Kind)
	assert.Equal(t, "14", refs[0].Section)
}

func TestExtract_CaseCitations(t *testing.T) {
	tests := []struct {
		text string
	}{
		{"reported in [2025] 1 S.C.R. 100"},
		{"decided as 2025 INSC 456"},
		{"followed in 2019 SCC 312"},
	}

	for _, tt := range tests {
		refs := Extract(tt.text)
		require.Len(t, refs, 1, tt.text)
		assert.Equal(t, KindCase, refs[0].Kind, tt.text)
		assert.NotEmpty(t, refs[0].Citation, tt.text)
	}
}

func TestExtract_MixedTextOrderedByPosition(t *testing.T) {
	text := "Section 302 of IPC applies; see Article 21 of the Constitution and 2025 INSC 456."
	refs := Extract(text)

	require.Len(t, refs, 3)
	assert.Equal(t, KindStatute, refs[0].Kind)
	assert.Equal(t, KindArticle, refs[1].Kind)
	assert.Equal(t, KindCase, refs[2].Kind)
	assert.True(t, refs[0].Position < refs[1].Position)
	assert.True(t, refs[1].Position < refs[2].Position)
}

func TestExtract_NoReferences(t *testing.T) {
	refs := Extract("The parties reached an amicable settlement.")
	assert.Empty(t, refs)
}

func TestExtract_LetteredSectionUppercased(t *testing.T) {
	refs := Extract("Cruelty is punishable under Section 498a of IPC.")

	require.Len(t, refs, 1)
	assert.Equal(t, "498A", refs[0].Section)
}

func TestHasSection(t *testing.T) {
	tests := []struct {
		act     string
		section string
		exists  bool
	}{
		{"IPC", "302", true},
		{"IPC", "511", true},
		{"IPC", "512", false},
		{"IPC", "498A", true},
		{"IPC", "999", false},
		{"CrPC", "484", true},
		{"CrPC", "485", false},
		{"IT_Act", "66A", true},
		{"IT_Act", "88", false},
		{"Constitution", "21A", true},
		{"Constitution", "395", true},
		{"Constitution", "500", false},
	}

	for _, tt := range tests {
		statute, ok := Lookup(tt.act)
		require.True(t, ok, tt.act)
		assert.Equal(t, tt.exists, statute.HasSection(tt.section), "%s s.%s", tt.act, tt.section)
	}
}

func TestLookup_UnknownAct(t *testing.T) {
	_, ok := Lookup("GST_Act")
	assert.False(t, ok)
}

func TestIsSpecial(t *testing.T) {
	ipc, ok := Lookup("IPC")
	require.True(t, ok)

	assert.True(t, ipc.IsSpecial("498A"))
	assert.True(t, ipc.IsSpecial("498a"))
	assert.False(t, ipc.IsSpecial("302"))
	assert.False(t, ipc.IsSpecial("999A"))
}

func TestSectionNumber(t *testing.T) {
	tests := []struct {
		section string
		num     int
		ok      bool
	}{
		{"302", 302, true},
		{"376A", 376, true},
		{"66F", 66, true},
		{"A1", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		num, ok := SectionNumber(tt.section)
		assert.Equal(t, tt.ok, ok, tt.section)
		assert.Equal(t, tt.num, num, tt.section)
	}
}
