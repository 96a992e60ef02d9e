package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_IsPaired(t *testing.T) {
	tests := []struct {
		name   string
		pairID string
		want   bool
	}{
		{name: "empty", pairID: "", want: false},
		{name: "dash sentinel", pairID: UnpairedID, want: false},
		{name: "numeric id", pairID: "1", want: true},
		{name: "custom id", pairID: "hero", want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := Document{Filename: "a.txt", PairID: tc.pairID}
			assert.Equal(t, tc.want, doc.IsPaired())
		})
	}
}

func TestNewDocumentSet_ComputesTotalTokens(t *testing.T) {
	set := NewDocumentSet("acme", "gift_cards", []Document{
		{Filename: "a.txt", Tokens: 10},
		{Filename: "b.txt", Tokens: 32},
	})

	assert.Equal(t, 42, set.TotalTokens)
	assert.Equal(t, 2, set.DocumentCount())
}

func TestDocumentSet_PairedDocuments(t *testing.T) {
	set := DocumentSet{
		Documents: []Document{
			{Filename: "card_DE.txt", Language: "DE", PairID: "1"},
			{Filename: "card_EN.txt", Language: "EN", PairID: "1"},
			{Filename: "terms_FR.txt", Language: "FR", PairID: "2"},
			{Filename: "terms_DE.txt", Language: "DE", PairID: "2"},
			{Filename: "faq_EN-GB.txt", Language: "en-gb", PairID: "10"},
			{Filename: "faq_DE.txt", Language: "DE", PairID: "10"},
			{Filename: "promo_EN.txt", Language: "EN", PairID: UnpairedID},
		},
	}

	pairs := set.PairedDocuments()

	require.Len(t, pairs, 2)
	assert.Equal(t, "1", pairs[0].PairID)
	assert.Equal(t, "card_EN.txt", pairs[0].Source.Filename)
	assert.Equal(t, "card_DE.txt", pairs[0].Target.Filename)
	assert.Equal(t, "10", pairs[1].PairID, "numeric ids sort numerically")
	assert.Equal(t, "faq_EN-GB.txt", pairs[1].Source.Filename)
}

func TestDocumentSet_UnpairedDocuments(t *testing.T) {
	set := DocumentSet{
		Documents: []Document{
			{Filename: "card_EN.txt", Language: "EN", PairID: "1"},
			{Filename: "card_DE.txt", Language: "DE", PairID: "1"},
			{Filename: "terms_FR.txt", Language: "FR", PairID: "2"},
			{Filename: "terms_DE.txt", Language: "DE", PairID: "2"},
			{Filename: "promo_EN.txt", Language: "EN", PairID: UnpairedID},
			{Filename: "blank.txt", Language: UnknownLanguage},
		},
	}

	unpaired := set.UnpairedDocuments()

	names := make([]string, 0, len(unpaired))
	for _, d := range unpaired {
		names = append(names, d.Filename)
	}
	assert.Equal(t, []string{"terms_FR.txt", "terms_DE.txt", "promo_EN.txt", "blank.txt"}, names)
}

func TestDocumentSet_Languages(t *testing.T) {
	set := DocumentSet{
		Documents: []Document{
			{Filename: "a", Language: "DE"},
			{Filename: "b", Language: "EN"},
			{Filename: "c", Language: "DE"},
			{Filename: "d", Language: ""},
		},
	}

	assert.Equal(t, []string{"DE", "EN"}, set.Languages())
	assert.Equal(t, "EN", set.SourceLanguage())
	assert.Equal(t, "DE", set.TargetLanguage())
}

func TestDocumentSet_TargetLanguageIgnoresUnknown(t *testing.T) {
	set := DocumentSet{
		Documents: []Document{
			{Filename: "a", Language: UnknownLanguage},
			{Filename: "b", Language: "EN"},
		},
	}

	assert.Equal(t, "", set.TargetLanguage())
}

func TestDocumentSet_LanguageSituation(t *testing.T) {
	tests := []struct {
		name string
		docs []Document
		want string
	}{
		{
			name: "paired",
			docs: []Document{
				{Filename: "card_EN.txt", Language: "EN", PairID: "1"},
				{Filename: "card_DE.txt", Language: "DE", PairID: "1"},
			},
			want: "EN → DE (paired)",
		},
		{
			name: "both languages without pairs",
			docs: []Document{
				{Filename: "a_EN.txt", Language: "EN"},
				{Filename: "b_DE.txt", Language: "DE"},
			},
			want: "EN + DE (unpaired)",
		},
		{
			name: "target only",
			docs: []Document{{Filename: "b_DE.txt", Language: "DE"}},
			want: "DE (target only)",
		},
		{
			name: "source only",
			docs: []Document{{Filename: "a_EN.txt", Language: "EN"}},
			want: "EN (source only)",
		},
		{
			name: "unknown",
			docs: []Document{{Filename: "x.txt", Language: UnknownLanguage}},
			want: "unknown",
		},
		{
			name: "empty set",
			want: "unknown",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			set := DocumentSet{Documents: tc.docs}
			assert.Equal(t, tc.want, set.LanguageSituation())
		})
	}
}

func TestComparePairIDs(t *testing.T) {
	assert.Negative(t, ComparePairIDs("2", "10"))
	assert.Positive(t, ComparePairIDs("10", "2"))
	assert.Zero(t, ComparePairIDs("3", "3"))
	assert.Negative(t, ComparePairIDs("a", "b"))
}

func TestSetHelpers(t *testing.T) {
	sets := []DocumentSet{
		NewDocumentSet("acme", "gift_cards", []Document{
			{Filename: "card_EN.txt", Language: "EN", PairID: "1", Tokens: 5},
			{Filename: "card_DE.txt", Language: "DE", PairID: "1", Tokens: 7},
		}),
		NewDocumentSet("acme", "games", []Document{
			{Filename: "game_DE.txt", Language: "DE", Tokens: 3},
		}),
	}

	assert.True(t, HasPairs(sets))
	assert.False(t, HasPairs(sets[1:]))
	assert.Equal(t, 3, TotalDocuments(sets))
	assert.Equal(t, 15, TotalTokens(sets))
	assert.Equal(t, []string{"gift_cards", "games"}, Subtypes(sets))
}

func TestIsEnglishVariant(t *testing.T) {
	for _, code := range []string{"EN", "en", "EN-GB", "en-us", "EN-WW"} {
		assert.True(t, IsEnglishVariant(code), code)
	}
	for _, code := range []string{"DE", "", UnknownLanguage} {
		assert.False(t, IsEnglishVariant(code), code)
	}
}

func TestIsKnownLanguage(t *testing.T) {
	assert.True(t, IsKnownLanguage("de"))
	assert.True(t, IsKnownLanguage("TL"))
	assert.False(t, IsKnownLanguage("XX"))
	assert.Len(t, LanguageCodes, 34)
}
