package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{
		"AI Data Extraction",
		"Machine Learning Enablement",
		"Genealogy",
		"Natural Language Processing",
		"AI-Enabled Customer Service",
		"Computer Vision",
		"Autonomous Driving Technology",
	}, c.Titles())

	p, ok := c.Lookup("Computer Vision")
	require.True(t, ok)
	assert.Equal(t, "computer-vision", p.ID)
	assert.Equal(t, "Vision", p.Category)
	assert.Equal(t, "Advanced", p.Difficulty)
	assert.Equal(t, "6-9 months", p.Duration)
	assert.NotEmpty(t, p.Description)
}

func TestContainsIsExact(t *testing.T) {
	c := Default()
	assert.True(t, c.Contains("Genealogy"))
	assert.False(t, c.Contains("genealogy"))
	assert.False(t, c.Contains(""))
}

func TestListReturnsCopy(t *testing.T) {
	c := Default()
	list := c.List()
	list[0].Title = "changed"
	assert.Equal(t, "AI Data Extraction", c.List()[0].Title)
}

func TestParseRejectsBadDocuments(t *testing.T) {
	_, err := Parse([]byte("projects: []"))
	assert.Error(t, err)

	_, err = Parse([]byte("projects:\n  - id: a\n    title: A\n  - id: b\n    title: A\n"))
	assert.ErrorContains(t, err, "duplicate")

	_, err = Parse([]byte("projects:\n  - id: a\n"))
	assert.ErrorContains(t, err, "no title")

	_, err = Parse([]byte("projects: [unterminated"))
	assert.Error(t, err)
}
